package main

import (
	"os"

	"rocketcart/cmd/rocketcart/cmds"
)

func main() {
	if err := cmds.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
