package cmds

import (
	"os"
	"os/signal"
	"syscall"

	"rocketcart/internal/api"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cart over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == 0 {
				port = opts.cfg.Server.Port
			}
			store, n, err := openFromEnv(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"catalog": opts.cfg.Catalog.BaseURL,
				"key":     opts.cfg.Cart.Key,
				"lines":   len(store.Cart()),
			}).Info("Cart loaded")

			stop, done := api.RunServerInterruptible(port, store, n)
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			select {
			case err := <-done:
				return err
			case s := <-sig:
				log.Infof("Received %s, shutting down", s)
				stop <- struct{}{}
				return <-done
			}
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (defaults to server.port)")
	return cmd
}
