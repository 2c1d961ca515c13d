package cmds

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"rocketcart/internal/catalog"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Local catalog tooling",
	}
	cmd.AddCommand(newCatalogServeCmd())
	return cmd
}

func newCatalogServeCmd() *cobra.Command {
	var (
		dbPath string
		port   int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /products and /stock from a fixture file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := catalog.LoadFixture(dbPath)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           f.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			log.Printf("catalog fixture listening on %s\n", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "db.json", "fixture file (.json, .yml or .yaml)")
	cmd.Flags().IntVarP(&port, "port", "p", 3333, "listen port")
	return cmd
}
