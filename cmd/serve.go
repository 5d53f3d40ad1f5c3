package cmd

import (
	"context"
	"log"

	"cart_ledger/app"
	"cart_ledger/config"
	"cart_ledger/routes"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Open the database and Redis, create the default admin account when no
administrator exists, and serve the JSON API on $PORT.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	application := app.MustNew(cfg)
	defer application.Close()

	if err := app.BootstrapFirstAdmin(context.Background(), cfg, application.Ledger); err != nil {
		return err
	}

	r := application.Router
	routes.RegisterRoutes(r, application)

	log.Printf("listening on :%s (db=%s)", cfg.Port, cfg.DBDriver)
	return r.Run(":" + cfg.Port)
}
