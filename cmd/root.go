package cmd

import (
	"context"
	"os"

	"cart_ledger/app"
	"cart_ledger/config"
	"cart_ledger/db"
	"cart_ledger/ledger"

	"github.com/spf13/cobra"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cart-ledger",
	Short: "Device cart lending ledger",
	Long: `cart-ledger tracks which device from which cart is on loan, to whom,
and who handed it out. Run "cart-ledger serve" for the HTTP API; the other
commands are operator tools that work directly on the database.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv(envFile)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(credentialsCmd)
	rootCmd.AddCommand(assetsCmd)
}

// openLedger opens the configured store without Redis; operator commands
// never touch sessions.
func openLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	cfg := config.FromEnv()
	conn, err := db.Open(ctx, db.Options{Driver: cfg.DBDriver, Path: cfg.DBPath, DSN: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, err
	}
	l := ledger.New(db.NewRepo(conn), app.LedgerOptions(cfg)...)
	return l, func() { db.Close(conn) }, nil
}
