package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	accountHandle   string
	accountName     string
	accountPassword string
	accountAdmin    bool
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage staff accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a staff account",
	Long: `Create a staff account with a bcrypt-hashed password.

Examples:
  cart-ledger account create --handle ana --name "Ana Souza" --password s3cret
  cart-ledger account create --handle coord --name Coordination --password s3cret --admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, closeFn, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		name := accountName
		if name == "" {
			name = accountHandle
		}
		res, err := l.RegisterAccount(cmd.Context(), accountHandle, accountPassword, name, accountAdmin)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	},
}

func init() {
	accountCreateCmd.Flags().StringVar(&accountHandle, "handle", "", "login handle")
	accountCreateCmd.Flags().StringVar(&accountName, "name", "", "display name recorded on loans (defaults to the handle)")
	accountCreateCmd.Flags().StringVar(&accountPassword, "password", "", "initial password")
	accountCreateCmd.Flags().BoolVar(&accountAdmin, "admin", false, "grant administrator rights")
	_ = accountCreateCmd.MarkFlagRequired("handle")
	_ = accountCreateCmd.MarkFlagRequired("password")

	accountCmd.AddCommand(accountCreateCmd)
}
