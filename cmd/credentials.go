package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Credential maintenance",
}

var credentialsRehashCmd = &cobra.Command{
	Use:   "rehash",
	Short: "Hash passwords still stored in clear text",
	Long: `Convert every stored password that is not a bcrypt hash into one.
Accounts carrying a foreign hash format (pbkdf2, scrypt) are reported and
left untouched; reset their passwords instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, closeFn, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		rep, err := l.RehashLegacyCredentials(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rehashed %d, already hashed %d, skipped %d\n", rep.Rehashed, rep.Hashed, rep.Skipped)
		return nil
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsRehashCmd)
}
