package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curioledger/curio/internal/presentation"
)

var infoCmd = &cobra.Command{
	Use:   "info [account]",
	Short: "Show registry or account details",
	Long: `Info prints the registry summary, or an account's balance when an account
is given.

Examples:
  curio info
  curio info alice
  curio info --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		if len(args) == 0 {
			return formatter(cmd).FormatRegistry(presentation.FromRegistryInfo(s.svc.Info()))
		}

		account, err := parseAccount(args[0])
		if err != nil {
			return err
		}
		balance, err := s.svc.BalanceOf(account)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(cmd, map[string]any{"account": account.String(), "balance": balance})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s holds %d token(s)\n", account, balance)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
