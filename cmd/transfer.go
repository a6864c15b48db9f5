package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <from> <to> <id>",
	Short: "Transfer a token between accounts",
	Long: `Transfer moves a token from one account to another.

The --as account must be the current owner, the account approved for this
token, or an operator of the owner. A successful transfer clears the token's
approval.

Examples:
  # Owner moves their own token
  curio transfer alice bob 1 --as alice

  # A delegate moves it on the owner's behalf
  curio transfer alice bob 1 --as carol`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		who, err := caller()
		if err != nil {
			return err
		}
		from, err := parseAccount(args[0])
		if err != nil {
			return err
		}
		to, err := parseAccount(args[1])
		if err != nil {
			return err
		}
		id, err := parseTokenID(args[2])
		if err != nil {
			return err
		}

		s, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.svc.Transfer(cmd.Context(), who, from, to, id); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "transferred token %d from %s to %s\n", id, from, to)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
}
