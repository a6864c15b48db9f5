package cmd

import (
	"github.com/spf13/cobra"

	"github.com/curioledger/curio/internal/presentation"
)

var tokenListCmd = &cobra.Command{
	Use:   "token:list <account>",
	Short: "List an account's tokens",
	Long: `token:list enumerates every token the account currently holds.

Examples:
  curio token:list alice
  curio token:list alice --json

  # Parse specific fields with jq
  curio token:list alice --json | jq '.[].id'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := parseAccount(args[0])
		if err != nil {
			return err
		}

		s, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		ids := s.svc.TokenIDsOf(account)
		dtos := make([]presentation.TokenDTO, 0, len(ids))
		for _, id := range ids {
			details, err := s.svc.Token(cmd.Context(), id)
			if err != nil {
				return err
			}
			dtos = append(dtos, presentation.FromTokenDetails(details))
		}

		return formatter(cmd).FormatTokens(dtos)
	},
}

func init() {
	rootCmd.AddCommand(tokenListCmd)
}
