package cmd

import (
	"github.com/spf13/cobra"

	"github.com/curioledger/curio/internal/presentation"
)

var tokenShowCmd = &cobra.Command{
	Use:   "token:show <id>",
	Short: "Show one token",
	Long: `token:show prints a token's owner, metadata URI, and current approval.

Examples:
  curio token:show 1
  curio token:show 1 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseTokenID(args[0])
		if err != nil {
			return err
		}

		s, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		details, err := s.svc.Token(cmd.Context(), id)
		if err != nil {
			return err
		}

		return formatter(cmd).FormatToken(presentation.FromTokenDetails(details))
	},
}

func init() {
	rootCmd.AddCommand(tokenShowCmd)
}
