package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curioledger/curio/internal/presentation"
)

var mintURI string

var mintCmd = &cobra.Command{
	Use:   "mint <to>",
	Short: "Mint a new token for an account",
	Long: `Mint creates the next token and assigns it to the given account.

Token ids are issued sequentially starting at 1 and are never reused, even
after a burn.

Examples:
  # Mint a token for alice
  curio mint alice

  # Mint with attached metadata
  curio mint alice --uri ipfs://QmExample/1.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := parseAccount(args[0])
		if err != nil {
			return err
		}

		s, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		id, err := s.svc.MintWithURI(cmd.Context(), to, mintURI)
		if err != nil {
			return err
		}

		if flagJSON {
			details, err := s.svc.Token(cmd.Context(), id)
			if err != nil {
				return err
			}
			return formatter(cmd).FormatToken(presentation.FromTokenDetails(details))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "minted token %d for %s\n", id, to)
		return nil
	},
}

func init() {
	mintCmd.Flags().StringVar(&mintURI, "uri", "", "metadata URI to attach to the token")
	rootCmd.AddCommand(mintCmd)
}
