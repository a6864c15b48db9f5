package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curioledger/curio/internal/registry/domain"
)

var approveClear bool

var approveCmd = &cobra.Command{
	Use:   "approve <to> <id>",
	Short: "Approve an account for one token",
	Long: `Approve delegates transfer rights for a single token to another account.

Each token carries at most one approval; approving again replaces it, and a
transfer or burn clears it. The --as account must be the owner or one of the
owner's operators.

Examples:
  # Let bob move token 1
  curio approve bob 1 --as alice

  # Clear the approval on token 1
  curio approve --clear 1 --as alice`,
	Args: func(cmd *cobra.Command, args []string) error {
		if approveClear {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		who, err := caller()
		if err != nil {
			return err
		}

		to := domain.ZeroAddress
		idArg := args[0]
		if !approveClear {
			if to, err = parseAccount(args[0]); err != nil {
				return err
			}
			idArg = args[1]
		}
		id, err := parseTokenID(idArg)
		if err != nil {
			return err
		}

		s, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.svc.Approve(cmd.Context(), who, to, id); err != nil {
			return err
		}

		if to.IsZero() {
			fmt.Fprintf(cmd.OutOrStdout(), "cleared approval on token %d\n", id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "approved %s for token %d\n", to, id)
		}
		return nil
	},
}

func init() {
	approveCmd.Flags().BoolVar(&approveClear, "clear", false, "clear the token's approval instead of setting one")
	rootCmd.AddCommand(approveCmd)
}
