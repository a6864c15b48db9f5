package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var operatorRevoke bool

var operatorSetCmd = &cobra.Command{
	Use:   "operator:set <operator>",
	Short: "Grant or revoke a blanket operator",
	Long: `operator:set grants another account operator rights over every token the
--as account holds, now and in the future. Grants are directional: alice
granting bob says nothing about bob's tokens.

Examples:
  # Grant carol operator rights over alice's tokens
  curio operator:set carol --as alice

  # Revoke the grant
  curio operator:set carol --revoke --as alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		who, err := caller()
		if err != nil {
			return err
		}
		operator, err := parseAccount(args[0])
		if err != nil {
			return err
		}

		s, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		approved := !operatorRevoke
		if err := s.svc.SetOperatorApproval(cmd.Context(), who, operator, approved); err != nil {
			return err
		}

		if approved {
			fmt.Fprintf(cmd.OutOrStdout(), "granted %s operator rights for %s\n", operator, who)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "revoked operator rights of %s for %s\n", operator, who)
		}
		return nil
	},
}

func init() {
	operatorSetCmd.Flags().BoolVar(&operatorRevoke, "revoke", false, "revoke the grant instead of creating one")
	rootCmd.AddCommand(operatorSetCmd)
}
