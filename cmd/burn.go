package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var burnCmd = &cobra.Command{
	Use:   "burn <id>",
	Short: "Destroy a token",
	Long: `Burn permanently destroys a token. Its id is never reissued.

The --as account must be the owner, the approved account, or one of the
owner's operators.

Examples:
  curio burn 3 --as alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		who, err := caller()
		if err != nil {
			return err
		}
		id, err := parseTokenID(args[0])
		if err != nil {
			return err
		}

		s, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.svc.Burn(cmd.Context(), who, id); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "burned token %d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(burnCmd)
}
