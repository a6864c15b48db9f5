package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/curioledger/curio/internal/config"
)

var (
	initName   string
	initSymbol string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a project configuration",
	Long: `Init writes a commented starter config to .curio/config.yaml.

The registry name and symbol are fixed when the ledger is first created, so
set them here before the first mint.

Examples:
  curio init
  curio init --name "Gallery Pieces" --symbol ART`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ProjectConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}

		// Apply overrides on top of the template, keeping its comments.
		if initName != "" || initSymbol != "" {
			reg := config.Defaults().Registry
			if initName != "" {
				reg.Name = initName
			}
			if initSymbol != "" {
				reg.Symbol = initSymbol
			}
			if err := config.ValidateRegistry(reg); err != nil {
				return err
			}
			if err := config.SaveRegistry(path, reg); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "registry name")
	initCmd.Flags().StringVar(&initSymbol, "symbol", "", "registry symbol")
	rootCmd.AddCommand(initCmd)
}
