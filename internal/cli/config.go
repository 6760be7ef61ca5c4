package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeJamon/programtest/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write an example configuration file",
	Long:  `Write an example configuration file. The format follows the extension: .toml, .yaml or .json.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SaveExampleConfig(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the configuration named by --conf",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: listen %s, store %s, %d keypairs, %d accounts, %d mints, %d token accounts\n",
			cfg.Server.Listen, cfg.Store.Backend, len(cfg.Keypairs), len(cfg.Accounts), len(cfg.Mints), len(cfg.TokenAccounts))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configCheckCmd)
	rootCmd.AddCommand(configCmd)
}
