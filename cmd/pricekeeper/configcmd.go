package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration file",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply environment overrides and defaults,
and check every instrument.

Example:
  pricekeeper config validate -c configs/config.yaml`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configPath)
	for _, inst := range cfg.Instruments {
		fmt.Fprintf(out, "  %-24s %-12s %-18s %s\n", inst.Name, inst.Strategy, inst.Cron, inst.Output)
	}
	if cfg.Telegram.BotToken == "" {
		fmt.Fprintln(out, "  Telegram: disabled")
	}
	return nil
}
