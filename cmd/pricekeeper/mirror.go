package main

import (
	"fmt"

	"PriceKeeper/internal/series"

	"github.com/spf13/cobra"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror <instrument>",
	Short: "Regenerate an instrument's workbook from its CSV series",
	Args:  cobra.ExactArgs(1),
	RunE:  runMirror,
}

var mirrorOutput string

func init() {
	rootCmd.AddCommand(mirrorCmd)
	mirrorCmd.Flags().StringVarP(&mirrorOutput, "output", "o", "", "workbook path (default: the instrument's configured mirror)")
}

func runMirror(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	inst, ok := cfg.Find(args[0])
	if !ok {
		return fmt.Errorf("unknown instrument %q", args[0])
	}
	out := mirrorOutput
	if out == "" {
		out = inst.Mirror
	}
	if out == "" {
		return fmt.Errorf("instrument %s has no mirror configured; pass --output", inst.Name)
	}

	store := series.NewCSVStore(inst.Output)
	if err := store.Project(series.NewXLSXMirror(out, inst.MirrorSheet)); err != nil {
		return fmt.Errorf("mirror %s: %w", inst.Name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s written from %s\n", out, inst.Output)
	return nil
}
