package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"PriceKeeper/internal/model"

	"github.com/spf13/cobra"
)

var errRunFailed = errors.New("at least one run failed")

var runCmd = &cobra.Command{
	Use:   "run [instrument...]",
	Short: "Ingest the latest price of each instrument once",
	Long: `Run one ingestion per named instrument, or per configured instrument when
none are named. Instruments run one after another.

The exit status is non-zero when any run failed. Appending and skipping
both count as success.

Example:
  pricekeeper run basf deka_esg`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rec := openRecorder(cfg)
	defer rec.Close()

	drivers, err := buildDrivers(cfg, args, rec, newTelegram(cfg))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := 0
	for _, d := range drivers {
		res := d.Run(ctx)
		line := fmt.Sprintf("%-24s %s", d.Instrument, res.Status)
		if res.Observation != nil {
			line += fmt.Sprintf("  %s", res.Observation)
		}
		if res.Err != nil {
			line += fmt.Sprintf("  %v", res.Err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
		if res.Status == model.StatusFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errRunFailed, failed, len(drivers))
	}
	return nil
}
