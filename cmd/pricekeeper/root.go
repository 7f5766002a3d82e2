package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"PriceKeeper/internal/collector"
	"PriceKeeper/internal/config"
	"PriceKeeper/internal/ingest"
	"PriceKeeper/internal/notifier"
	"PriceKeeper/internal/recorder"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pricekeeper",
	Short: "Keep daily closing-price series up to date",
	Long: `PriceKeeper fetches the latest closing price of each configured instrument
and appends it to that instrument's CSV series when it is newer than the last
stored row.

Commands:
  run      - ingest once and exit
  serve    - ingest on a cron schedule, with optional Telegram commands
  mirror   - regenerate an instrument's workbook from its CSV
  config   - validate the configuration file`,
	SilenceUsage: true,
}

var configPath string

func init() {
	def := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", def, "path to config file (env CONFIG_PATH)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// openRecorder falls back to the noop recorder when SQLite cannot be opened.
func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		log.Printf("[WARN] create database dir: %v", err)
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newTelegram(cfg *config.Config) *notifier.TelegramNotifier {
	if cfg.Telegram.BotToken == "" {
		return nil
	}
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	tn.NotifySkip = cfg.Telegram.NotifySkip
	tn.MaxRetries = 3
	return tn
}

// buildDrivers wires the named instruments, or all of them when names is empty.
func buildDrivers(cfg *config.Config, names []string, rec recorder.Recorder, tn *notifier.TelegramNotifier) ([]*ingest.Driver, error) {
	insts := cfg.Instruments
	if len(names) > 0 {
		insts = insts[:0:0]
		for _, n := range names {
			inst, ok := cfg.Find(n)
			if !ok {
				return nil, fmt.Errorf("unknown instrument %q", n)
			}
			insts = append(insts, inst)
		}
	}

	fetcher := collector.NewRouter(collector.NewHTTPFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.Proxy))

	var n ingest.Notifier
	if tn != nil {
		n = tn
	}

	drivers := make([]*ingest.Driver, 0, len(insts))
	for _, inst := range insts {
		d, err := ingest.NewDriver(inst, fetcher, rec, n)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}
