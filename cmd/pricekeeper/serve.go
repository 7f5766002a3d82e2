package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PriceKeeper/internal/scheduler"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run ingestions on each instrument's cron schedule",
	Long: `Start the daemon. Every instrument gets its own six-field cron entry
(seconds first). A still-running ingestion is never started twice.

With a Telegram bot configured, outcomes are pushed to the chat and the
commands /run [instrument...], /status and /list are accepted.`,
	RunE: runServe,
}

var runOnStart bool

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "ingest every instrument once at startup (env RUN_ON_START)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Println("[INFO] PriceKeeper starting...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rec := openRecorder(cfg)
	defer rec.Close()

	tn := newTelegram(cfg)
	drivers, err := buildDrivers(cfg, nil, rec, tn)
	if err != nil {
		return err
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, rec)
	for _, d := range drivers {
		inst, _ := cfg.Find(d.Instrument)
		if err := sched.Register(inst.Cron, d); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if runOnStart || cfg.Schedule.RunOnStart || os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] run on start enabled, ingesting all instruments now")
		go sched.RunAllNow()
	}

	log.Println("[INFO] PriceKeeper is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	return nil
}
