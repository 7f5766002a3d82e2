package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"PriceKeeper/internal/ingest"
	"PriceKeeper/internal/notifier"
	"PriceKeeper/internal/recorder"

	"github.com/robfig/cron/v3"
)

type job struct {
	driver *ingest.Driver
	mu     sync.Mutex
}

// Scheduler runs every instrument on its own cron entry.
type Scheduler struct {
	Cron     *cron.Cron
	Recorder recorder.Recorder
	Ctx      context.Context

	jobs map[string]*job
}

// NewScheduler creates a new Scheduler. An entry whose previous run is still
// in progress is skipped.
func NewScheduler(ctx context.Context, rec recorder.Recorder) *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Recorder: rec,
		Ctx:      ctx,
		jobs:     make(map[string]*job),
	}
}

// Register schedules d under spec.
func (s *Scheduler) Register(spec string, d *ingest.Driver) error {
	if _, ok := s.jobs[d.Instrument]; ok {
		return fmt.Errorf("instrument %s already registered", d.Instrument)
	}
	j := &job{driver: d}
	if _, err := s.Cron.AddFunc(spec, func() { s.run(j) }); err != nil {
		return fmt.Errorf("register %s: %w", d.Instrument, err)
	}
	s.jobs[d.Instrument] = j
	log.Printf("[INFO] registered %s: %s", d.Instrument, spec)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// Names lists the registered instruments in alphabetical order.
func (s *Scheduler) Names() []string {
	names := make([]string, 0, len(s.jobs))
	for n := range s.jobs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RunNow executes one instrument immediately. It reports false when a run of
// the same instrument is already in progress.
func (s *Scheduler) RunNow(name string) (ingest.Result, bool, error) {
	j, ok := s.jobs[name]
	if !ok {
		return ingest.Result{}, false, fmt.Errorf("unknown instrument %q", name)
	}
	res, ran := s.run(j)
	return res, ran, nil
}

// RunAllNow executes every instrument once, in name order.
func (s *Scheduler) RunAllNow() []ingest.Result {
	var out []ingest.Result
	for _, n := range s.Names() {
		if res, ran := s.run(s.jobs[n]); ran {
			out = append(out, res)
		}
	}
	return out
}

func (s *Scheduler) run(j *job) (ingest.Result, bool) {
	if !j.mu.TryLock() {
		log.Printf("[WARN] %s: previous run still in progress, skipping", j.driver.Instrument)
		return ingest.Result{}, false
	}
	defer j.mu.Unlock()
	return j.driver.Run(s.Ctx), true
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return s.help()
	}
	switch fields[0] {
	case "/run":
		if len(fields) == 1 {
			s.RunAllNow()
			return ""
		}
		var replies []string
		for _, name := range fields[1:] {
			_, ran, err := s.RunNow(name)
			switch {
			case err != nil:
				replies = append(replies, "❓ "+err.Error())
			case !ran:
				replies = append(replies, fmt.Sprintf("⏳ %s is already running", name))
			}
		}
		return strings.Join(replies, "\n")
	case "/status":
		runs, err := s.Recorder.LastRuns()
		if err != nil {
			log.Printf("[ERROR] load last runs: %v", err)
			return "❌ run log unavailable"
		}
		return notifier.FormatStatus(runs)
	case "/list":
		return "📋 " + strings.Join(s.Names(), ", ")
	default:
		return s.help()
	}
}

func (s *Scheduler) help() string {
	return "Commands:\n• /run [instrument...]\n• /status\n• /list"
}
