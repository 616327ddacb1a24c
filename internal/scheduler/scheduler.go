package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"TaxSentinel/internal/model"
	"TaxSentinel/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Refresher resolves a rate snapshot, bypassing caches when force is set.
type Refresher interface {
	Resolve(ctx context.Context, force bool) model.RateSnapshot
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Resolver Refresher
	Recorder recorder.Recorder
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, res Refresher, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Resolver: res,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// RegisterAll registers the periodic forced rate refresh.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow refreshes immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() model.RateSnapshot {
	return s.refresh()
}

func (s *Scheduler) refreshTask() {
	s.refresh()
}

func (s *Scheduler) refresh() model.RateSnapshot {
	log.Println("[INFO] running rate refresh")
	snap := s.Resolver.Resolve(s.Ctx, true)
	if snap.IsFallback() {
		log.Printf("[WARN] rate refresh degraded: serving %d embedded rates", len(snap.Rates))
		return snap
	}
	if len(snap.FilledFromFallback) > 0 {
		log.Printf("[WARN] rate refresh from %s filled from fallback: %s",
			snap.Source, strings.Join(snap.FilledFromFallback, ", "))
	}
	log.Printf("[INFO] rate refresh from %s: %d rates", snap.Source, len(snap.Rates))
	return snap
}

// HistoryReport renders the most recent resolutions, newest first.
func (s *Scheduler) HistoryReport(limit int) (string, error) {
	events, err := s.Recorder.History(limit)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	if len(events) == 0 {
		return "no rate resolutions recorded", nil
	}
	var sb strings.Builder
	for _, e := range events {
		status := "live"
		if e.Degraded {
			status = "DEGRADED"
		}
		fmt.Fprintf(&sb, "%s  %-8s  %-10s  %d rates", e.Timestamp.Format("2006-01-02 15:04:05"), status, e.Source, len(e.Rates))
		if e.Forced {
			sb.WriteString("  forced")
		}
		if e.Error != "" {
			fmt.Fprintf(&sb, "  (%s)", e.Error)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
