// Package scheduler evaluates pipeline schedules and optionally triggers
// runs when they come due.
package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// NextRun returns the first time after from that a standard five-field
// cron expression fires. It reports false for anything else; pipeline
// schedules are free text and need not parse.
func NextRun(expr string, from time.Time) (time.Time, bool) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, false
	}
	next := sched.Next(from)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// Runner is the part of the registry the scheduler drives.
type Runner interface {
	ListPipelines() []core.Pipeline
	RunPipeline(ctx context.Context, id string) *registry.Task[registry.RunResult]
}

// Config configures a Scheduler.
type Config struct {
	Runner   Runner
	Notifier *notifier.Notifier
	Logger   *slog.Logger
	Location *time.Location
}

// Scheduler keeps one cron entry per pipeline with a parseable schedule.
type Scheduler struct {
	runner   Runner
	notifier *notifier.Notifier
	logger   *slog.Logger
	cron     *cron.Cron

	mu      sync.Mutex
	entries map[string]scheduled
}

type scheduled struct {
	expr  string
	entry cron.EntryID
}

// New creates a Scheduler. Nothing fires until Run is called.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		runner:   cfg.Runner,
		notifier: cfg.Notifier,
		logger:   logger,
		cron:     cron.New(cron.WithLocation(loc)),
		entries:  make(map[string]scheduled),
	}
}

// Run starts the cron loop and keeps entries in sync with the pipeline
// registry until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	var updates chan struct{}
	if s.notifier != nil {
		updates = s.notifier.Subscribe(notifier.TopicPipelines)
		defer s.notifier.Unsubscribe(updates)
	}

	s.Sync(ctx)
	s.cron.Start()
	s.logger.Info("scheduler started", "pipelines", len(s.Scheduled()))

	for {
		select {
		case <-ctx.Done():
			stopped := s.cron.Stop()
			<-stopped.Done()
			s.logger.Info("scheduler stopped")
			return nil
		case <-updates:
			s.Sync(ctx)
		}
	}
}

// Sync adds, replaces and removes cron entries to match the registry.
func (s *Scheduler) Sync(ctx context.Context) {
	pipelines := s.runner.ListPipelines()

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(pipelines))
	for _, p := range pipelines {
		seen[p.ID] = struct{}{}

		if cur, ok := s.entries[p.ID]; ok {
			if cur.expr == p.Schedule {
				continue
			}
			s.cron.Remove(cur.entry)
			delete(s.entries, p.ID)
		}

		sched, err := cron.ParseStandard(p.Schedule)
		if err != nil {
			s.logger.Debug("pipeline schedule is not a cron expression", "pipeline", p.ID, "schedule", p.Schedule)
			continue
		}

		id := p.ID
		entry := s.cron.Schedule(sched, cron.FuncJob(func() { s.trigger(ctx, id) }))
		s.entries[id] = scheduled{expr: p.Schedule, entry: entry}
	}

	for id, cur := range s.entries {
		if _, ok := seen[id]; !ok {
			s.cron.Remove(cur.entry)
			delete(s.entries, id)
		}
	}
}

// Scheduled returns the ids of pipelines with a cron entry, sorted.
func (s *Scheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Scheduler) trigger(ctx context.Context, id string) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Info("scheduled run", "pipeline", id)
	task := s.runner.RunPipeline(ctx, id)

	go func() {
		res, err := task.Wait(ctx)
		if err != nil {
			s.logger.Warn("scheduled run did not finish", "pipeline", id, "error", err)
			return
		}
		s.logger.Debug("scheduled run finished", "pipeline", id, "status", res.Status)
	}()
}
