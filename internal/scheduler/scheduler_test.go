package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/registry"
	"github.com/leapstack-labs/launchpad/internal/state"
	"github.com/leapstack-labs/launchpad/internal/testutil"
	"github.com/leapstack-labs/launchpad/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRun(t *testing.T) {
	from := time.Date(2026, 5, 1, 10, 15, 0, 0, time.UTC)

	tests := []struct {
		expr   string
		want   time.Time
		wantOK bool
	}{
		{"0 */6 * * *", time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), true},
		{"0 2 * * *", time.Date(2026, 5, 2, 2, 0, 0, 0, time.UTC), true},
		{"@hourly", time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC), true},
		{"every morning", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok := NextRun(tt.expr, from)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func newContainer(t *testing.T, n *notifier.Notifier) *registry.Container {
	t.Helper()
	c, err := registry.New(context.Background(), registry.Config{
		Store:      state.NewMemoryStore(),
		Notifier:   n,
		Logger:     testutil.NewTestLogger(t),
		RunLatency: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSync(t *testing.T) {
	c := newContainer(t, nil)
	ctx := context.Background()
	s := New(Config{Runner: c, Logger: testutil.NewTestLogger(t)})

	s.Sync(ctx)
	assert.Equal(t, []string{"daily-orders-sync", "finance-reconcile"}, s.Scheduled())

	p := c.AddPipeline(ctx, core.PipelineInput{Name: "Adhoc", Schedule: "when asked"})
	s.Sync(ctx)
	assert.NotContains(t, s.Scheduled(), p.ID)

	in := p.Input()
	in.Schedule = "*/5 * * * *"
	require.True(t, c.EditPipeline(ctx, p.ID, in))
	s.Sync(ctx)
	assert.Contains(t, s.Scheduled(), p.ID)

	require.True(t, c.RemovePipeline(ctx, "daily-orders-sync"))
	s.Sync(ctx)
	assert.NotContains(t, s.Scheduled(), "daily-orders-sync")
	assert.Len(t, s.cron.Entries(), 2)
}

type recordingRunner struct {
	*registry.Container
	mu  sync.Mutex
	ids []string
}

func (r *recordingRunner) RunPipeline(ctx context.Context, id string) *registry.Task[registry.RunResult] {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
	return r.Container.RunPipeline(ctx, id)
}

func TestTrigger(t *testing.T) {
	r := &recordingRunner{Container: newContainer(t, nil)}
	s := New(Config{Runner: r, Logger: testutil.NewTestLogger(t)})

	s.trigger(context.Background(), "daily-orders-sync")

	assert.Eventually(t, func() bool {
		p, _ := r.GetPipeline("daily-orders-sync")
		return p.Status == core.PipelineSucceeded
	}, time.Second, 5*time.Millisecond)

	r.mu.Lock()
	assert.Equal(t, []string{"daily-orders-sync"}, r.ids)
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.trigger(ctx, "finance-reconcile")
	r.mu.Lock()
	assert.Len(t, r.ids, 1, "no runs after shutdown")
	r.mu.Unlock()
}

func TestRun_FollowsRegistryChanges(t *testing.T) {
	n := notifier.New()
	c := newContainer(t, n)
	s := New(Config{Runner: c, Notifier: n, Logger: testutil.NewTestLogger(t)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(s.Scheduled()) == 2 }, time.Second, 5*time.Millisecond)

	c.AddPipeline(context.Background(), core.PipelineInput{Name: "Hourly", Schedule: "@hourly"})
	assert.Eventually(t, func() bool { return len(s.Scheduled()) == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
