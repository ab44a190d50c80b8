// Package registry owns the connection and pipeline registries and keeps
// them persisted in a key/value backend.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/secret"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// Default simulated latencies.
const (
	DefaultTestLatency = 800 * time.Millisecond
	DefaultRunLatency  = time.Second
)

// ErrClosed is returned by tasks dispatched after Close.
var ErrClosed = errors.New("registry container closed")

// Config configures a Container.
type Config struct {
	Store    core.KVStore
	Notifier *notifier.Notifier
	Logger   *slog.Logger
	// Sealer, when set, encrypts connection passwords at rest.
	Sealer *secret.Sealer

	TestLatency time.Duration
	RunLatency  time.Duration

	// SkipSeed starts an empty workspace instead of the default records.
	SkipSeed bool

	Now   func() time.Time
	NewID func() string
}

// Container holds both registries. It is safe for concurrent use.
type Container struct {
	store    core.KVStore
	notifier *notifier.Notifier
	logger   *slog.Logger
	sealer   *secret.Sealer

	testLatency time.Duration
	runLatency  time.Duration
	skipSeed    bool
	now         func() time.Time
	newID       func() string

	mu          sync.RWMutex
	connections []core.Connection
	pipelines   []core.Pipeline
	tests       map[string]testFlight
	runs        map[string]runFlight
	seq         uint64
	persisted   []byte
	closed      bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// testFlight is the latest outstanding test of a connection and the
// state to restore if it is cancelled.
type testFlight struct {
	token      uint64
	prevStatus core.ConnectionStatus
	prevError  *string
}

type runFlight struct {
	token      uint64
	prevStatus core.PipelineStatus
}

// New loads the persisted state from cfg.Store, falling back to the
// default records when nothing usable is stored.
func New(ctx context.Context, cfg Config) (*Container, error) {
	if cfg.Store == nil {
		return nil, errors.New("registry: a state store is required")
	}

	c := &Container{
		store:       cfg.Store,
		notifier:    cfg.Notifier,
		logger:      cfg.Logger,
		sealer:      cfg.Sealer,
		testLatency: cfg.TestLatency,
		runLatency:  cfg.RunLatency,
		skipSeed:    cfg.SkipSeed,
		now:         cfg.Now,
		newID:       cfg.NewID,
		tests:       make(map[string]testFlight),
		runs:        make(map[string]runFlight),
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.testLatency <= 0 {
		c.testLatency = DefaultTestLatency
	}
	if c.runLatency <= 0 {
		c.runLatency = DefaultRunLatency
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	if err := c.load(ctx); err != nil {
		c.cancel()
		return nil, err
	}
	return c, nil
}

// Close cancels outstanding tests and runs and waits for them to roll back.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}

// Snapshot returns copies of both registries.
func (c *Container) Snapshot() core.AppState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return core.AppState{
		Connections: cloneConnections(c.connections),
		Pipelines:   clonePipelines(c.pipelines),
	}
}

// =============================================================================
// Persistence
// =============================================================================

func (c *Container) load(ctx context.Context) error {
	data, err := c.store.Get(ctx, core.StateKey)
	switch {
	case errors.Is(err, core.ErrKeyNotFound):
		c.logger.Debug("no persisted state, starting from defaults")
		c.resetLocked()
		c.persistLocked(ctx)
		return nil
	case err != nil:
		return fmt.Errorf("failed to read state: %w", err)
	}

	st, err := c.decode(data)
	if err != nil {
		c.logger.Warn("discarding malformed persisted state", "error", err)
		c.resetLocked()
		c.persistLocked(ctx)
		return nil
	}

	// Nothing is in flight in a fresh process.
	for i := range st.Connections {
		if st.Connections[i].Status == core.ConnectionTesting {
			st.Connections[i].Status = core.ConnectionDisconnected
		}
	}
	for i := range st.Pipelines {
		if st.Pipelines[i].Status == core.PipelineRunning {
			st.Pipelines[i].Status = core.PipelineIdle
		}
	}

	c.connections = st.Connections
	c.pipelines = st.Pipelines
	c.persisted = data
	return nil
}

func (c *Container) resetLocked() {
	if c.skipSeed {
		c.connections = nil
		c.pipelines = nil
		return
	}
	st := DefaultState(c.now())
	c.connections = st.Connections
	c.pipelines = st.Pipelines
}

// Reload re-reads the persisted state after an external change. A payload
// that is malformed or identical to the last write is ignored.
func (c *Container) Reload(ctx context.Context) error {
	data, err := c.store.Get(ctx, core.StateKey)
	if errors.Is(err, core.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	c.mu.Lock()
	if bytes.Equal(data, c.persisted) {
		c.mu.Unlock()
		return nil
	}

	st, err := c.decode(data)
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("ignoring malformed state change", "error", err)
		return nil
	}

	for i := range st.Connections {
		conn := &st.Connections[i]
		if _, inFlight := c.tests[conn.ID]; inFlight {
			conn.Status = core.ConnectionTesting
			conn.LastError = nil
		} else if conn.Status == core.ConnectionTesting {
			conn.Status = core.ConnectionDisconnected
		}
	}
	for i := range st.Pipelines {
		p := &st.Pipelines[i]
		if _, inFlight := c.runs[p.ID]; inFlight {
			p.Status = core.PipelineRunning
		} else if p.Status == core.PipelineRunning {
			p.Status = core.PipelineIdle
		}
	}

	c.connections = st.Connections
	c.pipelines = st.Pipelines
	for id := range c.tests {
		if c.connectionIndex(id) < 0 {
			delete(c.tests, id)
		}
	}
	for id := range c.runs {
		if c.pipelineIndex(id) < 0 {
			delete(c.runs, id)
		}
	}
	c.persisted = data
	c.mu.Unlock()

	c.logger.Info("state reloaded", "connections", len(st.Connections), "pipelines", len(st.Pipelines))
	c.broadcast(notifier.TopicConnections)
	c.broadcast(notifier.TopicPipelines)
	return nil
}

func (c *Container) decode(data []byte) (core.AppState, error) {
	var raw struct {
		Connections *[]core.Connection `json:"connections"`
		Pipelines   *[]core.Pipeline   `json:"pipeline"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return core.AppState{}, err
	}
	if raw.Connections == nil || raw.Pipelines == nil {
		return core.AppState{}, errors.New("state must hold connections and pipeline arrays")
	}

	st := core.AppState{Connections: *raw.Connections, Pipelines: *raw.Pipelines}
	if err := st.Validate(); err != nil {
		return core.AppState{}, err
	}

	for i := range st.Connections {
		conn := &st.Connections[i]
		if !secret.IsSealed(conn.Password) {
			continue
		}
		if c.sealer == nil {
			c.logger.Warn("connection password is sealed but no secrets key is configured", "connection", conn.ID)
			conn.Password = ""
			continue
		}
		plain, err := c.sealer.Open(conn.Password)
		if err != nil {
			c.logger.Warn("failed to unseal connection password", "connection", conn.ID, "error", err)
			conn.Password = ""
			continue
		}
		conn.Password = plain
	}
	return st, nil
}

// persistLocked writes the current state. Failures are logged and leave the
// in-memory change in place. The caller must hold c.mu.
func (c *Container) persistLocked(ctx context.Context) {
	st := core.AppState{
		Connections: cloneConnections(c.connections),
		Pipelines:   clonePipelines(c.pipelines),
	}
	if st.Connections == nil {
		st.Connections = []core.Connection{}
	}
	if st.Pipelines == nil {
		st.Pipelines = []core.Pipeline{}
	}

	if c.sealer != nil {
		for i := range st.Connections {
			sealed, err := c.sealer.Seal(st.Connections[i].Password)
			if err != nil {
				c.logger.Error("failed to seal connection password", "connection", st.Connections[i].ID, "error", err)
				return
			}
			st.Connections[i].Password = sealed
		}
	}

	data, err := json.Marshal(st)
	if err != nil {
		c.logger.Error("failed to encode state", "error", err)
		return
	}
	if err := c.store.Put(ctx, core.StateKey, data); err != nil {
		c.logger.Error("failed to persist state", "error", err)
		return
	}
	c.persisted = data
}

func (c *Container) broadcast(topic notifier.Topic) {
	if c.notifier != nil {
		c.notifier.Broadcast(topic)
	}
}

func (c *Container) nextToken() uint64 {
	c.seq++
	return c.seq
}

func cloneConnections(in []core.Connection) []core.Connection {
	if in == nil {
		return nil
	}
	out := make([]core.Connection, len(in))
	for i, conn := range in {
		out[i] = conn.Clone()
	}
	return out
}

func clonePipelines(in []core.Pipeline) []core.Pipeline {
	if in == nil {
		return nil
	}
	out := make([]core.Pipeline, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
