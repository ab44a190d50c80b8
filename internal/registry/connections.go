package registry

import (
	"context"
	"time"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/internal/validate"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// ListConnections returns the connections in insertion order.
func (c *Container) ListConnections() []core.Connection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneConnections(c.connections)
}

// GetConnection returns the connection with id.
func (c *Container) GetConnection(id string) (core.Connection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.connectionIndex(id)
	if i < 0 {
		return core.Connection{}, false
	}
	return c.connections[i].Clone(), true
}

// ResolveConnectionName returns the name of connection id, or "" when it
// does not exist.
func (c *Container) ResolveConnectionName(id string) string {
	conn, ok := c.GetConnection(id)
	if !ok {
		return ""
	}
	return conn.Name
}

// AddConnection stores a new Disconnected connection. Field values are not
// validated until the connection is tested.
func (c *Container) AddConnection(ctx context.Context, in core.ConnectionInput) core.Connection {
	conn := core.Connection{
		ID:     c.newID(),
		Status: core.ConnectionDisconnected,
	}
	conn.Apply(in)

	c.mu.Lock()
	c.connections = append(c.connections, conn)
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.logger.Debug("connection added", "id", conn.ID, "name", conn.Name)
	c.broadcast(notifier.TopicConnections)
	return conn.Clone()
}

// EditConnection overwrites the fields of connection id and clears its
// last error. The status is kept. It reports false if id does not exist.
func (c *Container) EditConnection(ctx context.Context, id string, in core.ConnectionInput) bool {
	c.mu.Lock()
	i := c.connectionIndex(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.connections[i].Apply(in)
	c.connections[i].LastError = nil
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.logger.Debug("connection edited", "id", id)
	c.broadcast(notifier.TopicConnections)
	return true
}

// RemoveConnection deletes connection id. Pipelines referencing it are
// left untouched.
func (c *Container) RemoveConnection(ctx context.Context, id string) bool {
	c.mu.Lock()
	i := c.connectionIndex(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.connections = append(c.connections[:i], c.connections[i+1:]...)
	delete(c.tests, id)
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.logger.Debug("connection removed", "id", id)
	c.broadcast(notifier.TopicConnections)
	return true
}

// TestConnection marks connection id as Testing and, after the configured
// latency, validates the record as stored at that moment. Only the most
// recent test of a connection may resolve it. Cancelling ctx before the
// test resolves restores the previous status.
func (c *Container) TestConnection(ctx context.Context, id string) *Task[TestResult] {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return resolvedTask(TestResult{ConnectionID: id}, ErrClosed)
	}
	i := c.connectionIndex(id)
	if i < 0 {
		c.mu.Unlock()
		return resolvedTask(TestResult{ConnectionID: id, Status: core.ConnectionDisconnected}, nil)
	}

	flight, pending := c.tests[id]
	if !pending {
		flight.prevStatus = c.connections[i].Status
		flight.prevError = c.connections[i].Clone().LastError
	}
	flight.token = c.nextToken()
	c.tests[id] = flight

	c.connections[i].Status = core.ConnectionTesting
	c.connections[i].LastError = nil
	c.persistLocked(ctx)
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("connection test started", "id", id)
	c.broadcast(notifier.TopicConnections)

	task := newTask[TestResult]()
	go func() {
		defer c.wg.Done()
		timer := time.NewTimer(c.testLatency)
		defer timer.Stop()

		select {
		case <-timer.C:
			task.finish(c.resolveTest(id, flight.token), nil)
		case <-ctx.Done():
			task.finish(c.cancelTest(id, flight.token), ctx.Err())
		case <-c.ctx.Done():
			task.finish(c.cancelTest(id, flight.token), context.Canceled)
		}
	}()
	return task
}

func (c *Container) resolveTest(id string, token uint64) TestResult {
	res := TestResult{ConnectionID: id, Status: core.ConnectionDisconnected}

	c.mu.Lock()
	flight, ok := c.tests[id]
	i := c.connectionIndex(id)
	if !ok || flight.token != token || i < 0 {
		c.mu.Unlock()
		c.logger.Debug("connection test superseded", "id", id)
		return res
	}
	delete(c.tests, id)

	conn := &c.connections[i]
	if verr := validate.Check(*conn); verr != nil {
		msg := verr.Message
		conn.Status = core.ConnectionDisconnected
		conn.LastError = &msg
		res.Reason = msg
	} else {
		conn.Status = core.ConnectionConnected
		conn.LastError = nil
		res.Status = core.ConnectionConnected
	}
	res.Applied = true
	c.persistLocked(context.Background())
	c.mu.Unlock()

	c.logger.Info("connection tested", "id", id, "status", res.Status, "reason", res.Reason)
	c.broadcast(notifier.TopicConnections)
	return res
}

func (c *Container) cancelTest(id string, token uint64) TestResult {
	res := TestResult{ConnectionID: id}

	c.mu.Lock()
	flight, ok := c.tests[id]
	i := c.connectionIndex(id)
	if !ok || flight.token != token || i < 0 {
		c.mu.Unlock()
		return res
	}
	delete(c.tests, id)

	c.connections[i].Status = flight.prevStatus
	c.connections[i].LastError = flight.prevError
	res.Status = flight.prevStatus
	c.persistLocked(context.Background())
	c.mu.Unlock()

	c.logger.Debug("connection test cancelled", "id", id)
	c.broadcast(notifier.TopicConnections)
	return res
}

func (c *Container) connectionIndex(id string) int {
	for i := range c.connections {
		if c.connections[i].ID == id {
			return i
		}
	}
	return -1
}
