package registry

import (
	"context"
	"strings"
	"time"

	"github.com/leapstack-labs/launchpad/internal/notifier"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// ListPipelines returns the pipelines in insertion order.
func (c *Container) ListPipelines() []core.Pipeline {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clonePipelines(c.pipelines)
}

// GetPipeline returns the pipeline with id.
func (c *Container) GetPipeline(id string) (core.Pipeline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.pipelineIndex(id)
	if i < 0 {
		return core.Pipeline{}, false
	}
	return c.pipelines[i].Clone(), true
}

// AddPipeline stores a new Idle pipeline. The connection id is not checked.
func (c *Container) AddPipeline(ctx context.Context, in core.PipelineInput) core.Pipeline {
	p := core.Pipeline{
		ID:     c.newID(),
		Status: core.PipelineIdle,
	}
	p.Apply(in)

	c.mu.Lock()
	c.pipelines = append(c.pipelines, p)
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.logger.Debug("pipeline added", "id", p.ID, "name", p.Name)
	c.broadcast(notifier.TopicPipelines)
	return p.Clone()
}

// EditPipeline overwrites the definition of pipeline id, keeping its run
// state. It reports false if id does not exist.
func (c *Container) EditPipeline(ctx context.Context, id string, in core.PipelineInput) bool {
	c.mu.Lock()
	i := c.pipelineIndex(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.pipelines[i].Apply(in)
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.logger.Debug("pipeline edited", "id", id)
	c.broadcast(notifier.TopicPipelines)
	return true
}

// RemovePipeline deletes pipeline id.
func (c *Container) RemovePipeline(ctx context.Context, id string) bool {
	c.mu.Lock()
	i := c.pipelineIndex(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.pipelines = append(c.pipelines[:i], c.pipelines[i+1:]...)
	delete(c.runs, id)
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.logger.Debug("pipeline removed", "id", id)
	c.broadcast(notifier.TopicPipelines)
	return true
}

// RunFails reports whether a run of pipeline id fails.
func RunFails(id string) bool {
	return strings.Contains(strings.ToLower(id), "legacy")
}

// RunPipeline marks pipeline id as Running and completes the run after the
// configured latency.
func (c *Container) RunPipeline(ctx context.Context, id string) *Task[RunResult] {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return resolvedTask(RunResult{PipelineID: id}, ErrClosed)
	}
	i := c.pipelineIndex(id)
	if i < 0 {
		c.mu.Unlock()
		return resolvedTask(RunResult{PipelineID: id}, nil)
	}

	flight, pending := c.runs[id]
	if !pending {
		flight.prevStatus = c.pipelines[i].Status
	}
	flight.token = c.nextToken()
	c.runs[id] = flight

	c.pipelines[i].Status = core.PipelineRunning
	c.persistLocked(ctx)
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("pipeline run started", "id", id)
	c.broadcast(notifier.TopicPipelines)

	task := newTask[RunResult]()
	go func() {
		defer c.wg.Done()
		timer := time.NewTimer(c.runLatency)
		defer timer.Stop()

		select {
		case <-timer.C:
			task.finish(c.resolveRun(id, flight.token), nil)
		case <-ctx.Done():
			task.finish(c.cancelRun(id, flight.token), ctx.Err())
		case <-c.ctx.Done():
			task.finish(c.cancelRun(id, flight.token), context.Canceled)
		}
	}()
	return task
}

func (c *Container) resolveRun(id string, token uint64) RunResult {
	res := RunResult{PipelineID: id, Status: core.PipelineSucceeded, FinishedAt: c.now().UTC()}
	if RunFails(id) {
		res.Status = core.PipelineFailed
	}

	c.mu.Lock()
	flight, ok := c.runs[id]
	i := c.pipelineIndex(id)
	if !ok || flight.token != token || i < 0 {
		c.mu.Unlock()
		c.logger.Debug("pipeline run superseded", "id", id)
		return res
	}
	delete(c.runs, id)

	finished := res.FinishedAt
	c.pipelines[i].Status = res.Status
	c.pipelines[i].LastRunAt = &finished
	res.Applied = true
	c.persistLocked(context.Background())
	c.mu.Unlock()

	c.logger.Info("pipeline run finished", "id", id, "status", res.Status)
	c.broadcast(notifier.TopicPipelines)
	return res
}

func (c *Container) cancelRun(id string, token uint64) RunResult {
	res := RunResult{PipelineID: id}

	c.mu.Lock()
	flight, ok := c.runs[id]
	i := c.pipelineIndex(id)
	if !ok || flight.token != token || i < 0 {
		c.mu.Unlock()
		return res
	}
	delete(c.runs, id)

	c.pipelines[i].Status = flight.prevStatus
	res.Status = flight.prevStatus
	c.persistLocked(context.Background())
	c.mu.Unlock()

	c.logger.Debug("pipeline run cancelled", "id", id)
	c.broadcast(notifier.TopicPipelines)
	return res
}

func (c *Container) pipelineIndex(id string) int {
	for i := range c.pipelines {
		if c.pipelines[i].ID == id {
			return i
		}
	}
	return -1
}
