package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/riv/component"
)

const workerComponentName = "worker"

var (
	_ component.Component   = (*WorkerComponent)(nil)
	_ component.Describable = (*WorkerComponent)(nil)
)

// WorkerComponent runs a Worker under a component.Registry.
type WorkerComponent struct {
	worker  *Worker
	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

// NewWorkerComponent wraps w. The worker starts with the component.
func NewWorkerComponent(w *Worker) *WorkerComponent {
	return &WorkerComponent{worker: w}
}

// Worker returns the wrapped worker.
func (c *WorkerComponent) Worker() *Worker { return c.worker }

// Name returns the component name used for registration.
func (c *WorkerComponent) Name() string { return workerComponentName }

// Start launches the worker goroutine. The worker outlives ctx and runs
// until Stop.
func (c *WorkerComponent) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return fmt.Errorf("worker already started")
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.started = true
	go c.worker.Run(runCtx)
	return nil
}

// Stop abandons any run in progress and waits for the worker to exit.
func (c *WorkerComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-c.worker.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health reports whether the worker goroutine is running.
func (c *WorkerComponent) Health(ctx context.Context) component.Health {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	h := component.Health{Name: workerComponentName, Status: component.StatusHealthy}
	select {
	case <-c.worker.Done():
		h.Status, h.Message = component.StatusUnhealthy, "worker stopped"
	default:
		if !started {
			h.Status, h.Message = component.StatusUnhealthy, "worker not started"
		}
	}
	return h
}

// Describe returns summary info for the startup display.
func (c *WorkerComponent) Describe() component.Description {
	return component.Description{
		Name:    "Pipeline Worker",
		Type:    "worker",
		Details: fmt.Sprintf("delimiter=%q header=%t metrics_every=%d", c.worker.template.Delimiter, c.worker.template.HasHeader, c.worker.metricsEvery),
	}
}
