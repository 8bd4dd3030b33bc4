package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Worker is a background loop that runs until its context is cancelled
type Worker func(ctx context.Context)

// Closer releases a resource during shutdown
type Closer func(ctx context.Context) error

type closerEntry struct {
	name  string
	close Closer
}

// ServiceManager runs background workers and closes shared resources in
// reverse registration order on shutdown.
type ServiceManager struct {
	logger  *zap.Logger
	cancels map[string]context.CancelFunc
	closers []closerEntry
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewServiceManager creates a new service manager
func NewServiceManager(logger *zap.Logger) *ServiceManager {
	return &ServiceManager{
		logger:  logger,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Start runs fn in its own goroutine under name
func (sm *ServiceManager) Start(name string, fn Worker) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, running := sm.cancels[name]; running {
		return fmt.Errorf("%s already running", name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sm.cancels[name] = cancel
	sm.wg.Add(1)

	go func() {
		defer sm.wg.Done()
		fn(ctx)

		sm.mu.Lock()
		if ctx.Err() == nil {
			sm.logger.Warn("Worker exited on its own", zap.String("worker", name))
		}
		delete(sm.cancels, name)
		sm.mu.Unlock()
		cancel()
	}()

	sm.logger.Info("Worker started", zap.String("worker", name))
	return nil
}

// OnStop registers a resource to close during StopAll
func (sm *ServiceManager) OnStop(name string, fn Closer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.closers = append(sm.closers, closerEntry{name: name, close: fn})
}

// IsRunning checks if the named worker is running
func (sm *ServiceManager) IsRunning(name string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	_, ok := sm.cancels[name]
	return ok
}

// StopAll cancels every worker, waits up to timeout for them to return and
// then runs the closers. Closer errors are logged, not returned.
func (sm *ServiceManager) StopAll(timeout time.Duration) {
	sm.mu.Lock()
	for _, cancel := range sm.cancels {
		cancel()
	}
	closers := sm.closers
	sm.closers = nil
	sm.mu.Unlock()

	// Wait for workers to exit
	done := make(chan struct{})
	go func() {
		sm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		sm.logger.Info("All workers stopped")
	case <-time.After(timeout):
		sm.logger.Warn("Workers did not stop gracefully", zap.Duration("timeout", timeout))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.close(ctx); err != nil {
			sm.logger.Error("Failed to close resource", zap.String("resource", c.name), zap.Error(err))
			continue
		}
		sm.logger.Info("Resource closed", zap.String("resource", c.name))
	}
}
