package graph

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"archmap/backend/internal/metrics"
	"archmap/backend/pkg/config"
	"archmap/backend/pkg/errors"
	"archmap/backend/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Runner executes one Cypher statement and returns every record it produced.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error)
}

// ============================================================================
// Neo4j Runner
// ============================================================================

// Neo4jRunner opens one write session per call against a lazily created driver.
// The driver is created on first use so that missing credentials fail at the
// first database call rather than at startup.
type Neo4jRunner struct {
	cfg    *config.Config
	logger *zap.Logger

	mu     sync.Mutex
	driver neo4j.DriverWithContext
}

// NewNeo4jRunner creates a runner that builds its driver from cfg on first use.
func NewNeo4jRunner(cfg *config.Config) *Neo4jRunner {
	return &Neo4jRunner{
		cfg:    cfg,
		logger: logger.Named("neo4j"),
	}
}

// NewNeo4jRunnerWithDriver wraps an existing driver.
func NewNeo4jRunnerWithDriver(driver neo4j.DriverWithContext, database string) *Neo4jRunner {
	return &Neo4jRunner{
		cfg:    &config.Config{Neo4jDatabase: database},
		logger: logger.Named("neo4j"),
		driver: driver,
	}
}

// Driver returns the shared driver, creating it if needed.
func (r *Neo4jRunner) Driver() (neo4j.DriverWithContext, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.driver != nil {
		return r.driver, nil
	}
	if missing := r.cfg.MissingNeo4jSetting(); missing != "" {
		return nil, errors.NewConfigMissingRequired(missing)
	}

	driver, err := neo4j.NewDriverWithContext(
		r.cfg.Neo4jURI,
		neo4j.BasicAuth(r.cfg.Neo4jUsername, r.cfg.Neo4jPassword, ""),
		func(c *neo4jconfig.Config) {
			c.MaxConnectionPoolSize = r.cfg.Neo4jMaxPoolSize
			c.SocketConnectTimeout = r.cfg.Neo4jConnectionTimeout
			c.MaxTransactionRetryTime = r.cfg.Neo4jMaxRetryTime
		},
	)
	if err != nil {
		return nil, errors.NewGraphConnectionFailed(r.cfg.Neo4jURI, err)
	}

	r.driver = driver
	r.logger.Info("Neo4j driver created",
		zap.String("uri", r.cfg.Neo4jURI),
		zap.String("database", r.cfg.Neo4jDatabase),
	)
	return driver, nil
}

// Verify checks connectivity. On failure the driver is dropped so the next call
// starts from scratch.
func (r *Neo4jRunner) Verify(ctx context.Context) error {
	driver, err := r.Driver()
	if err != nil {
		return err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		r.mu.Lock()
		if r.driver == driver {
			r.driver = nil
		}
		r.mu.Unlock()
		_ = driver.Close(ctx)
		return errors.NewGraphConnectionFailed(r.cfg.Neo4jURI, err)
	}
	r.logger.Info("Successfully connected to Neo4j database")
	return nil
}

// Run implements Runner.
func (r *Neo4jRunner) Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	driver, err := r.Driver()
	if err != nil {
		return nil, err
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: r.cfg.Neo4jDatabase,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

// Close closes the driver if it was ever created.
func (r *Neo4jRunner) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.driver == nil {
		return nil
	}
	err := r.driver.Close(ctx)
	r.driver = nil
	return err
}

// ============================================================================
// Circuit Breaker
// ============================================================================

// BreakerSettings tunes the gateway circuit breaker.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerSettings trips after 5 calls with 80% failures and retries after a minute.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// BreakerRunner stops sending statements to a database that keeps failing.
// It never retries.
type BreakerRunner struct {
	next Runner
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerRunner wraps next with a circuit breaker.
func NewBreakerRunner(next Runner, settings BreakerSettings, collector *metrics.Collector) *BreakerRunner {
	log := logger.Named("breaker")
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "neo4j",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			collector.SetBreakerOpen(to == gobreaker.StateOpen)
		},
		IsSuccessful: countsAsSuccess,
	})
	return &BreakerRunner{next: next, cb: cb}
}

// countsAsSuccess keeps caller mistakes from tripping the breaker: only
// connectivity and database failures count against it.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.IsErrorType(err, errors.ErrorTypeConfig) {
		return true
	}
	var neoErr *neo4j.Neo4jError
	if stderrors.As(err, &neoErr) && neoErr.Classification() == "ClientError" {
		return true
	}
	return false
}

// Run implements Runner.
func (b *BreakerRunner) Run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Run(ctx, query, params)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.NewGraphUnavailable(err)
		}
		return nil, err
	}
	records, _ := out.([]*neo4j.Record)
	return records, nil
}

// State reports the breaker state.
func (b *BreakerRunner) State() gobreaker.State {
	return b.cb.State()
}
