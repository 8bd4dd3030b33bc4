package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry
const ServiceName = "archmap"

var (
	mu       sync.RWMutex
	global   *zap.Logger
	fallback = sync.OnceValue(func() *zap.Logger {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	})
)

// Init builds the global logger. Production writes JSON at info, anything
// else writes colored console output at debug. A non-empty level overrides
// the environment's default.
func Init(env, level string) error {
	config, err := buildConfig(env, level)
	if err != nil {
		return err
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	global = logger
	mu.Unlock()
	return nil
}

func buildConfig(env, level string) (zap.Config, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return config, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		config.Level = zap.NewAtomicLevelAt(parsed)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.InitialFields = map[string]interface{}{"service": ServiceName}
	return config, nil
}

// Sync flushes any buffered log entries
func Sync() {
	mu.RLock()
	logger := global
	mu.RUnlock()
	if logger != nil {
		_ = logger.Sync()
	}
}

// Get returns the global logger, or a shared development logger before Init
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return fallback()
	}
	return global
}

// Named returns a child of the global logger scoped to a component
func Named(component string) *zap.Logger {
	return Get().Named(component)
}
