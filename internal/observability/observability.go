package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Observability bundles the logger, metrics and tracer owned by the host
// process.
type Observability struct {
	Logger *Logger
	// FileLogger is nil unless logging.file is configured.
	FileLogger *Logger
	Metrics    *MetricsCollector
	Tracer     *TracerProvider

	logFile io.Closer
}

// New creates a new observability instance writing console logs to out.
func New(config Config, out io.Writer) (*Observability, error) {
	logger := NewLogger(LogConfig{
		Level:  config.Logging.Level,
		Format: config.Logging.Format,
		Output: out,
	})

	obs := &Observability{
		Logger:  logger,
		Metrics: NewMetricsCollector(config.Metrics, nil),
	}

	if config.Logging.File != "" {
		if dir := filepath.Dir(config.Logging.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(config.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		obs.logFile = f
		obs.FileLogger = NewLogger(LogConfig{
			Level:  config.Logging.Level,
			Format: "json",
			Output: f,
		})
	}

	tracer, err := NewTracerProvider(config.Tracing)
	if err != nil {
		logger.Error("Failed to initialize tracing", "error", err)
		tracer = NoopTracerProvider()
	}
	obs.Tracer = tracer

	logger.Info("Observability initialized",
		"log_level", config.Logging.Level,
		"log_file", config.Logging.File,
		"metrics_enabled", config.Metrics.Enabled,
		"tracing_enabled", config.Tracing.Enabled,
	)

	return obs, nil
}

// Shutdown flushes traces and closes the log file.
func (o *Observability) Shutdown(ctx context.Context) error {
	o.Logger.Info("Shutting down observability")

	if err := o.Tracer.Shutdown(ctx); err != nil {
		o.Logger.Error("Failed to shutdown tracing", "error", err)
	}
	if o.logFile != nil {
		if err := o.logFile.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
	}
	return nil
}
