package main

import (
	"context"
	"io"

	"sutra/internal/config"
	"sutra/internal/coordinator"
	"sutra/internal/executor"
	"sutra/internal/logging"
	"sutra/internal/observability"
)

// runtime is the wired object graph shared by every command.
type runtime struct {
	obs         *observability.Observability
	logger      logging.Logger
	coordinator *coordinator.Coordinator
}

func buildRuntime(cfg config.Config, logOut io.Writer) (*runtime, error) {
	obs, err := observability.New(cfg.Observability, logOut)
	if err != nil {
		return nil, err
	}

	exec := executor.New(
		executor.SimulatedRunner{Delay: cfg.Executor.SimulatedDelay},
		executor.WithConfig(cfg.Executor.Dispatch()),
		executor.WithLogger(logging.ForComponent(obs, "Executor")),
		executor.WithMetrics(obs.Metrics),
		executor.WithTracer(obs.Tracer),
	)
	coord := coordinator.New(exec,
		coordinator.WithLogger(logging.ForComponent(obs, "Coordinator")),
		coordinator.WithMetrics(obs.Metrics),
		coordinator.WithTracer(obs.Tracer),
	)

	return &runtime{
		obs:         obs,
		logger:      logging.ForComponent(obs, "Main"),
		coordinator: coord,
	}, nil
}

func (r *runtime) close(ctx context.Context) error {
	return r.obs.Shutdown(ctx)
}
