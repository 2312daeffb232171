// Package executor runs a task's actions concurrently and collects one result
// per action in input order.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"sutra/internal/async"
	sutraerrors "sutra/internal/errors"
	"sutra/internal/logging"
	"sutra/internal/observability"
	"sutra/internal/task"
)

// ErrNoRunner is returned before dispatch when no runner is configured.
var ErrNoRunner = errors.New("executor: no action runner configured")

// Config tunes dispatch. Zero values keep every action running at once with
// no per-action deadline.
type Config struct {
	MaxConcurrency int
	ActionTimeout  time.Duration
}

// Executor fans actions out to a Runner and joins on all of them.
type Executor struct {
	runner  Runner
	config  Config
	logger  logging.Logger
	metrics *observability.MetricsCollector
	tracer  *observability.TracerProvider
}

// Option configures an Executor.
type Option func(*Executor)

// WithConfig sets concurrency and timeout limits.
func WithConfig(config Config) Option {
	return func(e *Executor) {
		e.config = config
	}
}

// WithLogger injects the logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Executor) {
		e.logger = logging.OrNop(logger)
	}
}

// WithMetrics injects the metrics collector.
func WithMetrics(metrics *observability.MetricsCollector) Option {
	return func(e *Executor) {
		e.metrics = metrics
	}
}

// WithTracer injects the tracer provider.
func WithTracer(tracer *observability.TracerProvider) Option {
	return func(e *Executor) {
		e.tracer = tracer
	}
}

// New creates an executor dispatching to runner.
func New(runner Runner, opts ...Option) *Executor {
	e := &Executor{
		runner: runner,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every action concurrently and waits for all of them.
//
// results[i] always describes actions[i]. A failing action only affects its
// own slot; the returned error is reserved for faults before dispatch.
func (e *Executor) Execute(ctx context.Context, actions []task.Action) ([]task.ActionResult, error) {
	if e == nil || e.runner == nil {
		return nil, ErrNoRunner
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dispatch actions: %w", err)
	}

	results := make([]task.ActionResult, len(actions))
	if len(actions) == 0 {
		return results, nil
	}

	e.logger.Info("Executing %d actions in parallel", len(actions))

	var g errgroup.Group
	if e.config.MaxConcurrency > 0 {
		g.SetLimit(e.config.MaxConcurrency)
	}
	for i, action := range actions {
		g.Go(func() error {
			results[i] = e.runOne(ctx, i, action)
			// never fail the group: siblings must keep running
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (e *Executor) runOne(ctx context.Context, index int, action task.Action) task.ActionResult {
	actionType := action.ActionType()
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanActionRun,
		attribute.String(observability.AttrActionType, actionType),
		attribute.Int(observability.AttrActionIndex, index),
	)
	defer span.End()

	e.metrics.ActionStarted()
	start := time.Now()
	output, err := e.invoke(ctx, action)
	duration := time.Since(start)

	if err != nil {
		reason := sutraerrors.ReasonOf(err)
		e.metrics.RecordAction(string(task.ActionFailure), string(reason), duration)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(observability.AttrStatus, string(task.ActionFailure)))
		e.logger.Warn("Action %d (%s) failed after %s [%s]: %v", index, actionType, duration, reason, err)
		return task.ActionResult{
			Action: actionType,
			Status: task.ActionFailure,
			Result: err.Error(),
		}
	}

	e.metrics.RecordAction(string(task.ActionSuccess), "none", duration)
	span.SetAttributes(attribute.String(observability.AttrStatus, string(task.ActionSuccess)))
	e.logger.Debug("Action %d (%s) succeeded in %s", index, actionType, duration)
	return task.ActionResult{
		Action: actionType,
		Status: task.ActionSuccess,
		Result: output,
	}
}

type outcome struct {
	output string
	err    error
}

// invoke calls the runner, converting panics into errors. With an action
// timeout the runner gets its own deadline and is abandoned once it passes,
// so a runner that ignores its context cannot hold up the join.
func (e *Executor) invoke(ctx context.Context, action task.Action) (string, error) {
	timeout := e.config.ActionTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	run := func() outcome {
		var o outcome
		o.err = async.Guard(e.logger, "action "+action.ActionType(), func() error {
			var err error
			o.output, err = e.runner.Run(ctx, action)
			return err
		})
		return o
	}

	if timeout <= 0 {
		o := run()
		return o.output, o.err
	}

	done := make(chan outcome, 1)
	go func() {
		done <- run()
	}()

	select {
	case o := <-done:
		return o.output, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("action %s timed out after %s: %w", action.ActionType(), timeout, ctx.Err())
		}
		return "", fmt.Errorf("action %s interrupted: %w", action.ActionType(), ctx.Err())
	}
}
