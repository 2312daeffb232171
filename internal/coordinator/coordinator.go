// Package coordinator turns a task into a report: classify risk, run the
// actions, assemble the outcome.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sutra/internal/async"
	"sutra/internal/executor"
	"sutra/internal/logging"
	"sutra/internal/observability"
	"sutra/internal/risk"
	"sutra/internal/task"
)

// ErrNoExecutor is returned when the coordinator has nothing to run actions with.
var ErrNoExecutor = errors.New("coordinator: no executor configured")

// ActionExecutor runs a batch of actions and returns one result per action.
type ActionExecutor interface {
	Execute(ctx context.Context, actions []task.Action) ([]task.ActionResult, error)
}

// Coordinator processes one task per call and keeps no state between calls.
type Coordinator struct {
	executor ActionExecutor
	logger   logging.Logger
	metrics  *observability.MetricsCollector
	tracer   *observability.TracerProvider
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger injects the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logging.OrNop(logger)
	}
}

// WithMetrics injects the metrics collector.
func WithMetrics(metrics *observability.MetricsCollector) Option {
	return func(c *Coordinator) {
		c.metrics = metrics
	}
}

// WithTracer injects the tracer provider.
func WithTracer(tracer *observability.TracerProvider) Option {
	return func(c *Coordinator) {
		c.tracer = tracer
	}
}

// New creates a coordinator on top of exec.
func New(exec ActionExecutor, opts ...Option) *Coordinator {
	c := &Coordinator{
		executor: exec,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDefault wires the reference setup: a simulated runner behind an
// executor with no limits.
func NewDefault(opts ...Option) *Coordinator {
	return New(executor.New(executor.SimulatedRunner{Delay: executor.DefaultSimulatedDelay}), opts...)
}

// Process classifies t, runs its actions and returns the report.
//
// Risk is reported, never enforced. Individual action failures are part of a
// completed report; an error means no report could be produced.
func (c *Coordinator) Process(ctx context.Context, t task.Task) (report *task.Report, err error) {
	if c == nil || c.executor == nil {
		return nil, ErrNoExecutor
	}

	name := t.DisplayName()
	ctx, span := c.tracer.StartSpan(ctx, observability.SpanTaskProcess,
		attribute.String(observability.AttrTaskName, name),
		attribute.Int(observability.AttrActionCount, len(t.Actions)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()
	c.logger.Info("Processing task: %s", name)

	var assessment risk.Assessment
	err = async.Guard(c.logger, "classify", func() error {
		assessment = risk.Assess(t)
		return nil
	})
	if err != nil {
		c.metrics.RecordTask("unknown", string(task.ReportFailed), time.Since(start))
		return nil, fmt.Errorf("classify task %q: %w", name, err)
	}
	c.logger.Info("Risk level determined: %s (score=%d, matched=[%s])",
		assessment.Tier, assessment.Score, strings.Join(assessment.Matched, ","))
	span.SetAttributes(
		attribute.String(observability.AttrRiskLevel, string(assessment.Tier)),
		attribute.Int(observability.AttrRiskScore, assessment.Score),
	)

	results, err := c.executor.Execute(ctx, t.Actions)
	if err != nil {
		c.logger.Error("Task %s aborted before dispatch: %v", name, err)
		c.metrics.RecordTask(string(assessment.Tier), string(task.ReportFailed), time.Since(start))
		return nil, fmt.Errorf("execute actions for %q: %w", name, err)
	}
	if results == nil {
		results = []task.ActionResult{}
	}

	report = &task.Report{
		TaskName:        name,
		RiskLevel:       assessment.Tier,
		ActionsExecuted: len(t.Actions),
		Results:         results,
		Status:          task.ReportCompleted,
	}

	duration := time.Since(start)
	c.metrics.RecordTask(string(report.RiskLevel), string(report.Status), duration)
	c.logger.Info("Task %s completed in %s: %d actions, %d failed",
		name, duration, report.ActionsExecuted, countFailures(results))
	return report, nil
}

func countFailures(results []task.ActionResult) int {
	failed := 0
	for _, result := range results {
		if result.Status == task.ActionFailure {
			failed++
		}
	}
	return failed
}
