package executor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sutra/internal/observability"
	"sutra/internal/task"
)

func actionsOf(types ...string) []task.Action {
	out := make([]task.Action, len(types))
	for i, typ := range types {
		out[i] = task.Action{Type: typ}
	}
	return out
}

func TestExecuteEmptyReturnsImmediately(t *testing.T) {
	exec := New(SimulatedRunner{Delay: time.Hour})

	start := time.Now()
	results, err := exec.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExecutePreservesOrder(t *testing.T) {
	// later actions finish first
	runner := RunnerFunc(func(ctx context.Context, action task.Action) (string, error) {
		var step int
		_, _ = fmt.Sscanf(action.Type, "step-%d", &step)
		time.Sleep(time.Duration(10-step) * 5 * time.Millisecond)
		return "done " + action.Type, nil
	})

	types := make([]string, 10)
	for i := range types {
		types[i] = fmt.Sprintf("step-%d", i)
	}

	results, err := New(runner).Execute(context.Background(), actionsOf(types...))
	require.NoError(t, err)
	require.Len(t, results, len(types))
	for i, result := range results {
		assert.Equal(t, types[i], result.Action)
		assert.Equal(t, task.ActionSuccess, result.Status)
		assert.Equal(t, "done "+types[i], result.Result)
	}
}

func TestExecuteDefaultsUnknownType(t *testing.T) {
	results, err := New(SimulatedRunner{}).Execute(context.Background(), []task.Action{{Data: task.StringData("x")}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "unknown", results[0].Action)
	assert.Equal(t, "Executed unknown action", results[0].Result)
}

func TestExecuteIsolatesFailure(t *testing.T) {
	runner := RunnerFunc(func(ctx context.Context, action task.Action) (string, error) {
		if action.Type == "charge" {
			return "", errors.New("card declined")
		}
		return SimulatedRunner{Delay: 10 * time.Millisecond}.Run(ctx, action)
	})

	results, err := New(runner).Execute(context.Background(), actionsOf("read", "charge", "notify", "log"))
	require.NoError(t, err)
	require.Len(t, results, 4)

	failures := 0
	for i, result := range results {
		if i == 1 {
			assert.Equal(t, task.ActionFailure, result.Status)
			assert.Equal(t, "card declined", result.Result)
			failures++
			continue
		}
		assert.Equal(t, task.ActionSuccess, result.Status)
	}
	assert.Equal(t, 1, failures)
}

func TestExecuteAllFailuresStillCompletes(t *testing.T) {
	runner := RunnerFunc(func(ctx context.Context, action task.Action) (string, error) {
		return "", fmt.Errorf("%s unavailable", action.Type)
	})

	results, err := New(runner).Execute(context.Background(), actionsOf("a", "b", "c"))
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, result := range results {
		assert.Equal(t, task.ActionFailure, result.Status)
		assert.Equal(t, result.Action+" unavailable", result.Result)
	}
}

func TestExecuteRecoversPanickingRunner(t *testing.T) {
	runner := RunnerFunc(func(ctx context.Context, action task.Action) (string, error) {
		if action.Type == "explode" {
			panic("runner bug")
		}
		return "ok", nil
	})

	results, err := New(runner).Execute(context.Background(), actionsOf("explode", "fine"))
	require.NoError(t, err)
	assert.Equal(t, task.ActionFailure, results[0].Status)
	assert.Contains(t, results[0].Result, "runner bug")
	assert.Equal(t, task.ActionSuccess, results[1].Status)
}

func TestExecuteRunsConcurrently(t *testing.T) {
	const (
		n     = 8
		delay = 100 * time.Millisecond
	)
	types := make([]string, n)
	for i := range types {
		types[i] = fmt.Sprintf("a%d", i)
	}

	start := time.Now()
	results, err := New(SimulatedRunner{Delay: delay}).Execute(context.Background(), actionsOf(types...))
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, results, n)
	// closer to one delay than to n delays
	assert.Less(t, elapsed, time.Duration(n)*delay/2)
}

func TestExecuteHonorsConcurrencyLimit(t *testing.T) {
	var running, peak atomic.Int32
	runner := RunnerFunc(func(ctx context.Context, action task.Action) (string, error) {
		now := running.Add(1)
		for {
			old := peak.Load()
			if now <= old || peak.CompareAndSwap(old, now) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		running.Add(-1)
		return "ok", nil
	})

	exec := New(runner, WithConfig(Config{MaxConcurrency: 2}))
	results, err := exec.Execute(context.Background(), actionsOf("a", "b", "c", "d", "e", "f"))
	require.NoError(t, err)
	assert.Len(t, results, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestExecuteActionTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	runner := RunnerFunc(func(ctx context.Context, action task.Action) (string, error) {
		if action.Type == "stuck" {
			// ignores its context on purpose
			<-release
			return "too late", nil
		}
		return "ok", nil
	})

	exec := New(runner, WithConfig(Config{ActionTimeout: 50 * time.Millisecond}))

	start := time.Now()
	results, err := exec.Execute(context.Background(), actionsOf("quick", "stuck"))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, task.ActionSuccess, results[0].Status)
	assert.Equal(t, task.ActionFailure, results[1].Status)
	assert.Contains(t, results[1].Result, "timed out")
}

func TestExecuteRequiresRunner(t *testing.T) {
	_, err := New(nil).Execute(context.Background(), actionsOf("a"))
	assert.ErrorIs(t, err, ErrNoRunner)

	var nilExec *Executor
	_, err = nilExec.Execute(context.Background(), actionsOf("a"))
	assert.ErrorIs(t, err, ErrNoRunner)
}

func TestExecuteRejectsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	runner := RunnerFunc(func(ctx context.Context, action task.Action) (string, error) {
		calls.Add(1)
		return "ok", nil
	})

	_, err := New(runner).Execute(ctx, actionsOf("a", "b"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestExecuteRecordsMetrics(t *testing.T) {
	metrics := observability.NewMetricsCollector(observability.MetricsConfig{Enabled: true}, prometheus.NewRegistry())
	runner := RunnerFunc(func(ctx context.Context, action task.Action) (string, error) {
		if action.Type == "bad" {
			return "", errors.New("nope")
		}
		return "ok", nil
	})

	_, err := New(runner, WithMetrics(metrics), WithTracer(observability.NoopTracerProvider())).
		Execute(context.Background(), actionsOf("good", "bad", "good"))
	require.NoError(t, err)

	body := scrape(t, metrics)
	assert.Contains(t, body, `sutra_executor_action_runs_total{reason="none",status="success"} 2`)
	assert.Contains(t, body, `sutra_executor_action_runs_total{reason="permanent",status="failure"} 1`)
	assert.Contains(t, body, `sutra_executor_actions_in_flight 0`)
}

func scrape(t *testing.T, metrics *observability.MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
