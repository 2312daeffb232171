package async

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sutraerrors "sutra/internal/errors"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Error(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

func TestGuardConvertsPanic(t *testing.T) {
	logger := &recordingLogger{}
	err := Guard(logger, "action", func() error {
		panic("boom")
	})

	var panicErr *sutraerrors.PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "boom", panicErr.Value)
	require.Equal(t, 1, logger.count())
	assert.Contains(t, logger.lines[0], "recovered panic [action]: boom")
}

func TestGuardPassesThroughErrors(t *testing.T) {
	want := errors.New("plain")
	assert.Equal(t, want, Guard(nil, "", func() error { return want }))
	assert.NoError(t, Guard(nil, "", func() error { return nil }))
}
