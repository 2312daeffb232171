package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Reason
	}{
		{"nil", nil, ReasonNone},
		{"panic", &PanicError{Value: "boom"}, ReasonPanic},
		{"deadline", fmt.Errorf("run: %w", context.DeadlineExceeded), ReasonTimeout},
		{"canceled", context.Canceled, ReasonCanceled},
		{"explicit transient", NewTransientError(errors.New("busy"), ""), ReasonTransient},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, ReasonTransient},
		{"syscall", fmt.Errorf("write: %w", syscall.ECONNRESET), ReasonTransient},
		{"explicit permanent", NewPermanentError(errors.New("card declined"), ""), ReasonPermanent},
		{"plain", errors.New("bad payload"), ReasonPermanent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ReasonOf(tc.err))
		})
	}
}

func TestPermanentWinsOverNetworkCause(t *testing.T) {
	err := NewPermanentError(&net.OpError{Op: "dial", Err: errors.New("refused")}, "gateway rejected")
	assert.False(t, IsTransient(err))
	assert.True(t, IsPermanent(err))
	assert.Equal(t, "gateway rejected", err.Error())
}

func TestErrorMessagesFallBackToCause(t *testing.T) {
	cause := errors.New("smtp down")
	assert.Equal(t, "transient error: smtp down", NewTransientError(cause, "").Error())
	assert.Equal(t, "permanent error: smtp down", NewPermanentError(cause, "").Error())
	assert.ErrorIs(t, NewTransientError(cause, ""), cause)
	assert.Equal(t, "action panicked: boom", (&PanicError{Value: "boom"}).Error())
}
