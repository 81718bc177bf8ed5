package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "transient", err: NewTransientError(errors.New("busy"), 503), want: true},
		{name: "wrapped transient", err: fmt.Errorf("geocode: %w", NewTransientError(errors.New("busy"), 429)), want: true},
		{name: "net timeout", err: timeoutErr{}, want: true},
		{name: "connection reset", err: fmt.Errorf("read: %w", syscall.ECONNRESET), want: true},
		{name: "connection refused", err: syscall.ECONNREFUSED, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	te := NewTransientError(inner, 500)
	assert.ErrorIs(t, te, inner)
	assert.Equal(t, "inner", te.Error())
	assert.Equal(t, 500, te.StatusCode)
}

func TestCheckStatus(t *testing.T) {
	assert.NoError(t, CheckStatus("onemap", 200))
	assert.NoError(t, CheckStatus("onemap", 204))

	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		err := CheckStatus("onemap", code)
		assert.Error(t, err)
		assert.True(t, IsTransient(err), "status %d", code)
	}

	for _, code := range []int{400, 401, 403, 404} {
		err := CheckStatus("onemap", code)
		assert.Error(t, err)
		assert.False(t, IsTransient(err), "status %d", code)
		assert.Contains(t, err.Error(), fmt.Sprintf("unexpected status %d", code))
	}
}
