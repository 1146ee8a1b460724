package assist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestStatusOf(t *testing.T) {
	gerr := &googleapi.Error{Code: 503, Message: "overloaded"}
	aerr, ok := apierror.FromError(gerr)
	require.True(t, ok)

	tests := []struct {
		name   string
		err    error
		status int
		ok     bool
	}{
		{"nil", nil, 0, false},
		{"plain", errors.New("x"), 0, false},
		{"rest", &StatusError{Code: 429}, 429, true},
		{"wrapped rest", fmt.Errorf("gemini: %w", &StatusError{Code: 500}), 500, true},
		{"googleapi", gerr, 503, true},
		{"apierror", fmt.Errorf("call: %w", aerr), 503, true},
		{"classified", &Error{Kind: ErrUpstream, Status: 404}, 404, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ok := StatusOf(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"server", &StatusError{Code: 502}, ErrTransport},
		{"client", &StatusError{Code: 400, Message: "bad key"}, ErrUpstream},
		{"no status", errors.New("reset by peer"), ErrTransport},
		{"deadline", context.DeadlineExceeded, ErrTransport},
		{"parse", &Error{Kind: ErrParse}, ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(OpTips, tt.err)
			assert.ErrorIs(t, err, tt.kind)
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, OpTips, e.Op)
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "could not reach the AI service",
		Message(classify(OpChat, &StatusError{Code: 503, Message: "down"})))
	assert.Equal(t, "AI service rejected the request: status 400: API key not valid",
		Message(classify(OpChat, &StatusError{Code: 400, Message: "API key not valid"})))
	assert.Equal(t, "incomplete AI response",
		Message(&Error{Op: OpReport, Kind: ErrValidation, Err: errors.New(`missing field "healthScore"`)}))
	assert.Equal(t, "plain", Message(errors.New("plain")))
}
