package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "Server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "InvalidFormat", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "InvalidInput", err: NewInvalidInput(errors.New("bad")), want: http.StatusUnprocessableEntity},
		{name: "NotFound", err: NewBusiness("missing", CodeNotFound), want: http.StatusNotFound},
		{name: "Gone", err: NewBusiness("expired", CodeGone), want: http.StatusGone},
		{name: "Unauthorized", err: NewBusiness("no", CodeUnauthorized), want: http.StatusUnauthorized},
		{name: "Forbidden", err: NewBusiness("no", CodeForbidden), want: http.StatusForbidden},
		{name: "TooMany", err: NewBusiness("slow down", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "Unavailable", err: NewBusiness("gateway down", CodeUnavailable), want: http.StatusServiceUnavailable},
		{name: "Conflict", err: NewBusiness("dup", CodeConflict), want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			require.True(t, errors.As(tt.err, &gerr))
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestNewInvalidInputFields(t *testing.T) {
	t.Run("Pairs", func(t *testing.T) {
		var gerr *Error
		require.True(t, errors.As(NewInvalidInput(nil, "channel", "does not match identifier"), &gerr))
		assert.Equal(t, CodeInvalidInput, gerr.Code())
		assert.Equal(t, map[string]string{"channel": "does not match identifier"}, gerr.Fields())
	})

	t.Run("OddPairsBecomeFormatError", func(t *testing.T) {
		var gerr *Error
		require.True(t, errors.As(NewInvalidInput(nil, "channel"), &gerr))
		assert.Equal(t, CodeInvalidFormat, gerr.Code())
	})
}

func TestNewBusinessWrap(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := NewBusinessWrap(cause, "delivery failed", CodeUnavailable)

	assert.ErrorIs(t, err, cause)

	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "delivery failed", gerr.Msg())
	assert.Equal(t, TypeBusiness, gerr.Type())
}
