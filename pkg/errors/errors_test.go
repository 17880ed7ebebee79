package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name: "with status code",
			err: &APIError{
				Service:    "registry",
				StatusCode: 503,
				Message:    "upstream down",
			},
			expected: "API error from registry (status 503): upstream down",
		},
		{
			name: "without status code",
			err: &APIError{
				Service: "indexer",
				Message: "connection refused",
			},
			expected: "API error from indexer: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAPIErrorIs(t *testing.T) {
	rateLimited := NewAPIError("indexer", 429, "slow down")
	assert.True(t, stderrors.Is(rateLimited, ErrRateLimited))
	assert.False(t, stderrors.Is(rateLimited, ErrServiceUnavailable))

	unavailable := NewAPIError("registry", 502, "bad gateway")
	assert.True(t, stderrors.Is(unavailable, ErrServiceUnavailable))
	assert.True(t, IsServiceUnavailable(unavailable))

	clientErr := NewAPIError("registry", 404, "no such app")
	assert.False(t, stderrors.Is(clientErr, ErrServiceUnavailable))
	assert.False(t, stderrors.Is(clientErr, ErrRateLimited))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("asset-id", 0, "must be positive")
	assert.Equal(t, "validation failed for field asset-id: must be positive", err.Error())
	assert.True(t, stderrors.Is(err, ErrInvalidInput))
	assert.True(t, IsValidationError(err))

	bare := &ValidationError{Message: "empty config"}
	assert.Equal(t, "validation failed: empty config", bare.Error())
}

func TestConfigError(t *testing.T) {
	underlying := stderrors.New("file unreadable")
	err := NewConfigError("audit", "cannot load blacklist", underlying)
	assert.Contains(t, err.Error(), "configuration error in audit")
	assert.Equal(t, underlying, stderrors.Unwrap(err))
}

func TestParseError(t *testing.T) {
	cause := stderrors.New("unexpected end of JSON input")
	err := WrapParse("json", "registry response", cause)
	assert.Contains(t, err.Error(), "parse error in json from registry response")
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestWrapHelpersNilPassthrough(t *testing.T) {
	assert.NoError(t, WrapIO("read", "report.csv", nil))
	assert.NoError(t, WrapParse("json", "body", nil))
	assert.NoError(t, WrapAPI("registry", 200, nil))
}

func TestWrapAPIPreservesChain(t *testing.T) {
	cause := fmt.Errorf("dial tcp: %w", ErrTimeout)
	err := WrapAPI("indexer", 0, cause)
	assert.True(t, stderrors.Is(err, ErrTimeout))
	assert.True(t, IsTimeout(err))
}
