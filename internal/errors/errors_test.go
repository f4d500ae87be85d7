package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrSSH,
		ErrTelnet,
		ErrTimeout,
		ErrExec,
		ErrParse,
		ErrNoData,
		ErrPublish,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "No router host configured",
			suggestion: "Set 'host' in config.yaml or pass --host",
		},
		{
			name:       "telnet error",
			code:       ErrTelnet,
			message:    "Telnet login to 192.168.1.1:110 failed",
			suggestion: "Check that telnet is enabled on the router",
		},
		{
			name:       "no data",
			code:       ErrNoData,
			message:    "Router answered none of the device queries",
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check config.yaml syntax"),
			expectedParts: []string{"Invalid configuration", "Check config.yaml syntax"},
		},
		{
			name:          "error with failure symbol",
			err:           New(ErrSSH, "Connection failed", "Try again"),
			expectedParts: []string{"✗", "Connection failed"},
		},
		{
			name:          "error with cause",
			err:           WrapWithCode(fmt.Errorf("i/o timeout"), ErrTimeout, "Command timed out", ""),
			expectedParts: []string{"Command timed out", "i/o timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()

			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected output")
	wrapped := Wrap(cause, "nvram show failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrExec, wrapped.Code, "Wrap should default to ErrExec code")
	assert.Equal(t, "nvram show failed", wrapped.Message)
	assert.Equal(t, cause, wrapped.Cause)
}

func TestErrorsIsAndAs(t *testing.T) {
	cause := errors.New("broken pipe")
	wrapped := WrapWithCode(cause, ErrTelnet, "Write failed", "")
	outer := fmt.Errorf("arp: %w", wrapped)

	assert.True(t, errors.Is(outer, cause))

	var asusErr *Error
	require.True(t, errors.As(outer, &asusErr))
	assert.Equal(t, ErrTelnet, asusErr.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrSSH))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
}

func TestIsConnectionError(t *testing.T) {
	assert.True(t, IsConnectionError(New(ErrSSH, "x", "")))
	assert.True(t, IsConnectionError(New(ErrTelnet, "x", "")))
	assert.True(t, IsConnectionError(fmt.Errorf("wrapped: %w", New(ErrTimeout, "x", ""))))
	assert.False(t, IsConnectionError(New(ErrParse, "x", "")))
	assert.False(t, IsConnectionError(nil))
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("dial tcp 192.168.1.1:22: connect: connection refused"),
		ErrSSH,
		"Cannot connect to 192.168.1.1:22",
		"Enable SSH under Administration > System on the router",
	)

	lines := strings.Split(err.Error(), "\n")

	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"))
	assert.Contains(t, lines[0], "Cannot connect to 192.168.1.1:22")
}
