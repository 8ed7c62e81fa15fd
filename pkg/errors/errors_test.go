package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCause(t *testing.T) {
	apiErr := New("connection refused")
	createErr := WithContext("create pod", apiErr)
	sessionErr := WithContext("start session", createErr)

	assert.Equal(t, apiErr, RootCause(apiErr))
	assert.Equal(t, apiErr, RootCause(createErr))
	assert.Equal(t, apiErr, RootCause(sessionErr))
}

func TestCause(t *testing.T) {
	apiErr := New("connection refused")
	createErr := WithContext("create pod", apiErr)
	sessionErr := WithContext("start session", createErr)

	tests := []struct {
		arg      error
		expCause error
		expOK    bool
	}{
		{
			arg:      apiErr,
			expCause: nil,
			expOK:    false,
		},
		{
			arg:      createErr,
			expCause: apiErr,
			expOK:    true,
		},
		{
			arg:      sessionErr,
			expCause: createErr,
			expOK:    true,
		},
	}

	for _, test := range tests {
		actualCause, actualOK := Cause(test.arg)
		assert.Equal(t, test.expCause, actualCause)
		assert.Equal(t, test.expOK, actualOK)
	}
}

func TestGetPrintableMessage(t *testing.T) {
	// Friendly messages survive wrapping so that the operator sees the
	// actionable message rather than the call stack context.
	friendlyErr := NewFriendlyError("PVC %s not found in namespace %s", "data-1", "default")
	wrappedFriendlyErr := WithContext("validate arguments", friendlyErr)

	assert.Equal(t, "PVC data-1 not found in namespace default",
		GetPrintableMessage(friendlyErr))
	assert.Equal(t, "PVC data-1 not found in namespace default",
		GetPrintableMessage(wrappedFriendlyErr))

	apiErr := New("connection refused")
	wrappedAPIErr := WithContext("list volumes", apiErr)
	assert.Equal(t, "connection refused", GetPrintableMessage(apiErr))
	assert.Equal(t, "list volumes: connection refused", GetPrintableMessage(wrappedAPIErr))
}

func TestNewFriendlyErrorFmt(t *testing.T) {
	err := NewFriendlyError("`%s` not found in PATH. Install it and try again.", "sshfs")
	assert.EqualError(t, err, "`sshfs` not found in PATH. Install it and try again.")
}
