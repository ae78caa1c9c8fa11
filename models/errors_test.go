package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	appErr := NewAppError(ErrForbidden, "Only the organization owner can manage members")
	assert.Equal(t, "Only the organization owner can manage members", appErr.Error())
	assert.Equal(t, ErrForbidden, appErr.Kind)
}

func TestInternalErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	appErr := InternalError("Failed to fetch tasks", cause)

	assert.Equal(t, ErrInternal, appErr.Kind)
	assert.Contains(t, appErr.Error(), "connection reset")
	assert.ErrorIs(t, appErr, cause)
}

func TestAsAppErrorPassthrough(t *testing.T) {
	original := NewAppError(ErrDuplicateName, "Organization with this name already exists")

	got := AsAppError(original)
	assert.Same(t, original, got)

	wrapped := fmt.Errorf("while creating: %w", original)
	got = AsAppError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, ErrDuplicateName, got.Kind)
}

func TestAsAppErrorFallsBackToInternal(t *testing.T) {
	got := AsAppError(errors.New("boom"))
	require.NotNil(t, got)
	assert.Equal(t, ErrInternal, got.Kind)
	assert.Equal(t, "Server error", got.Message)
}
