package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf_WalksWrappedErrors(t *testing.T) {
	err := fmt.Errorf("edit failed: %w", NewApplicationNotFound("app-1"))

	assert.Equal(t, ErrorTypeNotFound, TypeOf(err))
	assert.True(t, IsErrorType(err, ErrorTypeNotFound))
	assert.False(t, IsErrorType(err, ErrorTypeGraph))

	var notFound *ErrApplicationNotFound
	assert.True(t, stderrors.As(err, &notFound))
	assert.Equal(t, "app-1", notFound.ApplicationID)
}

func TestTypeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorType(""), TypeOf(stderrors.New("boom")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}

func TestMessage_ReturnsUnderlyingCause(t *testing.T) {
	cause := stderrors.New("Neo.ClientError.Statement.SyntaxError: Invalid input")
	err := NewGraphQueryFailed("console", cause)

	assert.Equal(t, cause.Error(), Message(err))
	assert.Contains(t, err.Error(), "failed to execute Neo4j query")
	assert.Equal(t, "", Message(nil))
}

func TestMessage_TypedErrorWithoutCause(t *testing.T) {
	assert.Equal(t, "application not found: app-1", Message(NewApplicationNotFound("app-1")))
}
