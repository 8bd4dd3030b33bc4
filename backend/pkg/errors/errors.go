package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeNotFound represents lookups that matched nothing
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeDrawing represents drawing row-store errors
	ErrorTypeDrawing ErrorType = "drawing"
	// ErrorTypeConflict represents optimistic concurrency failures
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeValidation represents rejected input
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
	// ErrorTypeUnavailable represents a backend that is refusing work
	ErrorTypeUnavailable ErrorType = "unavailable"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Base returns the error itself so embedding types satisfy typed lookups.
func (e *BaseError) Base() *BaseError {
	return e
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when the Neo4j driver cannot be created or reached
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Operation string
}

func NewGraphQueryFailed(operation string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to execute Neo4j query (%s)", operation), err),
		Operation: operation,
	}
}

// ErrGraphUnavailable is returned while the gateway circuit breaker is open
type ErrGraphUnavailable struct {
	*BaseError
}

func NewGraphUnavailable(err error) *ErrGraphUnavailable {
	return &ErrGraphUnavailable{
		BaseError: NewBaseError(ErrorTypeUnavailable, "graph database temporarily unavailable", err),
	}
}

// ErrApplicationNotFound is returned when no Application carries the id
type ErrApplicationNotFound struct {
	*BaseError
	ApplicationID string
}

func NewApplicationNotFound(applicationID string) *ErrApplicationNotFound {
	return &ErrApplicationNotFound{
		BaseError:     NewBaseError(ErrorTypeNotFound, fmt.Sprintf("application not found: %s", applicationID), nil),
		ApplicationID: applicationID,
	}
}

// ErrFlowNotFound is returned when no flow relationship carries the id
type ErrFlowNotFound struct {
	*BaseError
	FlowID string
}

func NewFlowNotFound(flowID string) *ErrFlowNotFound {
	return &ErrFlowNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("flow not found: %s", flowID), nil),
		FlowID:    flowID,
	}
}

// ErrFlowEndpointsNotFound is returned when a flow's initiator or target does not exist
type ErrFlowEndpointsNotFound struct {
	*BaseError
	Initiator string
	Target    string
}

func NewFlowEndpointsNotFound(initiator, target string) *ErrFlowEndpointsNotFound {
	return &ErrFlowEndpointsNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound,
			fmt.Sprintf("flow endpoints not found: %s -> %s", initiator, target), nil),
		Initiator: initiator,
		Target:    target,
	}
}

// ErrElementNotFound is returned when a graph view element id is not rendered
type ErrElementNotFound struct {
	*BaseError
	ElementID string
}

func NewElementNotFound(elementID string) *ErrElementNotFound {
	return &ErrElementNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("element not found: %s", elementID), nil),
		ElementID: elementID,
	}
}

// ErrSessionNotFound is returned when a graph view session is unknown or expired
type ErrSessionNotFound struct {
	*BaseError
	SessionID string
}

func NewSessionNotFound(sessionID string) *ErrSessionNotFound {
	return &ErrSessionNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("graph session not found: %s", sessionID), nil),
		SessionID: sessionID,
	}
}

// ErrFormNotFound is returned when no form descriptor carries the name
type ErrFormNotFound struct {
	*BaseError
	Form string
}

func NewFormNotFound(form string) *ErrFormNotFound {
	return &ErrFormNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("unknown form: %s", form), nil),
		Form:      form,
	}
}

// Drawing Errors

// ErrDrawingNotFound is returned when the drawings table has no such row
type ErrDrawingNotFound struct {
	*BaseError
	DrawingID string
}

func NewDrawingNotFound(drawingID string) *ErrDrawingNotFound {
	return &ErrDrawingNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("drawing not found: %s", drawingID), nil),
		DrawingID: drawingID,
	}
}

// ErrDrawingVersionConflict is returned when another editor saved first
type ErrDrawingVersionConflict struct {
	*BaseError
	DrawingID       string
	ExpectedVersion int
}

func NewDrawingVersionConflict(drawingID string, expected int) *ErrDrawingVersionConflict {
	return &ErrDrawingVersionConflict{
		BaseError: NewBaseError(ErrorTypeConflict,
			fmt.Sprintf("drawing %s is no longer at version %d", drawingID, expected), nil),
		DrawingID:       drawingID,
		ExpectedVersion: expected,
	}
}

// ErrDrawingStoreFailed wraps row-store failures
type ErrDrawingStoreFailed struct {
	*BaseError
	Operation string
}

func NewDrawingStoreFailed(operation string, err error) *ErrDrawingStoreFailed {
	return &ErrDrawingStoreFailed{
		BaseError: NewBaseError(ErrorTypeDrawing, fmt.Sprintf("drawing store %s failed", operation), err),
		Operation: operation,
	}
}

// Validation Errors

// ErrValidationFailed is returned when submitted values are rejected
type ErrValidationFailed struct {
	*BaseError
	Fields map[string]string
}

func NewValidationFailed(message string, fields map[string]string) *ErrValidationFailed {
	return &ErrValidationFailed{
		BaseError: NewBaseError(ErrorTypeValidation, message, nil),
		Fields:    fields,
	}
}

// ErrInvalidTransition is returned when a graph view action is not allowed in the current state
type ErrInvalidTransition struct {
	*BaseError
	From string
	To   string
}

func NewInvalidTransition(from, to string) *ErrInvalidTransition {
	return &ErrInvalidTransition{
		BaseError: NewBaseError(ErrorTypeConflict, fmt.Sprintf("cannot move from %s to %s", from, to), nil),
		From:      from,
		To:        to,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// ErrContextTimeout is returned when context times out
type ErrContextTimeout struct {
	*BaseError
	Operation string
}

func NewContextTimeout(operation string, err error) *ErrContextTimeout {
	return &ErrContextTimeout{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context timeout: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type baser interface {
	Base() *BaseError
}

// TypeOf returns the ErrorType of the first BaseError in the chain, or "".
func TypeOf(err error) ErrorType {
	for err != nil {
		if b, ok := err.(baser); ok {
			return b.Base().Type
		}
		err = stderrors.Unwrap(err)
	}
	return ""
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// Message returns the raw message of the innermost wrapped error, which is what
// gets shown to users alongside the failure.
func Message(err error) string {
	if err == nil {
		return ""
	}
	inner := err
	for {
		next := stderrors.Unwrap(inner)
		if next == nil {
			if b, ok := inner.(baser); ok {
				return b.Base().Message
			}
			return inner.Error()
		}
		inner = next
	}
}
