// Package errors provides standardized error handling patterns for the gateway.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing).
//
// Classification lets callers make handling decisions without error string
// matching. The HTTP layer maps Invalid errors to 400 responses, Transient
// errors to 503, and Fatal errors to 500.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Component", "Method", "action")  // For retryable errors
//	errors.WrapInvalid(err, "Component", "Method", "action")    // For validation errors
//	errors.WrapFatal(err, "Component", "Method", "action")      // For unrecoverable errors
//
// The generic Wrap() function adds context without setting a class.
//
// # Standard Error Variables
//
// Pre-defined error variables cover common conditions, organized by category:
//
//   - Lifecycle: ErrAlreadyStarted, ErrNotStarted, ErrShuttingDown
//   - Registration: ErrDuplicateEndpoint, ErrEndpointNotFound, ErrInvalidPattern, ErrReservedPath
//   - Dispatch: ErrQueueFull, ErrQueueClosed, ErrNoRequest, ErrBodyTooLarge, ErrHandlerPanic
//   - Configuration: ErrInvalidConfig, ErrMissingConfig
//
// Use these variables instead of creating custom error messages for consistency.
//
// # Integration with errors.As/Is
//
// All error types support standard library error inspection:
//
//	var ce *errors.ClassifiedError
//	if errors.As(err, &ce) {
//	    log.Printf("Component: %s, Class: %s", ce.Component, ce.Class)
//	}
//
//	if errors.Is(err, errors.ErrQueueFull) {
//	    // Handle backpressure specifically
//	}
//
// Classification is preserved through error chains. Context errors
// (context.DeadlineExceeded, context.Canceled) are classified as Transient.
//
// # Thread Safety
//
// All classification and wrapping operations are thread-safe. Error variables
// are immutable and safe for concurrent access.
package errors
