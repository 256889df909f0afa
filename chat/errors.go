package chat

import "errors"

// Reason codes carried on error events. Errors are always delivered to the
// originating connection only, never broadcast.
const (
	CodeAuthError        = "auth_error"
	CodeValidationError  = "validation_error"
	CodePersistenceError = "persistence_error"
)

// ErrInvalidToken is returned by a TokenVerifier when the presented
// credential is missing, malformed, expired, or otherwise unverifiable.
var ErrInvalidToken = errors.New("invalid or expired token")

// OpError is an operation failure reported back to the connection that
// issued the operation.
type OpError struct {
	Code    string
	Message string
}

func (e *OpError) Error() string {
	return e.Code + ": " + e.Message
}

func validationError(msg string) *OpError {
	return &OpError{Code: CodeValidationError, Message: msg}
}

func persistenceError(msg string) *OpError {
	return &OpError{Code: CodePersistenceError, Message: msg}
}
