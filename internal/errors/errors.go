package errors

import "fmt"

// Kind classifies a domain failure. The HTTP mapping for each kind lives in
// pkg/utils; domain code raises kinds and never talks status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
)

// AppError represents a custom application error
type AppError struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error types
var (
	ErrInvalidCredentials = &AppError{Kind: KindUnauthorized, Code: "INVALID_CREDENTIALS", Message: "Invalid credentials"}
	ErrUnauthenticated    = &AppError{Kind: KindUnauthorized, Code: "UNAUTHENTICATED", Message: "Authentication required"}
	ErrForbidden          = &AppError{Kind: KindForbidden, Code: "FORBIDDEN", Message: "Access denied"}
)

// NotFound builds a missing-entity error.
func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: "NOT_FOUND", Message: message}
}

// Validation builds a malformed-input error.
func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Code: "VALIDATION_FAILED", Message: message}
}

// Conflict builds a uniqueness-violation error (duplicate email and the like).
func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Code: "CONFLICT", Message: message}
}

// Internal wraps an unexpected fault.
func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: message, Err: err}
}
