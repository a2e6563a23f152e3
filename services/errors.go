package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeUnauthorized  ErrorType = "unauthorized"
	ErrorTypeForbidden     ErrorType = "forbidden"
	ErrorTypeRateLimit     ErrorType = "rate_limit"
	ErrorTypeConflict      ErrorType = "conflict"
	ErrorTypeInternal      ErrorType = "internal"
	ErrorTypeExternal      ErrorType = "external"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeIndexing      ErrorType = "indexing"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError of the same type.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error. Do not call it on the shared Err* values.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

var (
	// Not Found Errors
	ErrBrandNotFound   = NewDomainError(ErrorTypeNotFound, "brand not found or not owned by organization", nil)
	ErrBalanceNotFound = NewDomainError(ErrorTypeNotFound, "token balance not found", nil)

	// Validation Errors
	ErrInvalidInput       = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrEmptyPrompt        = NewDomainError(ErrorTypeValidation, "prompt cannot be empty", nil)
	ErrPromptTooLong      = NewDomainError(ErrorTypeValidation, "prompt is too long", nil)
	ErrInvalidContentType = NewDomainError(ErrorTypeValidation, "invalid content type", nil)
	ErrInvalidProvider    = NewDomainError(ErrorTypeValidation, "invalid provider specified", nil)
	ErrSecretInPrompt     = NewDomainError(ErrorTypeValidation, "prompt contains a credential", nil)

	// Rate Limit Errors
	ErrRateLimitExceeded = NewDomainError(ErrorTypeRateLimit, "generation rate limit exceeded", nil)

	// External Provider Errors
	ErrProviderUnavailable = NewDomainError(ErrorTypeExternal, "generation provider unavailable", nil)
	ErrCircuitOpen         = NewDomainError(ErrorTypeExternal, "provider circuit open", nil)
)

// NewConfigurationError reports a missing credential or setting, named by its
// environment variable.
func NewConfigurationError(setting string) *DomainError {
	return NewDomainError(ErrorTypeConfiguration, fmt.Sprintf("missing configuration: %s", setting), nil).
		WithDetail("setting", setting)
}

// NewIndexingError wraps a failure during RAG indexing. stage is "embedding" or "storage".
func NewIndexingError(stage string, chunk int, err error) *DomainError {
	return NewDomainError(ErrorTypeIndexing, fmt.Sprintf("indexing failed during %s", stage), err).
		WithDetail("stage", stage).
		WithDetail("chunk", chunk)
}

// GenerationError is returned by generation providers on any non-success backend
// response or transport failure. Status is 0 when no response was received.
type GenerationError struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %d %s", e.Provider, e.Status, e.Body)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError creates a GenerationError for a provider response.
func NewGenerationError(provider string, status int, body string, err error) *GenerationError {
	return &GenerationError{Provider: provider, Status: status, Body: body, Err: err}
}

// AsGenerationError extracts a GenerationError from an error chain.
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

func hasType(err error, t ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == t
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return hasType(err, ErrorTypeUnauthorized)
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return hasType(err, ErrorTypeForbidden)
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	return hasType(err, ErrorTypeRateLimit)
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return hasType(err, ErrorTypeConflict)
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return hasType(err, ErrorTypeInternal)
}

// IsConfigurationError checks if an error reports missing configuration
func IsConfigurationError(err error) bool {
	return hasType(err, ErrorTypeConfiguration)
}

// IsIndexingError checks if an error is a RAG indexing error
func IsIndexingError(err error) bool {
	return hasType(err, ErrorTypeIndexing)
}

// IsExternalError checks if an error came from a generation backend.
// A GenerationError anywhere in the chain counts.
func IsExternalError(err error) bool {
	if _, ok := AsGenerationError(err); ok {
		return true
	}
	return hasType(err, ErrorTypeExternal)
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapExternal wraps an error as an external provider error
func WrapExternal(message string, err error) error {
	return NewDomainError(ErrorTypeExternal, message, err)
}
