package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified error type returned by the container and its collaborators.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Resolution errors ---

// UnregisteredContract creates an error for a key with no registration.
func UnregisteredContract(contract, name string) *AppError {
	details := map[string]any{"contract": contract}
	msg := fmt.Sprintf("No registration found for %s.", contract)
	if name != "" {
		details["name"] = name
		msg = fmt.Sprintf("No registration found for %s named %q.", contract, name)
	}
	return &AppError{
		Code: ErrCodeUnregisteredContract, Message: msg,
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// CyclicDependency creates an error for a key re-entered during its own construction.
// The chain lists the keys under construction, ending with the re-entered key.
func CyclicDependency(chain []string) *AppError {
	return &AppError{
		Code: ErrCodeCyclicDependency, Message: fmt.Sprintf("Cyclic dependency detected: %s", strings.Join(chain, " -> ")),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"chain": chain},
	}
}

// NoResolvableConstructor creates an error for an implementation with no eligible constructor.
func NoResolvableConstructor(implementation string, reasons []string) *AppError {
	msg := fmt.Sprintf("No constructor of %s has only resolvable parameters.", implementation)
	if len(reasons) > 0 {
		msg = fmt.Sprintf("%s Rejected: %s", msg, strings.Join(reasons, "; "))
	}
	return &AppError{
		Code: ErrCodeNoResolvableConstructor, Message: msg,
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"implementation": implementation, "rejected": reasons},
	}
}

// ConstructionFailed wraps an error returned by a constructor, factory or injection method.
func ConstructionFailed(key string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConstructionFailed, Message: fmt.Sprintf("Construction of %s failed.", key),
		HTTPStatus: http.StatusInternalServerError, Retryable: true,
		Details: map[string]any{"key": key}, Cause: cause,
	}
}

// NotBooted creates an error for resolution attempted before boot completed.
func NotBooted() *AppError {
	return &AppError{
		Code: ErrCodeNotBooted, Message: "The container has not finished booting.",
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
	}
}

// --- Registration errors ---

// DuplicateRegistration creates an error for a key registered twice under the reject policy.
func DuplicateRegistration(key, registry string) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateRegistration, Message: fmt.Sprintf("%s is already registered.", key),
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"key": key, "registry": registry},
	}
}

// InvalidRegistration creates an error for a malformed constructor or injection point.
func InvalidRegistration(subject, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidRegistration, Message: fmt.Sprintf("Invalid registration for %s: %s", subject, reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"subject": subject},
	}
}

// RegistrySkipped creates an error describing a registry left out of discovery.
func RegistrySkipped(registry string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeRegistrySkipped, Message: fmt.Sprintf("Registry %s could not be constructed and was skipped.", registry),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"registry": registry}, Cause: cause,
	}
}

// Sealed creates an error for a registration attempted after boot.
func Sealed(key string) *AppError {
	return &AppError{
		Code: ErrCodeSealed, Message: fmt.Sprintf("Cannot register %s: the registration table is sealed.", key),
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"key": key},
	}
}

// --- Common Error Constructors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
