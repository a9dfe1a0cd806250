package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON structure returned to clients following RFC 7807.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the outermost AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether any AppError in err's chain carries code.
// It looks past wrapping AppErrors such as CONSTRUCTION_FAILED.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		appErr, ok := AsAppError(err)
		if !ok {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsUnregisteredContract reports whether err stems from a missing registration.
func IsUnregisteredContract(err error) bool { return HasCode(err, ErrCodeUnregisteredContract) }

// IsCyclicDependency reports whether err stems from a dependency cycle.
func IsCyclicDependency(err error) bool { return HasCode(err, ErrCodeCyclicDependency) }

// IsNoResolvableConstructor reports whether err stems from an unconstructible implementation.
func IsNoResolvableConstructor(err error) bool {
	return HasCode(err, ErrCodeNoResolvableConstructor)
}
