package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resolution errors
const (
	// ErrCodeUnregisteredContract indicates no registration exists for the requested key.
	ErrCodeUnregisteredContract ErrorCode = "UNREGISTERED_CONTRACT"
	// ErrCodeCyclicDependency indicates a key was re-entered during its own construction.
	ErrCodeCyclicDependency ErrorCode = "CYCLIC_DEPENDENCY"
	// ErrCodeNoResolvableConstructor indicates no constructor has only resolvable parameters.
	ErrCodeNoResolvableConstructor ErrorCode = "NO_RESOLVABLE_CONSTRUCTOR"
	// ErrCodeConstructionFailed indicates a constructor, factory or injection method returned an error.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
	// ErrCodeNotBooted indicates resolution was attempted before the boot phase completed.
	ErrCodeNotBooted ErrorCode = "NOT_BOOTED"
)

// Registration errors
const (
	// ErrCodeDuplicateRegistration indicates a key was registered twice under the reject policy.
	ErrCodeDuplicateRegistration ErrorCode = "DUPLICATE_REGISTRATION"
	// ErrCodeInvalidRegistration indicates a malformed constructor or injection point.
	ErrCodeInvalidRegistration ErrorCode = "INVALID_REGISTRATION"
	// ErrCodeRegistrySkipped indicates a registry could not be constructed during discovery.
	ErrCodeRegistrySkipped ErrorCode = "REGISTRY_SKIPPED"
	// ErrCodeSealed indicates a registration was attempted after the table was sealed.
	ErrCodeSealed ErrorCode = "TABLE_SEALED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Only construction failures are worth retrying: a failed singleton is never
// cached, so a later resolution runs the constructor again.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeConstructionFailed: true,
	ErrCodeNotBooted:          true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
