package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists      = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput       = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState       = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidTransition  = NewDomainError("INVALID_TRANSITION", "Order cannot move to the requested state")
	ErrConcurrencyTimeout = NewDomainError("CONCURRENCY_TIMEOUT", "Could not acquire inventory lock in time")
	ErrIntegrityConflict  = NewDomainError("INTEGRITY_CONFLICT", "Write conflicts with an existing record")
)
