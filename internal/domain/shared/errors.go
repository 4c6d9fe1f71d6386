package shared

// DomainError represents a domain-level error with a stable machine code
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
	ErrNotFound      = NewDomainError("ERR_NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ERR_ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("ERR_BAD_REQUEST", "Invalid input provided")
	ErrInvalidState  = NewDomainError("ERR_INVALID_STATE", "Operation not allowed in current state")
	ErrRateLimited   = NewDomainError("ERR_RATE_LIMITED", "Operation rate limit exceeded")
)
