package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrAccessDenied     = errors.New("access denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Configuration errors surface as internal failures; the detail goes to
	// the log, never to the applicant.
	ErrConfiguration = errors.New("configuration error")
)

// Admission errors
var (
	ErrAdmissionNotFound  = errors.New("admission not found")
	ErrInvalidTransition  = errors.New("transition not allowed from current status")
	ErrRegisterClosed     = errors.New("admission cycle is not open for applications")
	ErrCapacityReached    = errors.New("admission cycle has reached maximum capacity")
	ErrBelowMinimumAge    = errors.New("applicant is below the minimum age")
	ErrCourseNotInCycle   = errors.New("selected course does not belong to the admission cycle")
	ErrInvoiceExists      = errors.New("application fee invoice already exists")
	ErrNonPositiveFee     = errors.New("application fee must be positive")
	ErrAlreadyEnrolled    = errors.New("admission is already enrolled")
	ErrCourseNotSelected  = errors.New("admission has no course selection")
	ErrTransactionPending = errors.New("payment transaction is not finalized")
)

// Catalog errors
var (
	ErrCycleNotFound      = errors.New("admission cycle not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrProgramNotFound    = errors.New("program not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrBatchNotFound      = errors.New("batch not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrProviderNotFound   = errors.New("payment provider not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a new custom error for a failed business validation
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
