package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

var (
	ErrConfigLoad       = "CONFIG_LOAD_ERROR"
	ErrDatabaseConnect  = "DATABASE_CONNECT_ERROR"
	ErrWeekNotFoundCode = "WEEK_NOT_FOUND"
	ErrComputation      = "COMPUTATION_ERROR"
	ErrPersistence      = "PERSISTENCE_ERROR"
	ErrDataLoad         = "DATA_LOAD_ERROR"
	ErrTimeout          = "TIMEOUT"
)

var (
	// ErrWeekNotFound is wrapped by every lookup of a week id that does not exist.
	ErrWeekNotFound = stderrors.New("week not found")
	// ErrInvalidInput marks input that is refused before anything is stored.
	ErrInvalidInput = stderrors.New("invalid input")
)

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

// CodeOf returns the code of the outermost AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
