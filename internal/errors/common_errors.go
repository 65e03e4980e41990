package errors

import (
	"fmt"
)

// ErrorType classifies an AppError. The error handler maps each type onto
// an HTTP status.
type ErrorType string

const (
	// ErrTypeParsing: the workbook opened but its content is unusable, e.g.
	// it is not an xlsx archive or a required header column is missing.
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeStorage: the workbook file or dataset directory could not be
	// opened or listed.
	ErrTypeStorage ErrorType = "STORAGE"
	// ErrTypeValidation: a dashboard selection (area, school, branch, chart)
	// was rejected.
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeNotFound: a named school, branch or workbook does not exist.
	ErrTypeNotFound ErrorType = "NOT_FOUND"
	// ErrTypeConfig: settings or a column layout are inconsistent.
	ErrTypeConfig ErrorType = "CONFIG"
	// ErrTypeUnavailable: no dataset has been loaded yet.
	ErrTypeUnavailable ErrorType = "UNAVAILABLE"
)

// AppError carries a classified failure. Context holds the sheet, column
// or path involved and is copied into problem responses.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext records key on the error and returns it for chaining.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParsingError reports workbook content that cannot be read as
// assessment results.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewMissingColumnError reports a required header column absent from
// sheet. An empty sheet means no sheet carried the column.
func NewMissingColumnError(sheet, column string) *AppError {
	err := NewParsingError(fmt.Sprintf("%q column not found", column), nil).
		WithContext("column", column)
	if sheet != "" {
		err.WithContext("sheet", sheet)
	}
	return err
}

// NewStorageError reports a workbook path that cannot be opened or listed.
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError formats "<resource> not found".
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewUnavailableError reports a request made before any dataset is loaded.
func NewUnavailableError(message string, cause error) *AppError {
	return NewAppError(ErrTypeUnavailable, message, cause)
}
