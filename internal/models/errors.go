package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes shared with the other services of the platform.
const (
	CodeValidate          = "VALIDATE_ERROR"
	CodeInvalidParameters = "INVALID_PARAMETERS"
	CodeAccess            = "ACCESS_ERROR"
	CodeJWTInvalid        = "JWT_INVALID"
	CodeClientJWTInvalid  = "CLIENT_JWT_INVALID"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorSchema is the structured error body returned to callers.
type ErrorSchema struct {
	Error string `json:"error"`
	Extra string `json:"extra,omitempty"`
}

// ErrorResponse wraps one or more error schemas the way FastAPI-style clients expect.
type ErrorResponse struct {
	Detail []ErrorSchema `json:"detail"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	// Field and Value are set for field-level validation failures.
	Field string
	Value any
	Err   error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Schema converts the error into its wire representation.
func (e *AppError) Schema() ErrorSchema {
	return ErrorSchema{Error: e.Code, Extra: e.Message}
}

// Predefined error constructors
func NewValidationError(field string, value any, message string) *AppError {
	return &AppError{
		Code:    CodeValidate,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

func NewInvalidParametersError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInvalidParameters,
		Message: message,
		Err:     err,
	}
}

func NewAccessError(message string) *AppError {
	return &AppError{
		Code:    CodeAccess,
		Message: message,
	}
}

func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewJWTInvalidError(message string) *AppError {
	return &AppError{
		Code:    CodeJWTInvalid,
		Message: message,
	}
}

func NewClientJWTInvalidError(message string) *AppError {
	return &AppError{
		Code:    CodeClientJWTInvalid,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(status).JSON(ErrorResponse{Detail: []ErrorSchema{appErr.Schema()}})
	}

	// Unclassified errors keep their cause out of the response body.
	return c.Status(status).JSON(ErrorResponse{
		Detail: []ErrorSchema{{Error: CodeInternal, Extra: "Internal server error"}},
	})
}
