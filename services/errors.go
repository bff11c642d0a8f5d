package services

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind classifies an AppError and decides its HTTP status
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// Error codes returned to clients
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeOrderNotFound       = "ORDER_NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeCustomerNotFound    = "CUSTOMER_NOT_FOUND"
	CodeLensTypeNotFound    = "LENS_TYPE_NOT_FOUND"
	CodeInvalidStatus       = "INVALID_STATUS"
)

// AppError is an expected failure that is safe to show to the client
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details []string
}

func (e *AppError) Error() string {
	if len(e.Details) > 0 {
		return e.Code + ": " + e.Message + " (" + strings.Join(e.Details, "; ") + ")"
	}
	return e.Code + ": " + e.Message
}

// HTTPStatus maps the error kind to a response status
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AsAppError unwraps err into an AppError if it is one
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewValidationError(message string, details ...string) *AppError {
	return &AppError{Kind: KindValidation, Code: CodeValidation, Message: message, Details: details}
}

func NewNotFoundError(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

var (
	ErrInvalidCredentials = &AppError{Kind: KindUnauthenticated, Code: CodeInvalidCredentials, Message: "Invalid email or password"}
	ErrInvalidRefresh     = &AppError{Kind: KindUnauthenticated, Code: CodeInvalidRefreshToken, Message: "Invalid or expired refresh token"}
	ErrEmailExists        = &AppError{Kind: KindConflict, Code: CodeEmailExists, Message: "Email already registered"}
	ErrOrderNotFound      = NewNotFoundError(CodeOrderNotFound, "Order not found")
	ErrAdminRequired      = NewForbiddenError("Admin access required")
)

// isUniqueViolation reports whether err came from a unique constraint.
// TranslateError covers most drivers; the string check catches the rest.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry")
}
