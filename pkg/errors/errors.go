package errors

import (
	stderrors "errors"
	"fmt"
)

// Business error codes
const (
	CodeSuccess         = 200
	CodePartialSuccess  = 206
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeInternalError   = 500
	CodeDatabaseError   = 501
	CodeAuthError       = 502
	CodeValidationError = 503
	CodeUpstreamError   = 504
)

// AppError is the error type carried through services to responses
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches predefined errors by code and message so wrapped copies still compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates an AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates an AppError wrapping err
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the business code carried by err, CodeInternalError for foreign errors.
func CodeOf(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}

// Predefined errors
var (
	ErrBadRequest      = New(CodeBadRequest, "invalid request parameters")
	ErrUnauthorized    = New(CodeUnauthorized, "unauthorized")
	ErrForbidden       = New(CodeForbidden, "forbidden")
	ErrNotFound        = New(CodeNotFound, "resource not found")
	ErrConflict        = New(CodeConflict, "resource conflict")
	ErrInternalError   = New(CodeInternalError, "internal server error")
	ErrDatabaseError   = New(CodeDatabaseError, "database error")
	ErrAuthError       = New(CodeAuthError, "authentication failed")
	ErrValidationError = New(CodeValidationError, "validation failed")

	ErrInvalidParams        = New(CodeBadRequest, "invalid request parameters")
	ErrInvalidCredentials   = New(CodeAuthError, "invalid email or password")
	ErrLDAPConnectionFailed = New(CodeAuthError, "ldap connection failed")
	ErrUserNotFound         = New(CodeNotFound, "user not found")
	ErrUserDisabled         = New(CodeForbidden, "user is disabled")
	ErrInvalidToken         = New(CodeUnauthorized, "invalid token")
	ErrTokenExpired         = New(CodeUnauthorized, "token expired")
	ErrRecordNotFound       = New(CodeNotFound, "record not found")
	ErrRecordExists         = New(CodeConflict, "record already exists")

	ErrProjectAccessDenied = New(CodeForbidden, "no access to this project")
	ErrSuperuserRequired   = New(CodeForbidden, "only superusers can perform this action")
	ErrNoConnection        = New(CodeBadRequest, "project has no database connection")
)
