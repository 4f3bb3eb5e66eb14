package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT and tokens
	ErrInvalidSigningMethod = errors.New("invalid token signing method")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTokenIsNotRefresh    = errors.New("token is not a refresh token")
	ErrTokenIsNotAccess     = errors.New("token is not an access token")

	// Authentication / authorization
	ErrEmptyAuthHeader        = errors.New("authorization header is missing")
	ErrInvalidAuthHeader      = errors.New("invalid authorization header format")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountPendingApproval = errors.New("your account is pending approval from admin")
	ErrAccountLocked          = errors.New("account temporarily locked, too many failed attempts")
	ErrUserNoLongerExists     = errors.New("the user belonging to this token no longer exists")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("you do not have permission to perform this action")

	// Context
	ErrUserIDNotFoundInContext = errors.New("user id not found in request context")

	// Domain
	ErrNotFound          = errors.New("record not found")
	ErrEmailExists       = errors.New("email already exists")
	ErrSerialExists      = errors.New("a resource with this serial number already exists in the department")
	ErrInvalidTransition = errors.New("invalid transfer status transition")
	ErrBadRequest        = errors.New("bad request")
)

// sentinelCodes maps sentinel errors to HTTP status codes for the
// response helper.
var sentinelCodes = map[error]int{
	ErrInvalidSigningMethod:    http.StatusUnauthorized,
	ErrInvalidToken:            http.StatusUnauthorized,
	ErrTokenExpired:            http.StatusUnauthorized,
	ErrTokenIsNotRefresh:       http.StatusUnauthorized,
	ErrTokenIsNotAccess:        http.StatusUnauthorized,
	ErrEmptyAuthHeader:         http.StatusUnauthorized,
	ErrInvalidAuthHeader:       http.StatusUnauthorized,
	ErrInvalidCredentials:      http.StatusUnauthorized,
	ErrAccountPendingApproval:  http.StatusUnauthorized,
	ErrAccountLocked:           http.StatusUnauthorized,
	ErrUserNoLongerExists:      http.StatusUnauthorized,
	ErrUnauthorized:            http.StatusUnauthorized,
	ErrUserIDNotFoundInContext: http.StatusUnauthorized,
	ErrForbidden:               http.StatusForbidden,
	ErrNotFound:                http.StatusNotFound,
	ErrEmailExists:             http.StatusBadRequest,
	ErrSerialExists:            http.StatusConflict,
	ErrInvalidTransition:       http.StatusBadRequest,
	ErrBadRequest:              http.StatusBadRequest,
}

// CodeFor returns the HTTP status for a sentinel error, or 0 when the
// error is not one of ours.
func CodeFor(err error) int {
	for sentinel, code := range sentinelCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return 0
}

// HttpError carries an HTTP status together with a client-facing message.
// Err keeps the underlying cause for logging; Details holds per-field
// validation messages.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details map[string]string
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func NewHttpError(code int, message string, err error, details map[string]string) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

func NewBadRequestError(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message, nil, nil)
}

func NewValidationError(message string, details map[string]string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message, nil, details)
}

func NewUnauthorizedError(message string) *HttpError {
	return NewHttpError(http.StatusUnauthorized, message, nil, nil)
}

func NewForbiddenError(message string) *HttpError {
	return NewHttpError(http.StatusForbidden, message, nil, nil)
}

func NewNotFoundError(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, message, nil, nil)
}

func NewConflictError(message string) *HttpError {
	return NewHttpError(http.StatusConflict, message, nil, nil)
}

func NewInternalError(message string, err error) *HttpError {
	return NewHttpError(http.StatusInternalServerError, message, err, nil)
}
