package apperror

import "net/http"

// AppError is a custom error type that includes an HTTP status code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(err error) *AppError {
	return Wrap(err, http.StatusBadRequest, err.Error())
}

func NotFound(err error) *AppError {
	return Wrap(err, http.StatusNotFound, err.Error())
}

func Forbidden(err error) *AppError {
	return Wrap(err, http.StatusForbidden, err.Error())
}
