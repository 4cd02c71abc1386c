package errors

import "net/http"

// HTTPError is an error that maps directly to an HTTP response.
type HTTPError struct {
	Code       int
	Message    string
	StatusCode int
}

// NewHTTPError returns an HTTPError. A zero statusCode means 400.
func NewHTTPError(code int, message string, statusCode int) *HTTPError {
	if statusCode == 0 {
		statusCode = http.StatusBadRequest
	}
	return &HTTPError{Code: code, Message: message, StatusCode: statusCode}
}

func NewUnauthorizedHTTPError() *HTTPError {
	return &HTTPError{Code: http.StatusUnauthorized, Message: "Unauthorized", StatusCode: http.StatusUnauthorized}
}

func NewServiceUnavailableHTTPError(message string) *HTTPError {
	return &HTTPError{Code: http.StatusServiceUnavailable, Message: message, StatusCode: http.StatusServiceUnavailable}
}

func (e *HTTPError) Error() string {
	return e.Message
}
