package response

import "github.com/Jim-devENG/ispora-engine-sub009/pkg/errors"

const (
	MessageSuccess          = "Success"
	DefaultErrorMessage     = "Something went wrong"
	InternalServerErrorCode = 500
)

// Resp is the JSON envelope for every non-streaming response.
type Resp struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
}

// ErrorMapping maps domain errors onto HTTP errors.
type ErrorMapping map[error]*errors.HTTPError
