package response

import (
	stderrors "errors"
	"net/http"

	"github.com/Jim-devENG/ispora-engine-sub009/pkg/errors"
	"github.com/gin-gonic/gin"
)

func NewOKResp(data any) Resp {
	return Resp{Message: MessageSuccess, Data: data}
}

// OK sends 200 with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, NewOKResp(data))
}

// Unauthorized aborts with 401.
func Unauthorized(c *gin.Context) {
	HttpError(c, errors.NewUnauthorizedHTTPError())
}

// HttpError aborts with the status carried by err.
func HttpError(c *gin.Context, err *errors.HTTPError) {
	statusCode := err.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(statusCode, Resp{ErrorCode: err.Code, Message: err.Message})
}

// Error sends err as an HTTPError when it is one, or a generic 500 otherwise.
func Error(c *gin.Context, err error) {
	var httpErr *errors.HTTPError
	if stderrors.As(err, &httpErr) {
		HttpError(c, httpErr)
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, Resp{
		ErrorCode: InternalServerErrorCode,
		Message:   DefaultErrorMessage,
	})
}

// ErrorWithMap sends the HTTPError mapped to err, falling back to Error.
func ErrorWithMap(c *gin.Context, err error, eMap ErrorMapping) {
	for target, httpErr := range eMap {
		if stderrors.Is(err, target) {
			HttpError(c, httpErr)
			return
		}
	}
	Error(c, err)
}
