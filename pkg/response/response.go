package response

import (
	"net/http"

	appErrors "github.com/charlesng35/usercache/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorBody is the only error shape exposed to clients.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes data as the bare JSON payload.
func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorBody{Error: appErr.Message})
}

// AbortWithError writes the error response and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// Text writes a plain-text body, used where clients expect non-JSON content.
func Text(c *gin.Context, statusCode int, body string) {
	c.String(statusCode, body)
}
