package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Detail string `json:"detail"`
}

func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

func NoContent(c *gin.Context, status int) {
	c.Status(status)
	c.Writer.WriteHeaderNow()
}

func Error(c *gin.Context, status int, detail string) {
	c.JSON(status, APIError{Detail: detail})
}

// Unauthenticated is the single response used for every authentication
// failure.
func Unauthenticated(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	Error(c, http.StatusUnauthorized, "Not authenticated")
}
