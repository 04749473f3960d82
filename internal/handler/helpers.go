package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mblog/internal/middleware"
	appErr "github.com/xxxsen/mblog/internal/pkg/errors"
	"github.com/xxxsen/mblog/internal/pkg/response"
)

const detailBodyTooLarge = "Request body too large"

func getUserID(c *gin.Context) int64 {
	return c.GetInt64(middleware.ContextUserIDKey)
}

// bindJSON decodes the body into req and writes the error response itself
// when decoding or validation fails.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(c, http.StatusRequestEntityTooLarge, detailBodyTooLarge)
		return false
	}
	response.Error(c, http.StatusUnprocessableEntity, validationDetail(err))
	return false
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+": field required")
		case "email":
			parts = append(parts, field+": value is not a valid email address")
		case "min":
			parts = append(parts, fmt.Sprintf("%s: should have at least %s characters", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s: failed on %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Unauthenticated(c)
	case errors.Is(err, appErr.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, "Not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusUnprocessableEntity, "Invalid request")
	case errors.Is(err, appErr.ErrPayloadTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, detailBodyTooLarge)
	default:
		requestID, _ := c.Get(middleware.ContextRequestIDKey)
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.Any("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int64("user_id", getUserID(c)),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}
