package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mblog/internal/model"
	appErr "github.com/xxxsen/mblog/internal/pkg/errors"
	"github.com/xxxsen/mblog/internal/pkg/response"
)

const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "user"
)

// BearerResolver maps an Authorization header value to the calling user.
type BearerResolver interface {
	ResolveBearer(ctx context.Context, raw string) (*model.User, error)
}

func JWTAuth(resolver BearerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolver.ResolveBearer(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			if errors.Is(err, appErr.ErrUnauthorized) {
				response.Unauthenticated(c)
				c.Abort()
				return
			}
			logutil.GetLogger(c.Request.Context()).Error("resolve bearer failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			response.Error(c, http.StatusInternalServerError, "Internal server error")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}
