package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mblog/internal/middleware"
)

type RouterDeps struct {
	Auth   *AuthHandler
	Posts  *PostHandler
	Health *HealthHandler
	Bearer middleware.BearerResolver
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/", deps.Health.Root)
	api.GET("/healthz", deps.Health.Healthz)

	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)

	postGroup := api.Group("/posts")
	postGroup.Use(middleware.JWTAuth(deps.Bearer))
	postGroup.POST("/", deps.Posts.Create)
	postGroup.GET("/", deps.Posts.List)
	postGroup.DELETE("/:id", deps.Posts.Delete)
}
