package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErr "github.com/xxxsen/mblog/internal/pkg/errors"
	"github.com/xxxsen/mblog/internal/pkg/response"
	"github.com/xxxsen/mblog/internal/service"
)

type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type postRequest struct {
	Text *string `json:"text" binding:"required"`
}

func (h *PostHandler) Create(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.posts.Create(c.Request.Context(), *req.Text, getUserID(c))
	if err != nil {
		if errors.Is(err, appErr.ErrPayloadTooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge,
				"Post content exceeds the maximum size of "+formatSizeLimit(h.posts.MaxBytes()))
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, post)
}

func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, posts)
}

func (h *PostHandler) Delete(c *gin.Context) {
	rawID := c.Param("id")
	postID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || postID <= 0 {
		postNotFound(c, rawID)
		return
	}
	deleted, err := h.posts.Delete(c.Request.Context(), postID, getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if !deleted {
		postNotFound(c, rawID)
		return
	}
	response.NoContent(c, http.StatusNoContent)
}

func postNotFound(c *gin.Context, rawID string) {
	response.Error(c, http.StatusNotFound, fmt.Sprintf("Post with ID %s not found", rawID))
}
