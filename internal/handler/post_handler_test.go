package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mblog/internal/pkg/jwt"
)

type postBody struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	UserID int64  `json:"user_id"`
}

func decodePosts(t *testing.T, body []byte) []postBody {
	t.Helper()
	var posts []postBody
	require.NoError(t, json.Unmarshal(body, &posts))
	return posts
}

func TestPostLifecycle(t *testing.T) {
	srv := setupRouter(t, 8<<20)
	token := srv.registerAndLogin(t, "a@x.io")

	resp := srv.do(t, http.MethodGet, "/posts/", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `[]`, resp.Body.String())

	resp = srv.do(t, http.MethodPost, "/posts/", token, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusCreated, resp.Code)
	var created postBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	require.Equal(t, "hello", created.Text)
	require.Positive(t, created.ID)

	resp = srv.do(t, http.MethodGet, "/posts/", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, []postBody{created}, decodePosts(t, resp.Body.Bytes()))

	resp = srv.do(t, http.MethodDelete, "/posts/"+strconv.FormatInt(created.ID, 10), token, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)
	require.Empty(t, resp.Body.String())

	resp = srv.do(t, http.MethodDelete, "/posts/"+strconv.FormatInt(created.ID, 10), token, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, fmt.Sprintf("Post with ID %d not found", created.ID), decodeDetail(t, resp))

	resp = srv.do(t, http.MethodGet, "/posts/", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Empty(t, decodePosts(t, resp.Body.Bytes()))
}

func TestPostsRequireAuthentication(t *testing.T) {
	srv := setupRouter(t, 8<<20)
	srv.registerAndLogin(t, "a@x.io")

	expired, err := jwt.GenerateToken("1", testSecret, -time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{name: "list without token", method: http.MethodGet, path: "/posts/"},
		{name: "create without token", method: http.MethodPost, path: "/posts/"},
		{name: "delete without token", method: http.MethodDelete, path: "/posts/1"},
		{name: "garbage token", method: http.MethodGet, path: "/posts/", token: "garbage"},
		{name: "expired token", method: http.MethodGet, path: "/posts/", token: expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.do(t, tt.method, tt.path, tt.token, map[string]string{"text": "x"})
			require.Equal(t, http.StatusUnauthorized, resp.Code)
			require.Equal(t, "Not authenticated", decodeDetail(t, resp))
			require.Equal(t, "Bearer", resp.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestCrossUserDeleteIsNotFound(t *testing.T) {
	srv := setupRouter(t, 8<<20)
	alice := srv.registerAndLogin(t, "alice@x.io")
	bob := srv.registerAndLogin(t, "bob@x.io")

	resp := srv.do(t, http.MethodPost, "/posts/", alice, map[string]string{"text": "mine"})
	require.Equal(t, http.StatusCreated, resp.Code)
	var created postBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	resp = srv.do(t, http.MethodDelete, "/posts/"+strconv.FormatInt(created.ID, 10), bob, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)

	resp = srv.do(t, http.MethodGet, "/posts/", bob, nil)
	require.Empty(t, decodePosts(t, resp.Body.Bytes()))

	resp = srv.do(t, http.MethodGet, "/posts/", alice, nil)
	require.Len(t, decodePosts(t, resp.Body.Bytes()), 1)
}

func TestDeleteNonNumericID(t *testing.T) {
	srv := setupRouter(t, 8<<20)
	token := srv.registerAndLogin(t, "a@x.io")

	resp := srv.do(t, http.MethodDelete, "/posts/abc", token, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "Post with ID abc not found", decodeDetail(t, resp))
}

func TestCreatePostSizeLimits(t *testing.T) {
	srv := setupRouter(t, 8<<20)
	token := srv.registerAndLogin(t, "a@x.io")

	resp := srv.do(t, http.MethodPost, "/posts/", token, map[string]string{"text": strings.Repeat("a", 1024*1024)})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = srv.do(t, http.MethodPost, "/posts/", token, map[string]string{"text": strings.Repeat("a", 1024*1024+1)})
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	require.Equal(t, "Post content exceeds the maximum size of 1 MB", decodeDetail(t, resp))

	resp = srv.do(t, http.MethodGet, "/posts/", token, nil)
	require.Len(t, decodePosts(t, resp.Body.Bytes()), 1)
}

func TestCreatePostBodyLimit(t *testing.T) {
	srv := setupRouter(t, 64)
	token := srv.registerAndLogin(t, "a@x.io")

	resp := srv.do(t, http.MethodPost, "/posts/", token, map[string]string{"text": strings.Repeat("a", 128)})
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestCreatePostValidation(t *testing.T) {
	srv := setupRouter(t, 8<<20)
	token := srv.registerAndLogin(t, "a@x.io")

	resp := srv.do(t, http.MethodPost, "/posts/", token, map[string]string{})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = srv.do(t, http.MethodPost, "/posts/", token, map[string]string{"text": ""})
	require.Equal(t, http.StatusCreated, resp.Code)
}
