package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/mblog/internal/cache"
	"github.com/xxxsen/mblog/internal/handler"
	"github.com/xxxsen/mblog/internal/middleware"
	"github.com/xxxsen/mblog/internal/repo"
	"github.com/xxxsen/mblog/internal/service"
	"github.com/xxxsen/mblog/internal/testutil"
)

var testSecret = []byte("test-secret")

type testServer struct {
	router http.Handler
}

func setupRouter(t *testing.T, maxBodyBytes int64) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, dialect, cleanup := testutil.OpenTestDB(t)
	t.Cleanup(cleanup)

	postCache := cache.NewLRU(100, time.Hour)
	userService := service.NewUserService(repo.NewUserRepo(db, dialect))
	authService := service.NewAuthService(userService, testSecret, time.Hour)
	postService := service.NewPostService(repo.NewPostRepo(db, dialect), postCache, time.Minute, service.DefaultMaxPostBytes)

	deps := handler.RouterDeps{
		Auth:   handler.NewAuthHandler(userService, authService),
		Posts:  handler.NewPostHandler(postService),
		Health: handler.NewHealthHandler(db, postCache),
		Bearer: authService,
	}
	engine, err := webapi.NewEngine(
		"/",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.BodyLimit(maxBodyBytes),
		),
	)
	require.NoError(t, err)
	return &testServer{router: engine}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(v)
	default:
		payload, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func (s *testServer) registerAndLogin(t *testing.T, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "password1"}
	resp := s.do(t, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = s.do(t, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &token))
	require.Equal(t, "bearer", token.TokenType)
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func decodeDetail(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body), resp.Body.String())
	return body.Detail
}
