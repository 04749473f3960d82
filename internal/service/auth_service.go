package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mblog/internal/model"
	appErr "github.com/xxxsen/mblog/internal/pkg/errors"
	"github.com/xxxsen/mblog/internal/pkg/jwt"
)

const TokenTypeBearer = "bearer"

type AuthService struct {
	users     *UserService
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(users *UserService, secret []byte, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = jwt.DefaultTTL
	}
	return &AuthService{users: users, jwtSecret: secret, jwtTTL: ttl}
}

// Login checks credentials and issues an access token. Unknown email and
// wrong password both fail with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (string, *model.User, error) {
	user, err := s.users.Authenticate(ctx, email, plainPassword)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		logutil.GetLogger(ctx).Info("login rejected")
		return "", nil, appErr.ErrInvalidCredentials
	}
	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) IssueToken(userID int64) (string, error) {
	return jwt.GenerateToken(strconv.FormatInt(userID, 10), s.jwtSecret, s.jwtTTL)
}

// ResolveBearer turns an Authorization header value into a user. Every
// authentication failure is reported as ErrUnauthorized; only store
// failures come back as other errors.
func (s *AuthService) ResolveBearer(ctx context.Context, raw string) (*model.User, error) {
	token, ok := bearerToken(raw)
	if !ok {
		return nil, appErr.ErrUnauthorized
	}
	subject, err := jwt.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, appErr.ErrUnauthorized
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, appErr.ErrUnauthorized
	}
	user, err := s.users.LookupByID(ctx, userID)
	if err != nil {
		logutil.GetLogger(ctx).Error("resolve token subject failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, appErr.ErrUnauthorized
	}
	return user, nil
}

func bearerToken(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(raw, " ")
	if !found {
		return raw, true
	}
	if !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
