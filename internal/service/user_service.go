package service

import (
	"context"

	"github.com/xxxsen/mblog/internal/model"
	appErr "github.com/xxxsen/mblog/internal/pkg/errors"
	"github.com/xxxsen/mblog/internal/pkg/password"
	"github.com/xxxsen/mblog/internal/repo"
)

type UserService struct {
	users *repo.UserRepo
}

func NewUserService(users *repo.UserRepo) *UserService {
	return &UserService{users: users}
}

// Register creates a user. The lookup is only a fast path; the unique
// constraint on users.email decides concurrent registrations and both
// paths yield ErrConflict.
func (s *UserService) Register(ctx context.Context, email, plainPassword string) (*model.User, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !appErr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, appErr.ErrConflict
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns nil, nil when the email is unknown or the password
// is wrong; callers must not tell the two apart.
func (s *UserService) Authenticate(ctx context.Context, email, plainPassword string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			password.Burn(plainPassword)
			return nil, nil
		}
		return nil, err
	}
	if !password.Verify(plainPassword, user.PasswordHash) {
		return nil, nil
	}
	return user, nil
}

func (s *UserService) LookupByID(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
