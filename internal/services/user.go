package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nutriplan/nutriplan-server/internal/model"
	"github.com/nutriplan/nutriplan-server/internal/store"
)

// UserService persists user records. Credential verification and token
// issuance belong to the external auth service; registration hands this
// service an already-hashed credential.
type UserService struct {
	store   store.Store
	timeout time.Duration
}

func NewUserService(s store.Store, timeout time.Duration) *UserService {
	return &UserService{store: s, timeout: timeout}
}

func (s *UserService) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	if u == nil || u.Email == "" {
		return nil, fmt.Errorf("%w: email is required", model.ErrValidation)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.Users().Create(ctx, u)
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", model.ErrValidation)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.store.Users().Get(ctx, userID)
}

func (s *UserService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
