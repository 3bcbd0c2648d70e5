package user

import (
	"context"
	"errors"

	"github.com/go-api-checkin/internal/domain"
)

type Service interface {
	// Get returns the public view of userID, or nil when no such user exists.
	Get(ctx context.Context, userID string) (*domain.SafeUser, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	users userStore
}

func NewService(users userStore) Service {
	return &service{users: users}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.SafeUser, error) {
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u.Safe(), nil
}
