package http

import (
	"context"
	"time"

	"github.com/go-api-checkin/internal/domain"
)

// Cache is the Redis surface the router's services need.
type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Delete(ctx context.Context, key string) (bool, error)
	HSetAll(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	SetBit(ctx context.Context, key string, offset int64, on bool) error
	BitFieldGet(ctx context.Context, key string, width int, offset int64) (uint64, bool, error)
}

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

// SMSSender delivers verification codes. Leave it nil to only log codes.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Cache     Cache
	UserRepo  UserRepository
	SMSSender SMSSender
}
