package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-api-checkin/internal/domain"
	"github.com/go-api-checkin/internal/pkg/id"
	pkgtoken "github.com/go-api-checkin/internal/pkg/token"
)

const nicknameSuffixLen = 10

type Service interface {
	// Login checks the phone's verification code, finds or creates the user
	// and returns a fresh opaque token for it.
	Login(ctx context.Context, phone, code string) (token string, err error)
	// Logout deletes the token. Returns domain.ErrLogoutFailed when there
	// was nothing to delete.
	Logout(ctx context.Context, token string) error
	// Resolve returns the cached user for a live token.
	Resolve(ctx context.Context, token string) (*domain.SafeUser, error)
	// Touch restarts the token's TTL.
	Touch(ctx context.Context, token string) error
}

type codeVerifier interface {
	Verify(ctx context.Context, phone, code string) error
}

type userStore interface {
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type tokenStore interface {
	HSetAll(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Delete(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type ServiceDeps struct {
	Verifier       codeVerifier
	UserRepo       userStore
	TokenStore     tokenStore
	KeyPrefix      string
	TTL            time.Duration
	NicknamePrefix string
}

type service struct {
	verifier       codeVerifier
	userRepo       userStore
	tokens         tokenStore
	keyPrefix      string
	ttl            time.Duration
	nicknamePrefix string
	newToken       func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	return &service{
		verifier:       deps.Verifier,
		userRepo:       deps.UserRepo,
		tokens:         deps.TokenStore,
		keyPrefix:      deps.KeyPrefix,
		ttl:            deps.TTL,
		nicknamePrefix: deps.NicknamePrefix,
		newToken:       pkgtoken.NewSessionToken,
	}
}

func (s *service) Login(ctx context.Context, phone, code string) (string, error) {
	if err := s.verifier.Verify(ctx, phone, code); err != nil {
		return "", err
	}
	u, err := s.userRepo.GetByPhone(ctx, phone)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = s.createUser(ctx, phone)
	}
	if err != nil {
		return "", err
	}
	token, err := s.newToken()
	if err != nil {
		return "", err
	}
	if err := s.tokens.HSetAll(ctx, s.key(token), u.Safe().Fields(), s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// createUser persists a new account for phone. Two concurrent first logins
// for the same phone can both get here; the store does not reject the second.
func (s *service) createUser(ctx context.Context, phone string) (*domain.User, error) {
	suffix, err := pkgtoken.RandomString(nicknameSuffixLen)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:    id.New(),
		Phone:     phone,
		NickName:  s.nicknamePrefix + suffix,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user created on first login", "user_id", u.UserID)
	return u, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrLogoutFailed
	}
	removed, err := s.tokens.Delete(ctx, s.key(token))
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrLogoutFailed
	}
	return nil
}

func (s *service) Resolve(ctx context.Context, token string) (*domain.SafeUser, error) {
	if token == "" {
		return nil, fmt.Errorf("missing token: %w", domain.ErrUnauthorized)
	}
	fields, err := s.tokens.HGetAll(ctx, s.key(token))
	if err != nil {
		return nil, err
	}
	u := domain.SafeUserFromFields(fields)
	if u == nil {
		return nil, fmt.Errorf("token invalid or expired: %w", domain.ErrUnauthorized)
	}
	return u, nil
}

func (s *service) Touch(ctx context.Context, token string) error {
	ok, err := s.tokens.Expire(ctx, s.key(token), s.ttl)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("token expired: %w", domain.ErrUnauthorized)
	}
	return nil
}

func (s *service) key(token string) string {
	return s.keyPrefix + token
}
