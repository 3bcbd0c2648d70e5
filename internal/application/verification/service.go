package verification

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/go-api-checkin/internal/domain"
	pkgtoken "github.com/go-api-checkin/internal/pkg/token"
	"github.com/go-api-checkin/internal/pkg/validate"
)

// Service issues and checks the one-time codes used for phone login.
type Service interface {
	// Issue mints a code for phone, stores it and hands it to the sender.
	// A later Issue for the same phone replaces the earlier code.
	Issue(ctx context.Context, phone string) error
	// Verify reports whether code matches the outstanding code for phone.
	// The stored code is left in place either way.
	Verify(ctx context.Context, phone, code string) error
}

type codeStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, found bool, err error)
}

// CodeSender delivers an issued code to the phone's owner.
type CodeSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type ServiceDeps struct {
	Store     codeStore
	Sender    CodeSender // optional; when nil the code is only logged
	KeyPrefix string
	TTL       time.Duration
	// LogCodes adds the code itself to the debug line written when there is
	// no Sender. Leave it off outside local development.
	LogCodes bool
}

type service struct {
	store     codeStore
	sender    CodeSender
	keyPrefix string
	ttl       time.Duration
	logCodes  bool
	newCode   func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:     deps.Store,
		sender:    deps.Sender,
		keyPrefix: deps.KeyPrefix,
		ttl:       deps.TTL,
		logCodes:  deps.LogCodes,
		newCode:   func() (string, error) { return pkgtoken.NewNumericCode(domain.CodeLength) },
	}
}

func (s *service) Issue(ctx context.Context, phone string) error {
	if !validate.Phone(phone) {
		return domain.ErrIdentifierInvalid
	}
	code, err := s.newCode()
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.key(phone), code, s.ttl); err != nil {
		return err
	}
	if s.sender == nil {
		if s.logCodes {
			slog.DebugContext(ctx, "verification code issued", "phone", phone, "code", code)
		} else {
			slog.DebugContext(ctx, "verification code issued", "phone", phone)
		}
		return nil
	}
	msg := fmt.Sprintf("Your login code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes()))
	if err := s.sender.SendSMS(ctx, phone, msg); err != nil {
		return domain.Unavailable("send verification code", err)
	}
	return nil
}

func (s *service) Verify(ctx context.Context, phone, code string) error {
	if !validate.Phone(phone) {
		return domain.ErrIdentifierInvalid
	}
	if code == "" {
		return domain.ErrCodeEmpty
	}
	if utf8.RuneCountInString(code) != domain.CodeLength {
		return domain.ErrCodeWrongLength
	}
	stored, found, err := s.store.Get(ctx, s.key(phone))
	if err != nil {
		return err
	}
	if !found || stored != code {
		return domain.ErrCodeMismatch
	}
	return nil
}

func (s *service) key(phone string) string {
	return s.keyPrefix + phone
}
