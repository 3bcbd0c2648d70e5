package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-api-checkin/internal/domain"
)

// monthLayout is the yyyyMM suffix of a month key.
const monthLayout = "200601"

type Service interface {
	// Mark records a check-in for userID on date. Marking the same day twice
	// is a no-op.
	Mark(ctx context.Context, userID string, date time.Time) error
	// Streak counts consecutive check-ins ending on date, walking back
	// toward the first of the month. It is 0 when date itself is unmarked.
	Streak(ctx context.Context, userID string, date time.Time) (int, error)
}

type bitmapStore interface {
	SetBit(ctx context.Context, key string, offset int64, on bool) error
	BitFieldGet(ctx context.Context, key string, width int, offset int64) (uint64, bool, error)
}

type ServiceDeps struct {
	Store     bitmapStore
	KeyPrefix string
}

type service struct {
	store     bitmapStore
	keyPrefix string
}

func NewService(deps ServiceDeps) Service {
	return &service{store: deps.Store, keyPrefix: deps.KeyPrefix}
}

func (s *service) Mark(ctx context.Context, userID string, date time.Time) error {
	if userID == "" {
		return fmt.Errorf("mark: empty user id: %w", domain.ErrBadRequest)
	}
	return s.store.SetBit(ctx, s.key(userID, date), int64(date.Day()-1), true)
}

func (s *service) Streak(ctx context.Context, userID string, date time.Time) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("streak: empty user id: %w", domain.ErrBadRequest)
	}
	window, ok, err := s.store.BitFieldGet(ctx, s.key(userID, date), date.Day(), 0)
	if err != nil {
		return 0, err
	}
	if !ok || window == 0 {
		return 0, nil
	}
	return streakFromWindow(window), nil
}

// key returns the bitmap key for userID's month containing date.
func (s *service) key(userID string, date time.Time) string {
	return s.keyPrefix + userID + ":" + date.Format(monthLayout)
}

// streakFromWindow counts the run of set bits starting at the least
// significant one. The window holds day 1 in its top bit and the queried
// day in bit 0, so the run walks backward from that day.
func streakFromWindow(window uint64) int {
	count := 0
	for window&1 == 1 {
		count++
		window >>= 1
	}
	return count
}
