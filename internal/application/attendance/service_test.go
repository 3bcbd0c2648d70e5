package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-api-checkin/internal/domain"
)

// fakeBitmap follows Redis bit addressing: offset 0 is the most significant
// bit of byte 0, and BITFIELD GET reads first bit highest.
type fakeBitmap struct {
	keys map[string][]byte
}

func newFakeBitmap() *fakeBitmap { return &fakeBitmap{keys: make(map[string][]byte)} }

func (f *fakeBitmap) SetBit(_ context.Context, key string, offset int64, on bool) error {
	buf := f.keys[key]
	for int64(len(buf)) <= offset/8 {
		buf = append(buf, 0)
	}
	mask := byte(0x80) >> uint(offset%8)
	if on {
		buf[offset/8] |= mask
	} else {
		buf[offset/8] &^= mask
	}
	f.keys[key] = buf
	return nil
}

func (f *fakeBitmap) BitFieldGet(_ context.Context, key string, width int, offset int64) (uint64, bool, error) {
	buf := f.keys[key]
	var v uint64
	for i := int64(0); i < int64(width); i++ {
		pos := offset + i
		bit := uint64(0)
		if pos/8 < int64(len(buf)) && buf[pos/8]&(byte(0x80)>>uint(pos%8)) != 0 {
			bit = 1
		}
		v = v<<1 | bit
	}
	return v, true, nil
}

type mockBitmap struct{ mock.Mock }

func (m *mockBitmap) SetBit(ctx context.Context, key string, offset int64, on bool) error {
	return m.Called(ctx, key, offset, on).Error(0)
}

func (m *mockBitmap) BitFieldGet(ctx context.Context, key string, width int, offset int64) (uint64, bool, error) {
	args := m.Called(ctx, key, width, offset)
	return args.Get(0).(uint64), args.Bool(1), args.Error(2)
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 9, 30, 0, 0, time.UTC)
}

func newSvc(store bitmapStore) Service {
	return NewService(ServiceDeps{Store: store, KeyPrefix: "sign:"})
}

func TestMark_KeyAndOffset(t *testing.T) {
	store := &mockBitmap{}
	store.On("SetBit", mock.Anything, "sign:u1:202401", int64(14), true).Return(nil)

	require.NoError(t, newSvc(store).Mark(context.Background(), "u1", day(15)))
	store.AssertExpectations(t)
}

func TestStreak_WindowRequest(t *testing.T) {
	store := &mockBitmap{}
	store.On("BitFieldGet", mock.Anything, "sign:u1:202402", 29, int64(0)).Return(uint64(0b111), true, nil)

	n, err := newSvc(store).Streak(context.Background(), "u1", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	store.AssertExpectations(t)
}

func TestStreak_Scenario(t *testing.T) {
	store := newFakeBitmap()
	svc := newSvc(store)
	ctx := context.Background()

	for _, d := range []int{1, 2, 3, 5} {
		require.NoError(t, svc.Mark(ctx, "u1", day(d)))
	}

	cases := []struct {
		day  int
		want int
	}{
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 0},
		{5, 1},
		{6, 0},
	}
	for _, tc := range cases {
		n, err := svc.Streak(ctx, "u1", day(tc.day))
		require.NoError(t, err)
		assert.Equal(t, tc.want, n, "day %d", tc.day)
	}
}

func TestStreak_TodayUnmarkedIsZero(t *testing.T) {
	store := newFakeBitmap()
	svc := newSvc(store)
	ctx := context.Background()

	for d := 1; d <= 30; d++ {
		require.NoError(t, svc.Mark(ctx, "u1", day(d)))
	}

	n, err := svc.Streak(ctx, "u1", day(31))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = svc.Streak(ctx, "u1", day(30))
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	require.NoError(t, svc.Mark(ctx, "u1", day(31)))
	n, err = svc.Streak(ctx, "u1", day(31))
	require.NoError(t, err)
	assert.Equal(t, 31, n)
}

func TestMark_Idempotent(t *testing.T) {
	store := newFakeBitmap()
	svc := newSvc(store)
	ctx := context.Background()

	require.NoError(t, svc.Mark(ctx, "u1", day(7)))
	once, err := svc.Streak(ctx, "u1", day(7))
	require.NoError(t, err)

	require.NoError(t, svc.Mark(ctx, "u1", day(7)))
	twice, err := svc.Streak(ctx, "u1", day(7))
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, []byte{0x02}, store.keys["sign:u1:202401"])
}

func TestStreak_NoMarksThisMonth(t *testing.T) {
	store := newFakeBitmap()
	svc := newSvc(store)
	ctx := context.Background()

	require.NoError(t, svc.Mark(ctx, "u1", time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)))

	n, err := svc.Streak(ctx, "u1", day(1))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = svc.Streak(ctx, "someone-else", day(20))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStreak_NoValueReturned(t *testing.T) {
	store := &mockBitmap{}
	store.On("BitFieldGet", mock.Anything, "sign:u1:202401", 10, int64(0)).Return(uint64(0), false, nil)

	n, err := newSvc(store).Streak(context.Background(), "u1", day(10))

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStreak_StoreUnavailable(t *testing.T) {
	store := &mockBitmap{}
	store.On("BitFieldGet", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(uint64(0), false, domain.Unavailable("redis bitfield", errors.New("connection refused")))

	_, err := newSvc(store).Streak(context.Background(), "u1", day(10))

	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestEmptyUserRejected(t *testing.T) {
	store := &mockBitmap{}
	svc := newSvc(store)

	assert.ErrorIs(t, svc.Mark(context.Background(), "", day(1)), domain.ErrBadRequest)
	_, err := svc.Streak(context.Background(), "", day(1))
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	store.AssertNotCalled(t, "SetBit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStreakFromWindow(t *testing.T) {
	cases := []struct {
		window uint64
		want   int
	}{
		{0, 0},
		{0b1, 1},
		{0b10, 0},
		{0b1011, 2},
		{0b1110111, 3},
		{1<<31 - 1, 31},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, streakFromWindow(tc.window), "window %b", tc.window)
	}
}
