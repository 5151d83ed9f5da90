package reports

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitpair/internal/domain/geo"
	"fitpair/internal/domain/match"
	"fitpair/internal/domain/profile"
)

type fakeStore struct {
	upserts []match.Report
	removed []string
}

func (f *fakeStore) Upsert(_ context.Context, r match.Report) error {
	f.upserts = append(f.upserts, r)
	return nil
}

func (f *fakeStore) Remove(_ context.Context, userID string) error {
	f.removed = append(f.removed, userID)
	return nil
}

func validReport() match.Report {
	return match.Report{
		UserID:   "runner-1",
		Position: geo.Location{Latitude: 52.52, Longitude: 13.405},
		Activity: profile.ActivityRunning,
	}
}

func TestSubmit_StampsServerTimeWhenMissing(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil, zap.NewNop())
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.Submit(context.Background(), validReport()))

	require.Len(t, store.upserts, 1)
	assert.Equal(t, now, store.upserts[0].UpdatedAt)
}

func TestSubmit_KeepsClientTimestamp(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil, zap.NewNop())

	r := validReport()
	r.UpdatedAt = time.Date(2026, 8, 30, 11, 59, 0, 0, time.UTC)
	require.NoError(t, svc.Submit(context.Background(), r))

	assert.Equal(t, r.UpdatedAt, store.upserts[0].UpdatedAt)
}

func TestSubmit_Validation(t *testing.T) {
	svc := NewService(&fakeStore{}, nil, zap.NewNop())
	ctx := context.Background()

	r := validReport()
	r.UserID = ""
	assert.ErrorIs(t, svc.Submit(ctx, r), ErrMissingUser)

	r = validReport()
	r.Position.Latitude = math.NaN()
	assert.ErrorIs(t, svc.Submit(ctx, r), ErrBadCoordinates)

	r = validReport()
	r.Activity = "swimming"
	assert.ErrorIs(t, svc.Submit(ctx, r), ErrUnknownActivity)
}

func TestWithdraw(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil, zap.NewNop())

	require.NoError(t, svc.Withdraw(context.Background(), "runner-1"))
	assert.Equal(t, []string{"runner-1"}, store.removed)

	assert.ErrorIs(t, svc.Withdraw(context.Background(), ""), ErrMissingUser)
}
