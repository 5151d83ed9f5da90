package matching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitpair/internal/adapter/storage"
	"fitpair/internal/domain/geo"
	"fitpair/internal/domain/match"
	"fitpair/internal/domain/profile"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

type fakeReports struct {
	own  map[string]*match.Report
	pool map[string]match.Report

	nearbyCalls int
	lastRadius  float64
}

func (f *fakeReports) Get(_ context.Context, userID string) (*match.Report, error) {
	return f.own[userID], nil
}

func (f *fakeReports) Nearby(_ context.Context, _ profile.Activity, _ geo.Location, radius float64) (map[string]match.Report, error) {
	f.nearbyCalls++
	f.lastRadius = radius
	return f.pool, nil
}

type fakeProfiles struct {
	profiles map[string]*profile.Profile
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID string) (*profile.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return p, nil
}

func liveReport(id string, metersNorth float64) match.Report {
	return match.Report{
		UserID:       id,
		Position:     geo.Location{Latitude: metersNorth / 111195.0, Longitude: 0},
		Activity:     profile.ActivityRunning,
		Level:        profile.LevelIntermediate,
		Visibility:   profile.Visibility{OpenToAll: true},
		Discoverable: true,
		UpdatedAt:    testNow,
	}
}

func newTestService(reports *fakeReports, profiles *fakeProfiles) *Service {
	svc := NewService(reports, profiles, nil, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestFindMatches_RanksNearbyReporters(t *testing.T) {
	me := liveReport("me", 0)
	reports := &fakeReports{
		own: map[string]*match.Report{"me": &me},
		pool: map[string]match.Report{
			"near": liveReport("near", 50),
			"far":  liveReport("far", 300),
		},
	}
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{
		"me": {
			UserID:       "me",
			Level:        profile.LevelIntermediate,
			SearchFilter: profile.FilterAll,
			RadiusPref:   profile.RadiusNormal,
			Discoverable: true,
		},
	}}

	results, err := newTestService(reports, profiles).FindMatches(context.Background(), "me")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].Report.UserID)
	assert.Equal(t, "far", results[1].Report.UserID)

	// The snapshot request used the radius for running/normal.
	assert.Equal(t, float64(350), reports.lastRadius)
}

func TestFindMatches_NoProfileMeansNoMatches(t *testing.T) {
	me := liveReport("me", 0)
	reports := &fakeReports{own: map[string]*match.Report{"me": &me}}
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{}}

	results, err := newTestService(reports, profiles).FindMatches(context.Background(), "me")

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, reports.nearbyCalls)
}

func TestFindMatches_NoOwnReportMeansNoMatches(t *testing.T) {
	reports := &fakeReports{own: map[string]*match.Report{}}
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{
		"me": {UserID: "me", Discoverable: true},
	}}

	results, err := newTestService(reports, profiles).FindMatches(context.Background(), "me")

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, reports.nearbyCalls)
}

func TestFindMatches_OptedOutUserNeverQueriesThePool(t *testing.T) {
	me := liveReport("me", 0)
	reports := &fakeReports{
		own:  map[string]*match.Report{"me": &me},
		pool: map[string]match.Report{"near": liveReport("near", 50)},
	}
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{
		"me": {UserID: "me", Level: profile.LevelIntermediate, Discoverable: false},
	}}

	results, err := newTestService(reports, profiles).FindMatches(context.Background(), "me")

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, reports.nearbyCalls)
}

func TestFindMatches_ProfileOverridesReportPreferences(t *testing.T) {
	// The client-sent report claims to be a discoverable pro, but the
	// stored profile says beginner with a pro-only search filter: the
	// profile wins.
	me := liveReport("me", 0)
	me.Level = profile.LevelPro

	cand := liveReport("cand", 50)
	cand.Level = profile.LevelIntermediate

	reports := &fakeReports{
		own:  map[string]*match.Report{"me": &me},
		pool: map[string]match.Report{"cand": cand},
	}
	profiles := &fakeProfiles{profiles: map[string]*profile.Profile{
		"me": {
			UserID:       "me",
			Level:        profile.LevelBeginner,
			SearchFilter: profile.LevelFilter(profile.LevelPro),
			RadiusPref:   profile.RadiusNormal,
			Discoverable: true,
		},
	}}

	results, err := newTestService(reports, profiles).FindMatches(context.Background(), "me")

	require.NoError(t, err)
	assert.Empty(t, results)
}
