// internal/service/matching/service.go

package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fitpair/internal/adapter/storage"
	"fitpair/internal/domain/geo"
	"fitpair/internal/domain/match"
	"fitpair/internal/domain/profile"
)

// ReportSource is the live report pool the matcher reads snapshots
// from.
type ReportSource interface {
	// Get returns the user's own current report, or nil if they have
	// not reported since their last withdrawal.
	Get(ctx context.Context, userID string) (*match.Report, error)

	// Nearby returns a point-in-time snapshot of reports for one
	// activity within a radius of a point.
	Nearby(ctx context.Context, activity profile.Activity, center geo.Location, radiusMeters float64) (map[string]match.Report, error)
}

// ProfileSource provides the querying user's stored preferences.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)
}

// Service runs matching on demand: it assembles the querying user's
// state, takes a snapshot of nearby reporters, and ranks them.
type Service struct {
	reports  ReportSource
	profiles ProfileSource
	eventBus *nats.Conn
	log      *zap.Logger
	now      func() time.Time

	// group coalesces concurrent queries for the same user; the
	// snapshot one in-flight run sees is good enough for all of them.
	group singleflight.Group
}

// NewService creates a matching service.
func NewService(reports ReportSource, profiles ProfileSource, eventBus *nats.Conn, log *zap.Logger) *Service {
	return &Service{
		reports:  reports,
		profiles: profiles,
		eventBus: eventBus,
		log:      log,
		now:      time.Now,
	}
}

// FindMatches returns a ranked list of at most match.MaxResults
// compatible nearby users for the given user. A user with no current
// report, or no profile yet, simply has no matches.
func (s *Service) FindMatches(ctx context.Context, userID string) ([]match.Result, error) {
	v, err, _ := s.group.Do(userID, func() (interface{}, error) {
		return s.findMatches(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]match.Result), nil
}

func (s *Service) findMatches(ctx context.Context, userID string) ([]match.Result, error) {
	prof, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}

	report, err := s.reports.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading own report: %w", err)
	}
	if report == nil {
		return nil, nil
	}

	// The stored profile is authoritative for preference fields; the
	// live report contributes position, activity, and pace.
	report.Level = prof.Level
	report.Visibility = prof.Visibility
	report.SearchFilter = prof.SearchFilter
	report.Discoverable = prof.Discoverable

	if !report.Discoverable {
		return nil, nil
	}

	now := s.now()
	radius := profile.RadiusMeters(report.Activity, prof.RadiusPref)

	pool, err := s.reports.Nearby(ctx, report.Activity, report.Position, radius)
	if err != nil {
		return nil, fmt.Errorf("error snapshotting report pool: %w", err)
	}

	results := match.Find(match.Query{
		Report:           *report,
		RadiusPreference: prof.RadiusPref,
	}, pool, now)

	s.log.Debug("matching run complete",
		zap.String("user_id", userID),
		zap.Int("pool_size", len(pool)),
		zap.Int("results", len(results)),
	)

	if len(results) > 0 {
		s.publishMatchesFound(userID, results, now)
	}
	return results, nil
}

type matchesFoundEvent struct {
	UserID   string    `json:"user_id"`
	Count    int       `json:"count"`
	TopScore float64   `json:"top_score"`
	Time     time.Time `json:"time"`
}

func (s *Service) publishMatchesFound(userID string, results []match.Result, now time.Time) {
	if s.eventBus == nil {
		return
	}

	payload, err := json.Marshal(matchesFoundEvent{
		UserID:   userID,
		Count:    len(results),
		TopScore: results[0].Score,
		Time:     now,
	})
	if err != nil {
		return
	}

	subject := fmt.Sprintf("users.%s.matches", userID)
	if err := s.eventBus.Publish(subject, payload); err != nil {
		s.log.Warn("failed to publish matches event",
			zap.String("user_id", userID), zap.Error(err))
	}
}
