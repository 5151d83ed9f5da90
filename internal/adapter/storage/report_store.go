// internal/adapter/storage/report_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fitpair/internal/domain/geo"
	"fitpair/internal/domain/match"
	"fitpair/internal/domain/profile"
)

// reportTTL bounds how long a report can linger after its owner stops
// updating. Liveness filtering happens in the matcher; the TTL is only
// housekeeping for abandoned keys.
const reportTTL = 30 * time.Minute

// ReportStore keeps the live report pool in Redis: one JSON value per
// user plus a GEO index per activity for the spatial prefilter.
type ReportStore struct {
	client *redis.Client
}

// NewReportStore creates a new report store.
func NewReportStore(client *redis.Client) *ReportStore {
	return &ReportStore{client: client}
}

func reportKey(userID string) string {
	return "report:" + userID
}

func geoKey(activity profile.Activity) string {
	return "geo:reports:" + string(activity)
}

// Upsert overwrites a user's report and refreshes the GEO index entry.
func (s *ReportStore) Upsert(ctx context.Context, r match.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("error marshaling report: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, reportKey(r.UserID), payload, reportTTL)
	pipe.GeoAdd(ctx, geoKey(r.Activity), &redis.GeoLocation{
		Name:      r.UserID,
		Longitude: r.Position.Longitude,
		Latitude:  r.Position.Latitude,
	})
	// An activity switch must not leave the user indexed twice.
	for _, other := range []profile.Activity{profile.ActivityRunning, profile.ActivityCycling, profile.ActivityWalking} {
		if other != r.Activity {
			pipe.ZRem(ctx, geoKey(other), r.UserID)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error storing report: %w", err)
	}
	return nil
}

// Get returns a user's current report, or nil if they have none.
func (s *ReportStore) Get(ctx context.Context, userID string) (*match.Report, error) {
	raw, err := s.client.Get(ctx, reportKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching report: %w", err)
	}

	var r match.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("error unmarshaling report: %w", err)
	}
	return &r, nil
}

// Nearby returns a point-in-time map of user-id to report for all
// reporters of the given activity within radiusMeters of center. The
// map is a snapshot: the caller may read it freely while the pool
// keeps changing underneath.
func (s *ReportStore) Nearby(ctx context.Context, activity profile.Activity, center geo.Location, radiusMeters float64) (map[string]match.Report, error) {
	members, err := s.client.GeoSearch(ctx, geoKey(activity), &redis.GeoSearchQuery{
		Longitude:  center.Longitude,
		Latitude:   center.Latitude,
		Radius:     radiusMeters,
		RadiusUnit: "m",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("error searching geo index: %w", err)
	}

	pool := make(map[string]match.Report, len(members))
	if len(members) == 0 {
		return pool, nil
	}

	keys := make([]string, len(members))
	for i, id := range members {
		keys[i] = reportKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("error fetching reports: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Report expired between the geo search and the fetch.
			continue
		}
		var r match.Report
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			continue
		}
		pool[members[i]] = r
	}
	return pool, nil
}

// Remove withdraws a user from the pool entirely.
func (s *ReportStore) Remove(ctx context.Context, userID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, reportKey(userID))
	for _, activity := range []profile.Activity{profile.ActivityRunning, profile.ActivityCycling, profile.ActivityWalking} {
		pipe.ZRem(ctx, geoKey(activity), userID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error removing report: %w", err)
	}
	return nil
}
