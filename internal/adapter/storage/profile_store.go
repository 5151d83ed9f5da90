// internal/adapter/storage/profile_store.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fitpair/internal/domain/profile"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ProfileStore persists user matching preferences in Postgres.
type ProfileStore struct {
	db *pgxpool.Pool
}

// NewProfileStore creates a new profile store.
func NewProfileStore(db *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{db: db}
}

// SaveProfile inserts or overwrites a user's profile.
func (s *ProfileStore) SaveProfile(ctx context.Context, p profile.Profile) error {
	query := `
		INSERT INTO user_profiles (
			user_id, fitness_level, open_to_all, visible_levels,
			search_filter, radius_pref, discoverable, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE
		SET
			fitness_level = $2,
			open_to_all = $3,
			visible_levels = $4,
			search_filter = $5,
			radius_pref = $6,
			discoverable = $7,
			updated_at = $8
	`

	levels := make([]string, len(p.Visibility.Levels))
	for i, l := range p.Visibility.Levels {
		levels[i] = string(l)
	}

	_, err := s.db.Exec(
		ctx,
		query,
		p.UserID,
		string(p.Level),
		p.Visibility.OpenToAll,
		levels,
		string(p.SearchFilter),
		string(p.RadiusPref),
		p.Discoverable,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a profile by user ID.
func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	query := `
		SELECT user_id, fitness_level, open_to_all, visible_levels,
		       search_filter, radius_pref, discoverable, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`

	var (
		p      profile.Profile
		level  string
		filter string
		pref   string
		levels []string
	)

	err := s.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&level,
		&p.Visibility.OpenToAll,
		&levels,
		&filter,
		&pref,
		&p.Discoverable,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}

	p.Level = profile.FitnessLevel(level)
	p.SearchFilter = profile.LevelFilter(filter)
	p.RadiusPref = profile.RadiusPreference(pref)
	p.Visibility.Levels = make([]profile.FitnessLevel, len(levels))
	for i, l := range levels {
		p.Visibility.Levels[i] = profile.FitnessLevel(l)
	}

	return &p, nil
}
