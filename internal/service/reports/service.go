// internal/service/reports/service.go

package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"fitpair/internal/domain/match"
)

// SubjectReportsUpdated is the broadcast subject every accepted report
// is published on, for anyone mirroring the live pool.
const SubjectReportsUpdated = "reports.updated"

var (
	ErrMissingUser     = errors.New("report has no user id")
	ErrBadCoordinates  = errors.New("report coordinates are not usable")
	ErrUnknownActivity = errors.New("report activity is not recognized")
)

// Store is the live pool the intake writes to.
type Store interface {
	Upsert(ctx context.Context, r match.Report) error
	Remove(ctx context.Context, userID string) error
}

// Service validates and accepts location reports from clients and
// broadcasts each accepted one.
type Service struct {
	store    Store
	eventBus *nats.Conn
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a report intake service.
func NewService(store Store, eventBus *nats.Conn, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		eventBus: eventBus,
		log:      log,
		now:      time.Now,
	}
}

// Submit accepts a report, stamping server time if the client sent
// none. The report overwrites whatever the pool held for that user.
func (s *Service) Submit(ctx context.Context, r match.Report) error {
	if r.UserID == "" {
		return ErrMissingUser
	}
	if !r.Position.Valid() {
		return ErrBadCoordinates
	}
	if !r.Activity.Known() {
		return ErrUnknownActivity
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = s.now()
	}

	if err := s.store.Upsert(ctx, r); err != nil {
		return fmt.Errorf("error storing report: %w", err)
	}

	s.broadcast(r)
	return nil
}

// Withdraw removes a user from the pool, e.g. when they finish their
// workout.
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	if err := s.store.Remove(ctx, userID); err != nil {
		return fmt.Errorf("error removing report: %w", err)
	}
	return nil
}

func (s *Service) broadcast(r match.Report) {
	if s.eventBus == nil {
		return
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.eventBus.Publish(SubjectReportsUpdated, payload); err != nil {
		s.log.Warn("failed to broadcast report",
			zap.String("user_id", r.UserID), zap.Error(err))
	}
}
