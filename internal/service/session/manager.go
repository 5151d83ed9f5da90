// internal/service/session/manager.go

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitpair/internal/domain/movement"
)

var ErrSessionNotFound = errors.New("session not found")

// Notifier receives the edge-triggered movement events of a session.
type Notifier interface {
	NotifyStationary(userID, sessionID string, at time.Time)
	NotifyMovementResumed(userID, sessionID string, at time.Time)
}

// session owns the movement state of one active workout. The mutex
// serializes the position stream against the evaluation ticker; the
// tracker itself is single-writer by contract.
type session struct {
	id      string
	userID  string
	mu      sync.Mutex
	tracker *movement.Tracker
	cancel  context.CancelFunc
	ended   bool
}

// Manager owns every active session: it hands each one its own
// tracker and evaluation ticker, and tears both down when the session
// ends or is replaced by a newer one for the same user.
type Manager struct {
	cfg      movement.Config
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time

	// ctx parents every session ticker; sessions must outlive the
	// request that started them but never the manager.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*session // session id -> session
	byUser   map[string]string   // user id -> active session id
	wg       sync.WaitGroup
}

// NewManager creates a session manager.
func NewManager(cfg movement.Config, notifier Notifier, log *zap.Logger) *Manager {
	if cfg.Window <= 0 {
		cfg = movement.DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
		byUser:   make(map[string]string),
	}
}

// Start begins a new session for a user and returns its ID. Any
// previous session for the same user is ended first, so its timer can
// never fire into the fresh state.
func (m *Manager) Start(userID string) string {
	m.mu.Lock()
	if oldID, ok := m.byUser[userID]; ok {
		m.endLocked(oldID)
	}

	s := &session{
		id:      uuid.New().String(),
		userID:  userID,
		tracker: movement.NewTracker(m.cfg, m.now()),
	}
	runCtx, cancel := context.WithCancel(m.ctx)
	s.cancel = cancel

	m.sessions[s.id] = s
	m.byUser[userID] = s.id
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(runCtx, s)

	m.log.Info("session started",
		zap.String("session_id", s.id), zap.String("user_id", userID))
	return s.id
}

// Observe feeds one GPS fix into a session.
func (m *Manager) Observe(sessionID string, sample movement.Sample) error {
	s, err := m.lookup(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	events := s.tracker.Observe(sample, m.now())
	s.mu.Unlock()

	m.dispatch(s, events)
	return nil
}

// Pause suppresses stationary notifications for a session without
// discarding its state.
func (m *Manager) Pause(sessionID string) error {
	return m.setPaused(sessionID, true)
}

// Resume re-enables stationary notifications.
func (m *Manager) Resume(sessionID string) error {
	return m.setPaused(sessionID, false)
}

// State returns a session's current movement verdict.
func (m *Manager) State(sessionID string) (movement.State, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return movement.StateCollecting, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.State(), nil
}

// End tears down a session: its ticker stops and its history is
// discarded.
func (m *Manager) End(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	m.endLocked(sessionID)
	return nil
}

// Stop ends every active session and waits for their tickers to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	for id := range m.sessions {
		m.endLocked(id)
	}
	m.mu.Unlock()
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) setPaused(sessionID string, paused bool) error {
	s, err := m.lookup(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tracker.SetPaused(paused)
	s.mu.Unlock()
	return nil
}

func (m *Manager) lookup(sessionID string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// endLocked requires m.mu to be held.
func (m *Manager) endLocked(sessionID string) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
	s.cancel()
	delete(m.sessions, sessionID)
	if m.byUser[s.userID] == sessionID {
		delete(m.byUser, s.userID)
	}
	m.log.Info("session ended",
		zap.String("session_id", sessionID), zap.String("user_id", s.userID))
}

// run drives the periodic evaluation for one session until it ends.
func (m *Manager) run(ctx context.Context, s *session) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.EvalInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.ended {
				s.mu.Unlock()
				return
			}
			events := s.tracker.Tick(m.now())
			s.mu.Unlock()
			m.dispatch(s, events)
		}
	}
}

func (m *Manager) dispatch(s *session, events []movement.Event) {
	if m.notifier == nil {
		return
	}
	now := m.now()
	for _, e := range events {
		switch e {
		case movement.EventStationary:
			m.log.Info("session went stationary",
				zap.String("session_id", s.id), zap.String("user_id", s.userID))
			m.notifier.NotifyStationary(s.userID, s.id, now)
		case movement.EventMovementResumed:
			m.log.Info("session movement resumed",
				zap.String("session_id", s.id), zap.String("user_id", s.userID))
			m.notifier.NotifyMovementResumed(s.userID, s.id, now)
		}
	}
}
