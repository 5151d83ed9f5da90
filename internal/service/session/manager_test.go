package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitpair/internal/domain/geo"
	"fitpair/internal/domain/movement"
)

type recordingNotifier struct {
	mu         sync.Mutex
	stationary []string
	resumed    []string
}

func (n *recordingNotifier) NotifyStationary(userID, sessionID string, _ time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stationary = append(n.stationary, sessionID)
}

func (n *recordingNotifier) NotifyMovementResumed(userID, sessionID string, _ time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resumed = append(n.resumed, sessionID)
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stationary), len(n.resumed)
}

func fix(metersNorth float64, ts time.Time) movement.Sample {
	return movement.Sample{
		Position: geo.Location{Latitude: metersNorth / 111195.0, Longitude: 0},
		Time:     ts,
	}
}

func newTestManager(notifier Notifier) (*Manager, *time.Time) {
	cfg := movement.DefaultConfig()
	// Keep the real ticker quiet during tests; evaluation is driven
	// through Observe with the injected clock.
	cfg.EvalInterval = time.Hour

	m := NewManager(cfg, notifier, zap.NewNop())
	clock := time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestManager_StationaryAndResumeFlow(t *testing.T) {
	notifier := &recordingNotifier{}
	m, clock := newTestManager(notifier)
	defer m.Stop()

	id := m.Start("runner-1")
	require.NotEmpty(t, id)

	for i := 0; i < 6; i++ {
		*clock = clock.Add(time.Minute)
		require.NoError(t, m.Observe(id, fix(0, *clock)))
	}

	stationary, resumed := notifier.counts()
	assert.Equal(t, 1, stationary)
	assert.Equal(t, 0, resumed)

	state, err := m.State(id)
	require.NoError(t, err)
	assert.Equal(t, movement.StateStationary, state)

	*clock = clock.Add(30 * time.Second)
	require.NoError(t, m.Observe(id, fix(50, *clock)))

	stationary, resumed = notifier.counts()
	assert.Equal(t, 1, stationary)
	assert.Equal(t, 1, resumed)
}

func TestManager_PauseSuppressesStationary(t *testing.T) {
	notifier := &recordingNotifier{}
	m, clock := newTestManager(notifier)
	defer m.Stop()

	id := m.Start("runner-1")
	require.NoError(t, m.Pause(id))

	for i := 0; i < 6; i++ {
		*clock = clock.Add(time.Minute)
		require.NoError(t, m.Observe(id, fix(0, *clock)))
	}

	stationary, _ := notifier.counts()
	assert.Zero(t, stationary)

	// Movement while paused still signals resume; that is what lets a
	// paused session offer to restart.
	*clock = clock.Add(30 * time.Second)
	require.NoError(t, m.Observe(id, fix(80, *clock)))
	_, resumed := notifier.counts()
	assert.Equal(t, 1, resumed)
}

func TestManager_NewSessionReplacesOld(t *testing.T) {
	notifier := &recordingNotifier{}
	m, clock := newTestManager(notifier)
	defer m.Stop()

	first := m.Start("runner-1")

	// Build up four minutes of stillness in the first session, then
	// replace it: the fresh session must start from a clean history.
	for i := 0; i < 4; i++ {
		*clock = clock.Add(time.Minute)
		require.NoError(t, m.Observe(first, fix(0, *clock)))
	}

	second := m.Start("runner-1")
	assert.NotEqual(t, first, second)
	assert.ErrorIs(t, m.Observe(first, fix(0, *clock)), ErrSessionNotFound)

	*clock = clock.Add(time.Minute)
	require.NoError(t, m.Observe(second, fix(0, *clock)))
	state, err := m.State(second)
	require.NoError(t, err)
	assert.Equal(t, movement.StateCollecting, state)

	stationary, _ := notifier.counts()
	assert.Zero(t, stationary)
}

func TestManager_EndDiscardsSession(t *testing.T) {
	m, _ := newTestManager(&recordingNotifier{})
	defer m.Stop()

	id := m.Start("runner-1")
	require.NoError(t, m.End(id))

	assert.ErrorIs(t, m.End(id), ErrSessionNotFound)
	assert.ErrorIs(t, m.Pause(id), ErrSessionNotFound)
	_, err := m.State(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_IndependentSessionsDoNotInterfere(t *testing.T) {
	notifier := &recordingNotifier{}
	m, clock := newTestManager(notifier)
	defer m.Stop()

	still := m.Start("resting")
	moving := m.Start("running")

	for i := 0; i < 6; i++ {
		*clock = clock.Add(time.Minute)
		require.NoError(t, m.Observe(still, fix(0, *clock)))
		require.NoError(t, m.Observe(moving, fix(float64(i)*150, *clock)))
	}

	stillState, err := m.State(still)
	require.NoError(t, err)
	movingState, err := m.State(moving)
	require.NoError(t, err)

	assert.Equal(t, movement.StateStationary, stillState)
	assert.Equal(t, movement.StateMoving, movingState)

	n := notifier
	n.mu.Lock()
	defer n.mu.Unlock()
	assert.Equal(t, []string{still}, n.stationary)
}
