// Package movement infers, purely from a stream of GPS samples,
// whether an active workout session has effectively stopped moving.
// The verdict drives pause/resume and safety prompts.
package movement

import (
	"time"

	"fitpair/internal/domain/geo"
)

// Sample is one timestamped GPS fix.
type Sample struct {
	Position geo.Location `json:"position"`
	Time     time.Time    `json:"time"`
}

// State is the tracker's current verdict about the session.
type State int

const (
	// StateCollecting means the detection window has not fully elapsed
	// since session start; no verdict is possible yet.
	StateCollecting State = iota
	StateMoving
	StateStationary
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateMoving:
		return "moving"
	case StateStationary:
		return "stationary"
	}
	return "unknown"
}

// Event is an edge-triggered transition worth telling the outside
// world about.
type Event int

const (
	// EventStationary fires when the session is first judged
	// stationary. Throttled to at most once per detection window and
	// suppressed entirely while the session is paused.
	EventStationary Event = iota

	// EventMovementResumed fires whenever a stationary session starts
	// moving again. Never throttled; this is what lets a paused
	// session signal "resume".
	EventMovementResumed
)

// Config holds the tunables of the inference.
type Config struct {
	// Window is the trailing time span the verdict is computed over.
	Window time.Duration

	// RetentionBuffer is kept beyond the window before samples are
	// pruned.
	RetentionBuffer time.Duration

	// DistanceThresholdMeters bounds both total path length and net
	// displacement for a stationary verdict.
	DistanceThresholdMeters float64

	// EvalInterval is how often the owner of a tracker should call
	// Tick between samples.
	EvalInterval time.Duration
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		Window:                  5 * time.Minute,
		RetentionBuffer:         time.Minute,
		DistanceThresholdMeters: 10,
		EvalInterval:            30 * time.Second,
	}
}

// Tracker holds the movement state of exactly one active session. It
// is an explicit state object driven by an external caller; it owns no
// timers and performs no I/O. Callers must serialize access: one
// stream of samples plus one periodic ticker, never concurrently.
type Tracker struct {
	cfg          Config
	sessionStart time.Time
	samples      []Sample
	state        State
	paused       bool

	// lastStationaryNotify throttles repeat stationary notifications.
	lastStationaryNotify time.Time
}

// NewTracker starts tracking a fresh session. History always starts
// empty; a restarted session never inherits samples from its
// predecessor.
func NewTracker(cfg Config, sessionStart time.Time) *Tracker {
	if cfg.Window <= 0 {
		cfg = DefaultConfig()
	}
	return &Tracker{
		cfg:          cfg,
		sessionStart: sessionStart,
		state:        StateCollecting,
	}
}

// State returns the current verdict.
func (t *Tracker) State() State { return t.state }

// Paused returns whether stationary notifications are suppressed.
func (t *Tracker) Paused() bool { return t.paused }

// SetPaused toggles pause. While paused, a stationary verdict is still
// recorded internally but EventStationary is not emitted: no nagging
// the user about inactivity they caused by pausing themselves.
func (t *Tracker) SetPaused(paused bool) { t.paused = paused }

// Observe appends a new GPS fix and re-evaluates. A sample whose
// timestamp is not after the newest retained sample is dropped rather
// than allowed to reorder the displacement window; the evaluation
// still runs at the observation time.
func (t *Tracker) Observe(s Sample, now time.Time) []Event {
	if n := len(t.samples); n == 0 || s.Time.After(t.samples[n-1].Time) {
		t.samples = append(t.samples, s)
	}
	t.prune(now)
	return t.evaluate(now)
}

// Tick re-evaluates without new data. Drive it at EvalInterval so a
// user who simply stops producing distance is still noticed.
func (t *Tracker) Tick(now time.Time) []Event {
	t.prune(now)
	return t.evaluate(now)
}

func (t *Tracker) prune(now time.Time) {
	cutoff := now.Add(-(t.cfg.Window + t.cfg.RetentionBuffer))
	keep := 0
	for keep < len(t.samples) && !t.samples[keep].Time.After(cutoff) {
		keep++
	}
	if keep > 0 {
		t.samples = append(t.samples[:0], t.samples[keep:]...)
	}
}

func (t *Tracker) evaluate(now time.Time) []Event {
	// No verdict until a full window has elapsed since session start.
	if now.Sub(t.sessionStart) < t.cfg.Window {
		return nil
	}

	window := t.windowSamples(now)
	if len(window) == 0 {
		// GPS outage: no evidence either way, previous verdict stands.
		return nil
	}

	if t.isStationary(window) {
		return t.becomeStationary(now)
	}
	return t.becomeMoving()
}

// windowSamples returns the retained samples inside the current
// detection window.
func (t *Tracker) windowSamples(now time.Time) []Sample {
	start := now.Add(-t.cfg.Window)
	i := 0
	for i < len(t.samples) && t.samples[i].Time.Before(start) {
		i++
	}
	return t.samples[i:]
}

// isStationary judges the window: both the total path length and the
// straight-line first-to-last displacement must stay under the
// threshold. Requiring both keeps a tight back-and-forth jog from
// reading as stationary and GPS jitter from reading as movement.
func (t *Tracker) isStationary(window []Sample) bool {
	var path float64
	for i := 1; i < len(window); i++ {
		path += geo.DistanceMeters(window[i-1].Position, window[i].Position)
	}
	net := geo.DistanceMeters(window[0].Position, window[len(window)-1].Position)

	return path < t.cfg.DistanceThresholdMeters && net < t.cfg.DistanceThresholdMeters
}

func (t *Tracker) becomeStationary(now time.Time) []Event {
	if t.state == StateStationary {
		return nil
	}
	t.state = StateStationary

	if t.paused {
		return nil
	}
	if !t.lastStationaryNotify.IsZero() && now.Sub(t.lastStationaryNotify) < t.cfg.Window {
		return nil
	}
	t.lastStationaryNotify = now
	return []Event{EventStationary}
}

func (t *Tracker) becomeMoving() []Event {
	wasStationary := t.state == StateStationary
	t.state = StateMoving
	if wasStationary {
		return []Event{EventMovementResumed}
	}
	return nil
}
