// internal/service/notify/dispatcher.go

package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	EventStationary      = "stationary"
	EventMovementResumed = "movement_resumed"
)

// MovementEvent is the wire shape published for movement transitions.
type MovementEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Time      time.Time `json:"time"`
}

// Dispatcher publishes movement notifications over NATS. Delivery to
// the end user (push, in-app prompt) is someone else's problem; this
// only gets the event onto the bus.
type Dispatcher struct {
	conn *nats.Conn
	log  *zap.Logger
}

// NewDispatcher creates a NATS-backed dispatcher.
func NewDispatcher(conn *nats.Conn, log *zap.Logger) *Dispatcher {
	return &Dispatcher{conn: conn, log: log}
}

// SessionSubject is the per-session subject movement events appear on.
func SessionSubject(sessionID string) string {
	return fmt.Sprintf("sessions.%s.events", sessionID)
}

// NotifyStationary publishes a "became stationary" prompt.
func (d *Dispatcher) NotifyStationary(userID, sessionID string, at time.Time) {
	d.publish(MovementEvent{
		Type:      EventStationary,
		UserID:    userID,
		SessionID: sessionID,
		Time:      at,
	})
}

// NotifyMovementResumed publishes a "movement resumed" signal.
func (d *Dispatcher) NotifyMovementResumed(userID, sessionID string, at time.Time) {
	d.publish(MovementEvent{
		Type:      EventMovementResumed,
		UserID:    userID,
		SessionID: sessionID,
		Time:      at,
	})
}

func (d *Dispatcher) publish(ev MovementEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := d.conn.Publish(SessionSubject(ev.SessionID), payload); err != nil {
		d.log.Warn("failed to publish movement event",
			zap.String("session_id", ev.SessionID),
			zap.String("type", ev.Type),
			zap.Error(err),
		)
	}
}
