// internal/server/handlers/stream.go

package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fitpair/internal/domain/geo"
	"fitpair/internal/domain/movement"
	"fitpair/internal/service/notify"
)

// StreamConfig holds the WebSocket position stream configuration
type StreamConfig struct {
	WriteWait         time.Duration
	PongWait          time.Duration
	PingPeriod        time.Duration
	MaxMessageSize    int64
	MaxFixesPerSecond float64
	FixBurst          int
}

// DefaultStreamConfig returns the default position stream configuration
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		WriteWait:         10 * time.Second,
		PongWait:          60 * time.Second,
		PingPeriod:        (60 * time.Second * 9) / 10,
		MaxMessageSize:    4096,
		MaxFixesPerSecond: 2,
		FixBurst:          5,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// streamClient bridges one workout session's socket: GPS fixes flow
// in, movement events flow back out via NATS.
type streamClient struct {
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	manager   SessionManager
	natsConn  *nats.Conn
	sub       *nats.Subscription
	limiter   *rate.Limiter
	cfg       StreamConfig
	log       *zap.Logger
	closeOnce sync.Once
}

// positionFix is the inbound wire shape of a GPS fix.
type positionFix struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Time      *time.Time `json:"time,omitempty"`
}

// SessionStreamHandler handles the WebSocket position stream for an
// active session.
func SessionStreamHandler(manager SessionManager, natsConn *nats.Conn, cfg StreamConfig, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "id")
		if sessionID == "" {
			http.Error(w, "Missing session ID", http.StatusBadRequest)
			return
		}

		// Reject unknown sessions before upgrading.
		if _, err := manager.State(sessionID); err != nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("failed to upgrade to WebSocket", zap.Error(err))
			return
		}

		client := &streamClient{
			conn:      conn,
			send:      make(chan []byte, 64),
			sessionID: sessionID,
			manager:   manager,
			natsConn:  natsConn,
			limiter:   rate.NewLimiter(rate.Limit(cfg.MaxFixesPerSecond), cfg.FixBurst),
			cfg:       cfg,
			log:       log,
		}

		if err := client.subscribeToSession(); err != nil {
			log.Warn("failed to subscribe to session events",
				zap.String("session_id", sessionID), zap.Error(err))
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()

		log.Info("position stream connected", zap.String("session_id", sessionID))
	}
}

// subscribeToSession forwards the session's movement events to the
// socket.
func (c *streamClient) subscribeToSession() error {
	sub, err := c.natsConn.Subscribe(notify.SessionSubject(c.sessionID), func(msg *nats.Msg) {
		select {
		case c.send <- msg.Data:
		default:
			// Slow consumer; drop rather than block the bus.
		}
	})
	if err != nil {
		return err
	}
	c.sub = sub
	return nil
}

// readPump pumps GPS fixes from the socket into the session manager.
func (c *streamClient) readPump() {
	defer c.closeConnection()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("position stream read error",
					zap.String("session_id", c.sessionID), zap.Error(err))
			}
			return
		}

		if !c.limiter.Allow() {
			// A device spamming fixes gains nothing; the window logic
			// works fine on the sampled subset.
			continue
		}

		var fix positionFix
		if err := json.Unmarshal(raw, &fix); err != nil {
			c.log.Debug("dropping malformed fix", zap.String("session_id", c.sessionID))
			continue
		}

		ts := time.Now()
		if fix.Time != nil {
			ts = *fix.Time
		}

		err = c.manager.Observe(c.sessionID, movement.Sample{
			Position: geo.Location{Latitude: fix.Latitude, Longitude: fix.Longitude},
			Time:     ts,
		})
		if err != nil {
			// Session ended underneath the stream.
			return
		}
	}
}

// writePump pumps movement events from NATS to the socket.
func (c *streamClient) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *streamClient) closeConnection() {
	c.closeOnce.Do(func() {
		if c.sub != nil {
			c.sub.Unsubscribe()
		}
		c.conn.Close()
	})
}
