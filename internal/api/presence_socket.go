package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/naija-amebo-api/internal/models"
	"github.com/naija-amebo-api/internal/validation"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 1024
	// Time allowed for a presence write after the client has gone.
	storeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Frame types exchanged over the presence socket
const (
	frameHeartbeat = "heartbeat"
	frameStatus    = "status"
	frameAck       = "ack"
	framePresence  = "presence"
	frameError     = "error"
)

// socketFrame is the JSON envelope for every message in both directions
type socketFrame struct {
	Type     string                `json:"type"`
	Status   string                `json:"status,omitempty"`
	Presence *models.PresenceView  `json:"presence,omitempty"`
	Event    *models.PresenceEvent `json:"event,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// Socket handles GET /v1/presence/ws
// The connection itself is the heartbeat: every pong refreshes last_seen, so
// the user stays online while the socket is open and answering pings. The
// user goes offline when it closes or stops answering within the TTL.
func (h *PresenceHandler) Socket(c *gin.Context) {
	userID := claimsFrom(c).UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client
		h.log.Warn().Err(err).Str("user_id", userID).Msg("Websocket upgrade failed")
		return
	}

	s := &presenceSocket{
		handler: h,
		conn:    conn,
		userID:  userID,
		status:  models.PresenceOnline,
		send:    make(chan socketFrame, 16),
		done:    make(chan struct{}),
		log:     h.log.With().Str("user_id", userID).Logger(),
	}
	s.serve()
}

// presenceSocket is one connected client
type presenceSocket struct {
	handler *PresenceHandler
	conn    *websocket.Conn
	userID  string
	status  models.PresenceStatus
	send    chan socketFrame
	done    chan struct{}
	log     zerolog.Logger

	// lastReport is only touched by the read goroutine
	lastReport time.Time
}

func (s *presenceSocket) serve() {
	events, cancel := s.handler.services.Presence.Subscribe()
	defer cancel()

	go s.writePump(events)

	s.log.Debug().Msg("Presence socket connected")
	s.report(models.PresenceOnline, models.PresenceReasonHeartbeat)
	s.readPump()

	close(s.done)
	s.report(models.PresenceOffline, models.PresenceReasonDisconnect)
	s.log.Debug().Msg("Presence socket closed")
}

func (s *presenceSocket) pongWait() time.Duration {
	if s.handler.ttl > 0 {
		return s.handler.ttl
	}
	return 60 * time.Second
}

// pingPeriod leaves room for two missed pongs before the TTL runs out
func (s *presenceSocket) pingPeriod() time.Duration {
	return s.pongWait() / 3
}

// readPump processes client frames until the connection fails
func (s *presenceSocket) readPump() {
	defer s.conn.Close()

	wait := s.pongWait()
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(wait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(wait))
		if time.Since(s.lastReport) >= s.pingPeriod()/2 {
			s.refresh()
		}
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Msg("Presence socket read failed")
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(wait))

		var frame socketFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			s.push(socketFrame{Type: frameError, Error: "invalid message format"})
			continue
		}

		switch frame.Type {
		case frameHeartbeat:
			s.report(s.status, models.PresenceReasonHeartbeat)
		case frameStatus:
			status, err := validation.ParsePresenceStatus(frame.Status)
			if err != nil {
				s.push(socketFrame{Type: frameError, Error: err.Error()})
				continue
			}
			s.status = status
			s.report(status, models.PresenceReasonHeartbeat)
		default:
			s.push(socketFrame{Type: frameError, Error: "unknown frame type"})
		}
	}
}

// writePump is the only writer on the connection
func (s *presenceSocket) writePump(events <-chan models.PresenceEvent) {
	ticker := time.NewTicker(s.pingPeriod())
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		var frame socketFrame
		select {
		case <-s.done:
			return
		case ev, ok := <-events:
			if !ok {
				s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			frame = socketFrame{Type: framePresence, Event: &ev}
		case frame = <-s.send:
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}

		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteJSON(frame); err != nil {
			return
		}
	}
}

// report records the user's status and acknowledges it to the client
func (s *presenceSocket) report(status models.PresenceStatus, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	view, err := s.handler.services.Presence.Heartbeat(ctx, s.userID, status, reason)
	if err != nil {
		s.log.Error().Err(err).Str("status", string(status)).Msg("Failed to record socket presence")
		s.push(socketFrame{Type: frameError, Error: "failed to record presence"})
		return
	}
	s.lastReport = time.Now()
	s.push(socketFrame{Type: frameAck, Presence: view})
}

// refresh records a heartbeat for a pong without acknowledging it
func (s *presenceSocket) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if _, err := s.handler.services.Presence.Heartbeat(ctx, s.userID, s.status, models.PresenceReasonHeartbeat); err != nil {
		s.log.Error().Err(err).Msg("Failed to refresh socket presence")
		return
	}
	s.lastReport = time.Now()
}

// push queues a frame without blocking; frames are dropped once the writer is gone
func (s *presenceSocket) push(frame socketFrame) {
	select {
	case <-s.done:
	case s.send <- frame:
	default:
	}
}
