package broadcast

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pairchat/internal/app/convo"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// duration to wait for a Pong response after sending a Ping.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a control frame sent by the client.
	maxInboundSize = 1024

	// size of the per-session outbound queue.
	sendQueueSize = 256
)

// Inbound control frame types. Sessions only ever send subscription
// management frames; all domain traffic flows through the HTTP API.
const (
	frameSubscribe   = "subscribe"
	frameUnsubscribe = "unsubscribe"
)

// Session represents one live WebSocket connection of an authenticated user.
//
// A session owns its subscription set for its lifetime: subscriptions are
// created by explicit subscribe frames and every one of them is released
// when the connection closes, whichever way it closes.
type Session struct {
	hub  *Hub
	conn *websocket.Conn

	// userID is the verified identity behind the connection. It bounds
	// which channels the session may subscribe to.
	userID string

	// send is the buffered outbound queue, written by the hub loop and
	// drained by WritePump.
	send chan []byte

	logger zerolog.Logger
}

// NewSession constructs a Session for the given verified user.
func NewSession(hub *Hub, conn *websocket.Conn, userID string) *Session {
	sessionLogger := logx.Logger().With().
		Str("component", "Session").
		Str("user_id", userID).
		Logger()

	return &Session{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendQueueSize),
		logger: sessionLogger,
	}
}

// ReadPump handles reading control frames from the WebSocket connection.
// It handles heartbeats (Pong), subscription management, and performs
// cleanup upon connection closure.
func (s *Session) ReadPump() {
	defer s.cleanupOnDisconnect()

	s.conn.SetReadLimit(maxInboundSize)

	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		s.processInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect unregisters the session from the hub, which releases
// every channel subscription it still holds, and closes the connection.
func (s *Session) cleanupOnDisconnect() {
	s.logger.Info().Msg("Session cleanup starting.")

	s.signalUnregister()

	if err := s.conn.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Session connection close error")
	}
}

// signalUnregister hands the session to the hub for teardown. The signal
// must land: dropping it would leave the session in the hub maps with its
// subscriptions still live. It blocks until the hub accepts it or the hub
// is shutting down.
func (s *Session) signalUnregister() {
	select {
	case s.hub.unregister <- s:
	case <-s.hub.stopChan:
	}
}

// processInboundFrame handles one raw control frame from the client.
func (s *Session) processInboundFrame(frameBytes []byte) {
	var frame struct {
		Type    string `json:"type"`
		Channel string `json:"channel"`
	}

	if err := json.Unmarshal(frameBytes, &frame); err != nil {
		s.logger.Warn().Err(err).Msg("Session sent invalid JSON")
		return
	}

	switch frame.Type {
	case frameSubscribe:
		if customErr := s.authorizeChannel(frame.Channel); customErr != nil {
			s.sendError(customErr)
			return
		}
		s.hub.subscribe <- subscription{session: s, channel: frame.Channel}

	case frameUnsubscribe:
		s.hub.unsubscribe <- subscription{session: s, channel: frame.Channel}

	default:
		s.logger.Warn().Str("frame_type", frame.Type).Msg("Session sent unsupported frame type")
	}
}

// authorizeChannel checks that the session may subscribe to the channel:
// its own three user channels, or any conversation channel it participates in.
func (s *Session) authorizeChannel(channel string) *errs.CustomError {
	if channel == "" {
		return errs.NewError(errs.ErrInvalidChannel)
	}

	switch channel {
	case RequestsChannel(s.userID), FriendsChannel(s.userID), ChatsChannel(s.userID):
		return nil
	}

	if chatID, ok := ConversationID(channel); ok {
		if convo.IsParticipant(chatID, s.userID) {
			return nil
		}
		return errs.NewError(errs.ErrChannelForbidden)
	}

	// A well-formed user channel that did not match above belongs to
	// someone else.
	if strings.HasPrefix(channel, "user"+separatorSubstitute) {
		return errs.NewError(errs.ErrChannelForbidden)
	}

	return errs.NewError(errs.ErrInvalidChannel)
}

// sendError queues an error envelope for the client.
func (s *Session) sendError(customErr *errs.CustomError) {
	payload, err := json.Marshal(map[string]any{
		"code":    customErr.Code,
		"message": customErr.Message,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal error payload")
		return
	}

	raw, err := json.Marshal(Envelope{Event: "error", Payload: payload})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal error envelope")
		return
	}

	select {
	case s.send <- raw:
	default:
		s.logger.Warn().Msg("Send queue full. Dropping error envelope.")
	}
}

// WritePump handles writing queued envelopes from the send channel to the
// WebSocket connection and keeps the heartbeat alive.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := s.conn.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Session connection close error in WritePump")
		}
	}()

	for {
		select {
		case envelope, ok := <-s.send:
			if !s.writeQueuedEnvelope(envelope, ok) {
				return
			}

		case <-ticker.C:
			if !s.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedEnvelope writes one envelope to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (s *Session) writeQueuedEnvelope(envelope []byte, ok bool) bool {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := s.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			s.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, envelope); err != nil {
		s.logger.Error().Err(err).Msg("Error writing envelope")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (s *Session) writePingMessage() bool {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		s.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
