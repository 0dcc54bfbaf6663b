package broadcast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"pairchat/internal/pkg/logx"
)

const inboundChannelBuffer = 1024

// pubsubConn is the slice of the Redis pub/sub connection the hub drives.
// *redis.PubSub satisfies it.
type pubsubConn interface {
	Subscribe(ctx context.Context, channels ...string) error
	Unsubscribe(ctx context.Context, channels ...string) error
	Close() error
	Channel(opts ...redis.ChannelOption) <-chan *redis.Message
}

// subscription pairs a session with a channel it wants to enter or leave.
type subscription struct {
	session *Session
	channel string
}

// Hub routes published events to the WebSocket sessions of this server
// instance.
//
// It keeps one Redis pub/sub connection and mirrors its subscription set to
// the union of all session subscriptions: a Redis channel is subscribed when
// its first session arrives and unsubscribed when its last session leaves.
// All bookkeeping happens in the Run loop, so the maps need no locking.
type Hub struct {
	// sessions tracks every live session's subscription set.
	sessions map[*Session]map[string]struct{}

	// channels maps a channel name to the sessions subscribed to it.
	channels map[string]map[*Session]struct{}

	register    chan *Session
	unregister  chan *Session
	subscribe   chan subscription
	unsubscribe chan subscription

	pubsub pubsubConn

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger zerolog.Logger
}

// NewHub constructs a Hub over the given Redis client. Call Run to start it.
func NewHub(client *redis.Client) *Hub {
	return newHub(client.Subscribe(context.Background()))
}

func newHub(pubsub pubsubConn) *Hub {
	hubLogger := logx.Logger().With().Str("component", "Hub").Logger()

	return &Hub{
		sessions:    make(map[*Session]map[string]struct{}),
		channels:    make(map[string]map[*Session]struct{}),
		register:    make(chan *Session),
		unregister:  make(chan *Session, 16),
		subscribe:   make(chan subscription, 64),
		unsubscribe: make(chan subscription, 64),
		pubsub:      pubsub,
		stopChan:    make(chan struct{}),
		logger:      hubLogger,
	}
}

// Run starts the hub event loop. It blocks until Shutdown is called.
func (h *Hub) Run() {
	h.wg.Add(1)
	defer h.wg.Done()

	h.logger.Info().Msg("Hub event loop started.")

	inbound := h.pubsub.Channel(redis.WithChannelSize(inboundChannelBuffer))

	for {
		select {
		case session := <-h.register:
			h.sessions[session] = make(map[string]struct{})
			h.logger.Info().
				Str("user_id", session.userID).
				Int("total_sessions", len(h.sessions)).
				Msg("Session registered.")

		case session := <-h.unregister:
			h.dropSession(session)

		case sub := <-h.subscribe:
			h.addSubscription(sub)

		case sub := <-h.unsubscribe:
			h.removeSubscription(sub)

		case msg, ok := <-inbound:
			if !ok {
				h.logger.Warn().Msg("Redis pub/sub channel closed. Stopping hub loop.")
				return
			}
			h.deliver(msg.Channel, []byte(msg.Payload))

		case <-h.stopChan:
			h.logger.Info().Msg("Hub stop requested.")
			return
		}
	}
}

// addSubscription enters the session into the channel, subscribing the
// Redis side when the channel gains its first session. Re-subscribing an
// already-entered channel is a no-op.
func (h *Hub) addSubscription(sub subscription) {
	subs, ok := h.sessions[sub.session]
	if !ok {
		// Session already torn down; nothing to track.
		return
	}

	if _, exists := subs[sub.channel]; exists {
		return
	}
	subs[sub.channel] = struct{}{}

	members, ok := h.channels[sub.channel]
	if !ok {
		members = make(map[*Session]struct{})
		h.channels[sub.channel] = members

		if err := h.pubsub.Subscribe(context.Background(), sub.channel); err != nil {
			h.logger.Error().Err(err).Str("channel", sub.channel).Msg("Redis subscribe failed.")
		}
	}
	members[sub.session] = struct{}{}

	h.logger.Info().
		Str("user_id", sub.session.userID).
		Str("channel", sub.channel).
		Int("channel_sessions", len(members)).
		Msg("Session subscribed to channel.")
}

// removeSubscription removes the session from the channel, unsubscribing
// the Redis side when the channel loses its last session.
func (h *Hub) removeSubscription(sub subscription) {
	if subs, ok := h.sessions[sub.session]; ok {
		delete(subs, sub.channel)
	}

	members, ok := h.channels[sub.channel]
	if !ok {
		return
	}
	delete(members, sub.session)

	if len(members) == 0 {
		delete(h.channels, sub.channel)

		if err := h.pubsub.Unsubscribe(context.Background(), sub.channel); err != nil {
			h.logger.Error().Err(err).Str("channel", sub.channel).Msg("Redis unsubscribe failed.")
		}
	}
}

// dropSession removes the session and every subscription it still holds.
// A session that disconnects without unsubscribing must not keep receiving
// events; a leaked subscription is a resource bug, not a cosmetic one.
func (h *Hub) dropSession(session *Session) {
	subs, ok := h.sessions[session]
	if !ok {
		return
	}

	for channel := range subs {
		h.removeSubscription(subscription{session: session, channel: channel})
	}
	delete(h.sessions, session)

	// A session is closed exactly once: it leaves h.sessions in the same
	// step, so no later path can reach its queue.
	close(session.send)

	h.logger.Info().
		Str("user_id", session.userID).
		Int("total_sessions", len(h.sessions)).
		Msg("Session dropped.")
}

// deliver forwards a published envelope to every session subscribed to the
// channel. A session with a full send queue is dropped rather than allowed
// to stall the loop.
func (h *Hub) deliver(channel string, payload []byte) {
	members, ok := h.channels[channel]
	if !ok {
		return
	}

	var envelope Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		h.logger.Warn().Err(err).Str("channel", channel).Msg("Dropping malformed envelope.")
		return
	}

	for session := range members {
		select {
		case session.send <- payload:
		default:
			h.logger.Warn().
				Str("user_id", session.userID).
				Str("channel", channel).
				Msg("Session send queue full. Dropping session.")
			h.dropSession(session)
		}
	}
}

// RegisterSession queues the session for registration.
func (h *Hub) RegisterSession(session *Session) {
	select {
	case h.register <- session:
	case <-h.stopChan:
	}
}

// Shutdown stops the event loop, closes the Redis subscription, and tears
// down every remaining session queue.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
	h.wg.Wait()

	if err := h.pubsub.Close(); err != nil {
		h.logger.Error().Err(err).Msg("Failed to close Redis pub/sub connection.")
	}

	for session := range h.sessions {
		close(session.send)
		delete(h.sessions, session)
	}

	h.logger.Info().Msg("Hub shutdown complete.")
}
