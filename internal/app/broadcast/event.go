package broadcast

import (
	"encoding/json"
	"fmt"

	"pairchat/internal/app/convo"
	"pairchat/internal/app/user"
)

// Event names carried in the wire envelope. Consumers dispatch on these.
const (
	EventFriendRequest    = "incoming_friend_request"
	EventNewFriend        = "new_friend"
	EventNewMessage       = "incoming_message"
	EventChatNotification = "new_message_notification"
)

// Event is a domain event deliverable over a channel. Each implementation is
// a tagged variant with a fixed field set; there are no free-form payloads.
type Event interface {
	// Name returns the event name used for wire tagging and dispatch.
	Name() string
}

// FriendRequestEvent notifies a user of a new incoming friend request.
type FriendRequestEvent struct {
	SenderID    string `json:"senderId"`
	SenderEmail string `json:"senderEmail"`
}

// Name implements Event.
func (FriendRequestEvent) Name() string { return EventFriendRequest }

// NewFriendEvent notifies a user that a friendship has been established.
type NewFriendEvent struct {
	Friend user.User `json:"friend"`
}

// Name implements Event.
func (NewFriendEvent) Name() string { return EventNewFriend }

// NewMessageEvent carries a newly appended message to the sessions watching
// its conversation.
type NewMessageEvent struct {
	Message convo.Message `json:"message"`
}

// Name implements Event.
func (NewMessageEvent) Name() string { return EventNewMessage }

// ChatNotificationEvent notifies a user of an unseen message in a
// conversation they are not currently viewing.
type ChatNotificationEvent struct {
	ChatID     string        `json:"chatId"`
	SenderName string        `json:"senderName"`
	Message    convo.Message `json:"message"`
}

// Name implements Event.
func (ChatNotificationEvent) Name() string { return EventChatNotification }

// Envelope is the wire form of an event: the channel it was published on,
// the event name, and the variant-specific payload.
type Envelope struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Seal wraps an event into its wire envelope for the given channel.
func Seal(channel string, event Event) (*Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.Name(), err)
	}

	return &Envelope{
		Channel: channel,
		Event:   event.Name(),
		Payload: payload,
	}, nil
}

// Open decodes the envelope's payload into its tagged variant.
// Unknown event names are an error; consumers never guess at payload shapes.
func (e *Envelope) Open() (Event, error) {
	switch e.Event {
	case EventFriendRequest:
		var ev FriendRequestEvent
		if err := json.Unmarshal(e.Payload, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Event, err)
		}
		return ev, nil

	case EventNewFriend:
		var ev NewFriendEvent
		if err := json.Unmarshal(e.Payload, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Event, err)
		}
		return ev, nil

	case EventNewMessage:
		var ev NewMessageEvent
		if err := json.Unmarshal(e.Payload, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Event, err)
		}
		return ev, nil

	case EventChatNotification:
		var ev ChatNotificationEvent
		if err := json.Unmarshal(e.Payload, &ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Event, err)
		}
		return ev, nil

	default:
		return nil, fmt.Errorf("unknown event %q", e.Event)
	}
}
