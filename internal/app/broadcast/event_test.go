package broadcast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/app/convo"
	"pairchat/internal/app/user"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		channel string
		event   Event
	}{
		{
			name:    "friend request",
			channel: RequestsChannel("bob"),
			event:   FriendRequestEvent{SenderID: "alice", SenderEmail: "alice@example.com"},
		},
		{
			name:    "new friend",
			channel: FriendsChannel("bob"),
			event:   NewFriendEvent{Friend: user.User{ID: "alice", Name: "Alice", Email: "alice@example.com"}},
		},
		{
			name:    "new message",
			channel: ConversationChannel("alice--bob"),
			event: NewMessageEvent{Message: convo.Message{
				ID:        "a81bc81b-dead-4e5d-abff-90865d1e13b1",
				SenderID:  "alice",
				Text:      "hello",
				Timestamp: 1700000000000,
			}},
		},
		{
			name:    "chat notification",
			channel: ChatsChannel("bob"),
			event: ChatNotificationEvent{
				ChatID:     "alice--bob",
				SenderName: "Alice",
				Message: convo.Message{
					ID:        "a81bc81b-dead-4e5d-abff-90865d1e13b1",
					SenderID:  "alice",
					Text:      "hello",
					Timestamp: 1700000000000,
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sealed, err := Seal(tc.channel, tc.event)
			require.NoError(t, err)
			assert.Equal(t, tc.channel, sealed.Channel)
			assert.Equal(t, tc.event.Name(), sealed.Event)

			// Across the wire and back.
			raw, err := json.Marshal(sealed)
			require.NoError(t, err)

			var received Envelope
			require.NoError(t, json.Unmarshal(raw, &received))

			opened, err := received.Open()
			require.NoError(t, err)
			assert.Equal(t, tc.event, opened)
		})
	}
}

func TestEnvelopeOpenUnknownEvent(t *testing.T) {
	envelope := Envelope{
		Channel: "user__bob__friends",
		Event:   "mystery_event",
		Payload: json.RawMessage(`{}`),
	}

	_, err := envelope.Open()
	assert.Error(t, err)
}
