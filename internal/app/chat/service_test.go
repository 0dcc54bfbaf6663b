package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/app/broadcast"
	"pairchat/internal/app/convo"
	"pairchat/internal/app/store"
	"pairchat/internal/pkg/errs"
)

type fakeFriends struct {
	friends bool
}

func (f fakeFriends) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	return f.friends, nil
}

type recordingBroadcaster struct {
	channels []string
	events   []broadcast.Event
	fail     bool
}

func (b *recordingBroadcaster) Publish(ctx context.Context, channel string, event broadcast.Event) error {
	if b.fail {
		return errors.New("relay unreachable")
	}
	b.channels = append(b.channels, channel)
	b.events = append(b.events, event)
	return nil
}

func newService(friends bool, bcast *recordingBroadcaster) *Service {
	log := convo.NewLog(store.NewMemory())
	resolver := func(ctx context.Context, userID string) (string, error) {
		return "Display " + userID, nil
	}
	return NewService(log, fakeFriends{friends: friends}, bcast, resolver)
}

func TestServiceSend(t *testing.T) {
	ctx := context.Background()
	chatID := convo.ChatID("alice", "bob")

	t.Run("appends the message and fans out both events", func(t *testing.T) {
		bcast := &recordingBroadcaster{}
		svc := newService(true, bcast)

		msg, customErr := svc.Send(ctx, "alice", chatID, "hello")
		require.Nil(t, customErr)
		require.NotNil(t, msg)
		assert.Equal(t, "alice", msg.SenderID)
		assert.Equal(t, "hello", msg.Text)
		assert.NotEmpty(t, msg.ID)
		assert.Positive(t, msg.Timestamp)

		history, customErr := svc.History(ctx, "alice", chatID)
		require.Nil(t, customErr)
		require.Len(t, history, 1)
		assert.Equal(t, msg.ID, history[0].ID)

		require.Len(t, bcast.events, 2)
		assert.Equal(t, broadcast.ConversationChannel(chatID), bcast.channels[0])
		roomEvent, ok := bcast.events[0].(broadcast.NewMessageEvent)
		require.True(t, ok)
		assert.Equal(t, msg.ID, roomEvent.Message.ID)

		assert.Equal(t, broadcast.ChatsChannel("bob"), bcast.channels[1])
		notice, ok := bcast.events[1].(broadcast.ChatNotificationEvent)
		require.True(t, ok)
		assert.Equal(t, chatID, notice.ChatID)
		assert.Equal(t, "Display alice", notice.SenderName)
		assert.Equal(t, msg.ID, notice.Message.ID)
	})

	t.Run("non-friends cannot message", func(t *testing.T) {
		bcast := &recordingBroadcaster{}
		svc := newService(false, bcast)

		_, customErr := svc.Send(ctx, "alice", chatID, "hello")
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrNotFriends, customErr.Code)
		assert.Empty(t, bcast.events)
	})

	t.Run("sender must be a participant", func(t *testing.T) {
		svc := newService(true, &recordingBroadcaster{})

		_, customErr := svc.Send(ctx, "mallory", chatID, "hello")
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrNotParticipant, customErr.Code)
	})

	t.Run("malformed chat id is rejected", func(t *testing.T) {
		svc := newService(true, &recordingBroadcaster{})

		_, customErr := svc.Send(ctx, "alice", "bob--alice", "hello")
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrInvalidChatID, customErr.Code)
	})

	t.Run("broadcast failure does not fail the send", func(t *testing.T) {
		bcast := &recordingBroadcaster{fail: true}
		svc := newService(true, bcast)

		msg, customErr := svc.Send(ctx, "alice", chatID, "hello")
		require.Nil(t, customErr)
		require.NotNil(t, msg)

		// The durable write happened even though fan-out failed.
		history, customErr := svc.History(ctx, "alice", chatID)
		require.Nil(t, customErr)
		assert.Len(t, history, 1)
	})

	t.Run("empty text is rejected before the store", func(t *testing.T) {
		svc := newService(true, &recordingBroadcaster{})

		_, customErr := svc.Send(ctx, "alice", chatID, "")
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrEmptyMessage, customErr.Code)
	})
}

func TestServiceHistory(t *testing.T) {
	ctx := context.Background()
	chatID := convo.ChatID("alice", "bob")

	t.Run("non-participant cannot read", func(t *testing.T) {
		svc := newService(true, &recordingBroadcaster{})

		_, customErr := svc.History(ctx, "mallory", chatID)
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrNotParticipant, customErr.Code)
	})

	t.Run("untouched conversation yields empty history", func(t *testing.T) {
		svc := newService(true, &recordingBroadcaster{})

		history, customErr := svc.History(ctx, "alice", chatID)
		require.Nil(t, customErr)
		assert.Empty(t, history)
	})
}

func TestServiceLatestMessage(t *testing.T) {
	ctx := context.Background()
	chatID := convo.ChatID("alice", "bob")

	t.Run("returns the newest message", func(t *testing.T) {
		svc := newService(true, &recordingBroadcaster{})

		_, customErr := svc.Send(ctx, "alice", chatID, "older")
		require.Nil(t, customErr)
		newer, customErr := svc.Send(ctx, "bob", chatID, "newer")
		require.Nil(t, customErr)

		latest, customErr := svc.LatestMessage(ctx, "alice", chatID)
		require.Nil(t, customErr)
		require.NotNil(t, latest)
		assert.Equal(t, newer.ID, latest.ID)
	})

	t.Run("empty conversation yields nil", func(t *testing.T) {
		svc := newService(true, &recordingBroadcaster{})

		latest, customErr := svc.LatestMessage(ctx, "alice", chatID)
		require.Nil(t, customErr)
		assert.Nil(t, latest)
	})
}
