package convo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/app/store"
	"pairchat/internal/pkg/errs"
)

func testMessage(sender, text string, ts int64) Message {
	return Message{
		ID:        uuid.NewString(),
		SenderID:  sender,
		Text:      text,
		Timestamp: ts,
	}
}

func TestLogAppendAndRange(t *testing.T) {
	ctx := context.Background()
	chatID := ChatID("alice", "bob")

	t.Run("empty conversation yields empty slice", func(t *testing.T) {
		log := NewLog(store.NewMemory())

		messages, customErr := log.Range(ctx, chatID, 0, -1)
		require.Nil(t, customErr)
		assert.Empty(t, messages)
	})

	t.Run("messages come back in timestamp order", func(t *testing.T) {
		log := NewLog(store.NewMemory())

		second := testMessage("alice", "second", 2000)
		first := testMessage("bob", "first", 1000)
		third := testMessage("alice", "third", 3000)

		require.Nil(t, log.Append(ctx, chatID, second))
		require.Nil(t, log.Append(ctx, chatID, first))
		require.Nil(t, log.Append(ctx, chatID, third))

		messages, customErr := log.Range(ctx, chatID, 0, -1)
		require.Nil(t, customErr)
		require.Len(t, messages, 3)
		assert.Equal(t, "first", messages[0].Text)
		assert.Equal(t, "second", messages[1].Text)
		assert.Equal(t, "third", messages[2].Text)
	})

	t.Run("equal timestamps keep insertion order", func(t *testing.T) {
		log := NewLog(store.NewMemory())

		a := testMessage("alice", "a", 1000)
		b := testMessage("bob", "b", 1000)
		c := testMessage("alice", "c", 1000)

		require.Nil(t, log.Append(ctx, chatID, a))
		require.Nil(t, log.Append(ctx, chatID, b))
		require.Nil(t, log.Append(ctx, chatID, c))

		messages, customErr := log.Range(ctx, chatID, 0, -1)
		require.Nil(t, customErr)
		require.Len(t, messages, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{messages[0].Text, messages[1].Text, messages[2].Text})
	})

	t.Run("negative range returns the latest message", func(t *testing.T) {
		log := NewLog(store.NewMemory())

		require.Nil(t, log.Append(ctx, chatID, testMessage("alice", "old", 1000)))
		require.Nil(t, log.Append(ctx, chatID, testMessage("bob", "new", 2000)))

		messages, customErr := log.Range(ctx, chatID, -1, -1)
		require.Nil(t, customErr)
		require.Len(t, messages, 1)
		assert.Equal(t, "new", messages[0].Text)
	})
}

func TestLogAppendRejections(t *testing.T) {
	ctx := context.Background()
	chatID := ChatID("alice", "bob")

	t.Run("empty text does not reach the store", func(t *testing.T) {
		mem := store.NewMemory()
		log := NewLog(mem)

		customErr := log.Append(ctx, chatID, testMessage("alice", "", 1000))
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrEmptyMessage, customErr.Code)

		messages, rangeErr := log.Range(ctx, chatID, 0, -1)
		require.Nil(t, rangeErr)
		assert.Empty(t, messages)
	})

	t.Run("non-participant sender is rejected", func(t *testing.T) {
		log := NewLog(store.NewMemory())

		customErr := log.Append(ctx, chatID, testMessage("mallory", "hi", 1000))
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrNotParticipant, customErr.Code)
	})

	t.Run("malformed chat id is rejected", func(t *testing.T) {
		log := NewLog(store.NewMemory())

		customErr := log.Append(ctx, "bob--alice", testMessage("alice", "hi", 1000))
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrInvalidChatID, customErr.Code)
	})
}
