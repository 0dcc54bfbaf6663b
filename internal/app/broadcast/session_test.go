package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/pkg/errs"
)

func TestSessionAuthorizeChannel(t *testing.T) {
	session := NewSession(nil, nil, "alice")

	t.Run("own user channels are allowed", func(t *testing.T) {
		for _, channel := range []string{
			RequestsChannel("alice"),
			FriendsChannel("alice"),
			ChatsChannel("alice"),
		} {
			assert.Nil(t, session.authorizeChannel(channel), "channel %q", channel)
		}
	})

	t.Run("another user's channels are rejected", func(t *testing.T) {
		for _, channel := range []string{
			RequestsChannel("bob"),
			FriendsChannel("bob"),
			ChatsChannel("bob"),
		} {
			customErr := session.authorizeChannel(channel)
			require.NotNil(t, customErr, "channel %q", channel)
			assert.Equal(t, errs.ErrChannelForbidden, customErr.Code, "channel %q", channel)
		}
	})

	t.Run("own conversations are allowed", func(t *testing.T) {
		assert.Nil(t, session.authorizeChannel(ConversationChannel("alice--bob")))
	})

	t.Run("foreign conversations are rejected", func(t *testing.T) {
		customErr := session.authorizeChannel(ConversationChannel("bob--carol"))
		require.NotNil(t, customErr)
		assert.Equal(t, errs.ErrChannelForbidden, customErr.Code)
	})

	t.Run("unknown channel shapes are rejected", func(t *testing.T) {
		for _, channel := range []string{"", "random", "chat__"} {
			customErr := session.authorizeChannel(channel)
			require.NotNil(t, customErr, "channel %q", channel)
			assert.Equal(t, errs.ErrInvalidChannel, customErr.Code, "channel %q", channel)
		}
	})
}
