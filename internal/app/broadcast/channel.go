/*
Package broadcast implements the fan-out side of the application.

Domain events (friend requests, new friendships, chat messages, unseen-message
notices) are published to named channels. Delivery is best effort: sessions
currently subscribed to a channel receive the event, disconnected sessions
catch up from the durable log on their next historical fetch.
*/
package broadcast

import "strings"

// separatorSubstitute replaces the store's key separator in channel names.
// The relay treats ":" as reserved, so raw store keys are never used as
// channel names directly.
const separatorSubstitute = "__"

// ChannelName transforms a raw key-style name into a collision-safe channel name.
func ChannelName(raw string) string {
	return strings.ReplaceAll(raw, ":", separatorSubstitute)
}

// RequestsChannel is the per-user channel carrying incoming friend requests.
func RequestsChannel(userID string) string {
	return ChannelName("user:" + userID + ":incoming_friend_requests")
}

// FriendsChannel is the per-user channel carrying new-friendship notices.
func FriendsChannel(userID string) string {
	return ChannelName("user:" + userID + ":friends")
}

// ChatsChannel is the per-user channel carrying cross-conversation
// unseen-message notices.
func ChatsChannel(userID string) string {
	return ChannelName("user:" + userID + ":chats")
}

// ConversationChannel is the per-conversation channel carrying in-room messages.
func ConversationChannel(chatID string) string {
	return ChannelName("chat:" + chatID)
}

// ConversationID extracts the conversation id from a conversation channel
// name. The second result is false when the channel is not a conversation
// channel.
func ConversationID(channel string) (string, bool) {
	chatID, ok := strings.CutPrefix(channel, "chat"+separatorSubstitute)
	if !ok || chatID == "" {
		return "", false
	}
	return chatID, true
}
