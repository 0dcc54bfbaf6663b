package store

// Key conventions for the durable store. Nothing outside this file
// concatenates key strings, so a convention change stays local.

// UserKey is the scalar key holding the JSON user record.
func UserKey(userID string) string {
	return "user:" + userID
}

// EmailKey is the scalar key mapping a unique email address to a user id.
func EmailKey(email string) string {
	return "user:email:" + email
}

// FriendsKey is the set key holding the ids of a user's friends.
func FriendsKey(userID string) string {
	return "user:" + userID + ":friends"
}

// IncomingRequestsKey is the set key holding the sender ids of pending
// friend requests addressed to the user.
func IncomingRequestsKey(userID string) string {
	return "user:" + userID + ":incoming_friend_requests"
}

// MessagesKey is the sorted-set key holding a conversation's message log,
// scored by message timestamp.
func MessagesKey(chatID string) string {
	return "chat:" + chatID + ":messages"
}
