/*
Package convo implements conversations: the deterministic conversation
identifier and the append-only, timestamp-ordered message log.

A conversation exists implicitly. There is no creation step and no stored
conversation record; existence is "has at least one message", so nothing can
drift from the log.
*/
package convo

import (
	"strings"

	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/randx"
)

// idSeparator joins the two sorted participant ids into a conversation id.
const idSeparator = "--"

// ChatID returns the canonical conversation identifier for the two
// participants: their ids sorted lexicographically and joined by the
// separator. ChatID(a, b) == ChatID(b, a) for every pair.
func ChatID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + idSeparator + b
}

// Participants parses a conversation id back into its two participant ids.
// It returns an error for malformed ids, including unsorted pairs, empty
// participants, and self-conversations.
func Participants(chatID string) (string, string, *errs.CustomError) {
	a, b, found := strings.Cut(chatID, idSeparator)
	if !found || a == "" || b == "" {
		return "", "", errs.NewError(errs.ErrInvalidChatID)
	}

	if !randx.IsValidUserID(a) || !randx.IsValidUserID(b) {
		return "", "", errs.NewError(errs.ErrInvalidChatID)
	}

	if a >= b {
		return "", "", errs.NewError(errs.ErrInvalidChatID)
	}

	return a, b, nil
}

// IsParticipant reports whether userID is one of the conversation's two
// participants.
func IsParticipant(chatID, userID string) bool {
	a, b, customErr := Participants(chatID)
	if customErr != nil {
		return false
	}
	return userID == a || userID == b
}

// Partner returns the other participant of the conversation. The second
// result is false when userID is not a participant.
func Partner(chatID, userID string) (string, bool) {
	a, b, customErr := Participants(chatID)
	if customErr != nil {
		return "", false
	}

	switch userID {
	case a:
		return b, true
	case b:
		return a, true
	default:
		return "", false
	}
}
