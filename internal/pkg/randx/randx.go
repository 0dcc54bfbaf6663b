/*
Package randx provides functions for generating and validating unique identifiers.

It is primarily used to generate standard UUID message identifiers and to check
that identifiers arriving on the wire are well formed before acceptance.
*/
package randx

import (
	"strings"

	"github.com/google/uuid"
)

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// IsValidMessageID checks if the given string parses as a UUID.
func IsValidMessageID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// IsValidUserID checks if the given string is acceptable as an opaque user identifier.
// User ids come from the external identity provider, so the only structural
// requirements are non-emptiness and the absence of the conversation separator.
func IsValidUserID(id string) bool {
	if id == "" {
		return false
	}

	return !strings.Contains(id, "--") && !strings.ContainsAny(id, " \t\n")
}
