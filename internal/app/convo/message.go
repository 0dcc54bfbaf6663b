package convo

import (
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/randx"
)

// MaxTextBytes is the maximum allowed size of a message text.
const MaxTextBytes = 5000

// Message is one immutable entry in a conversation log.
// Order within a conversation is defined by ascending Timestamp, ties kept
// in insertion order; a message is never mutated or deleted once appended.
type Message struct {
	// ID is the globally unique message identifier (UUID). It is the
	// deduplication key when historical and live data overlap.
	ID string `json:"id"`

	// SenderID is the id of the participant who sent the message.
	SenderID string `json:"senderId"`

	// Text is the message body. Never empty.
	Text string `json:"text"`

	// Timestamp is the sender-side creation time in Unix milliseconds and
	// the message's score in the log.
	Timestamp int64 `json:"timestamp"`
}

// Validate checks the wire shape of the message: well-formed id and sender
// id, non-empty text within the size limit.
func (m Message) Validate() *errs.CustomError {
	if !randx.IsValidMessageID(m.ID) {
		return errs.NewError(errs.ErrInvalidMessage)
	}

	if !randx.IsValidUserID(m.SenderID) {
		return errs.NewError(errs.ErrInvalidMessage)
	}

	if m.Text == "" {
		return errs.NewError(errs.ErrEmptyMessage)
	}

	if len(m.Text) > MaxTextBytes {
		return errs.NewError(errs.ErrMessageContentTooLong)
	}

	return nil
}
