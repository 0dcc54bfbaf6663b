package convo

import (
	"context"
	"encoding/json"
	"errors"

	"pairchat/internal/app/store"
	"pairchat/internal/pkg/errs"
)

// Log is the append-only, per-conversation message log, backed by a sorted
// set in the durable store scored by message timestamp.
//
// Append does not publish anything. The log is the durability source of
// truth; broadcasting is the caller's separate, best-effort step.
type Log struct {
	store store.Store
}

// NewLog returns a Log backed by the given store.
func NewLog(s store.Store) *Log {
	return &Log{store: s}
}

// Append validates the message and inserts it into the conversation's log
// scored by its timestamp. The sender must be one of the two participants
// encoded in chatID.
func (l *Log) Append(ctx context.Context, chatID string, msg Message) *errs.CustomError {
	if customErr := msg.Validate(); customErr != nil {
		return customErr
	}

	if _, _, customErr := Participants(chatID); customErr != nil {
		return customErr
	}

	if !IsParticipant(chatID, msg.SenderID) {
		return errs.NewError(errs.ErrNotParticipant)
	}

	raw, jsonErr := json.Marshal(msg)
	if jsonErr != nil {
		return errs.NewError(errs.ErrUnknown, jsonErr)
	}

	if err := l.store.ZAdd(ctx, store.MessagesKey(chatID), float64(msg.Timestamp), string(raw)); err != nil {
		return asCustom(err)
	}

	return nil
}

// Range returns the messages of the conversation between the start and stop
// positions in ascending-timestamp order. Negative indices count from the
// tail, so Range(ctx, id, 0, -1) is the whole log and Range(ctx, id, -1, -1)
// is the most recent message. A conversation with no messages yields an
// empty slice, never an error.
func (l *Log) Range(ctx context.Context, chatID string, start, stop int64) ([]Message, *errs.CustomError) {
	raws, err := l.store.ZRange(ctx, store.MessagesKey(chatID), start, stop)
	if err != nil {
		return nil, asCustom(err)
	}

	messages := make([]Message, 0, len(raws))
	for _, raw := range raws {
		var msg Message
		if jsonErr := json.Unmarshal([]byte(raw), &msg); jsonErr != nil {
			// A corrupt entry is skipped rather than poisoning the whole
			// conversation view.
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// asCustom passes store-level CustomErrors through and wraps anything else.
func asCustom(err error) *errs.CustomError {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		return customErr
	}
	return errs.NewError(errs.ErrUnknown, err)
}
