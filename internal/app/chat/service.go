/*
Package chat orchestrates the send-message flow: relationship checks, the
durable append, and the best-effort fan-out that follows it.
*/
package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"pairchat/internal/app/broadcast"
	"pairchat/internal/app/convo"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/randx"
)

// FriendshipChecker reports whether two users are friends. Satisfied by
// friend.Graph.
type FriendshipChecker interface {
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
}

// UserResolver resolves a user id to its display name for notification
// payloads. Satisfied by user.Directory through a small adapter in the
// handler wiring.
type UserResolver func(ctx context.Context, userID string) (string, error)

// Service implements the user-facing conversation operations.
type Service struct {
	log      *convo.Log
	friends  FriendshipChecker
	bcast    broadcast.Broadcaster
	resolver UserResolver
	logger   zerolog.Logger
}

// NewService returns a Service over the given log, friendship checker, and broadcaster.
func NewService(log *convo.Log, friends FriendshipChecker, bcast broadcast.Broadcaster, resolver UserResolver) *Service {
	serviceLogger := logx.Logger().With().Str("component", "chat.Service").Logger()

	return &Service{
		log:      log,
		friends:  friends,
		bcast:    bcast,
		resolver: resolver,
		logger:   serviceLogger,
	}
}

// Send appends a message from senderID to the conversation and fans it out.
//
// The append is the durability point: once it succeeds the operation
// succeeds, even if one or both broadcasts fail. Broadcast failures degrade
// live delivery only and are logged, never surfaced as an operation error.
func (s *Service) Send(ctx context.Context, senderID, chatID, text string) (*convo.Message, *errs.CustomError) {
	partnerID, ok := convo.Partner(chatID, senderID)
	if !ok {
		if _, _, customErr := convo.Participants(chatID); customErr != nil {
			return nil, customErr
		}
		return nil, errs.NewError(errs.ErrNotParticipant)
	}

	friends, err := s.friends.AreFriends(ctx, senderID, partnerID)
	if err != nil {
		return nil, asCustom(err)
	}
	if !friends {
		return nil, errs.NewError(errs.ErrNotFriends)
	}

	msg := convo.Message{
		ID:        randx.MessageID(),
		SenderID:  senderID,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}

	if customErr := s.log.Append(ctx, chatID, msg); customErr != nil {
		return nil, customErr
	}

	s.publish(ctx, broadcast.ConversationChannel(chatID), broadcast.NewMessageEvent{Message: msg})

	senderName := senderID
	if s.resolver != nil {
		if name, resolveErr := s.resolver(ctx, senderID); resolveErr == nil {
			senderName = name
		}
	}

	s.publish(ctx, broadcast.ChatsChannel(partnerID), broadcast.ChatNotificationEvent{
		ChatID:     chatID,
		SenderName: senderName,
		Message:    msg,
	})

	return &msg, nil
}

// History returns the full message log of the conversation for one of its
// participants, oldest first. An untouched conversation yields an empty
// slice.
func (s *Service) History(ctx context.Context, callerID, chatID string) ([]convo.Message, *errs.CustomError) {
	if _, _, customErr := convo.Participants(chatID); customErr != nil {
		return nil, customErr
	}

	if !convo.IsParticipant(chatID, callerID) {
		return nil, errs.NewError(errs.ErrNotParticipant)
	}

	return s.log.Range(ctx, chatID, 0, -1)
}

// LatestMessage returns the most recent message of the conversation, or nil
// when the conversation has none.
func (s *Service) LatestMessage(ctx context.Context, callerID, chatID string) (*convo.Message, *errs.CustomError) {
	if !convo.IsParticipant(chatID, callerID) {
		return nil, errs.NewError(errs.ErrNotParticipant)
	}

	messages, customErr := s.log.Range(ctx, chatID, -1, -1)
	if customErr != nil {
		return nil, customErr
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[0], nil
}

// publish sends the event best-effort and logs delivery degradation.
func (s *Service) publish(ctx context.Context, channel string, event broadcast.Event) {
	if err := s.bcast.Publish(ctx, channel, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("channel", channel).
			Str("event", event.Name()).
			Msg("Live delivery degraded: broadcast failed after durable write.")
	}
}

// asCustom passes store-level CustomErrors through and wraps anything else.
func asCustom(err error) *errs.CustomError {
	customErr, ok := err.(*errs.CustomError)
	if ok {
		return customErr
	}
	return errs.NewError(errs.ErrUnknown, err)
}
