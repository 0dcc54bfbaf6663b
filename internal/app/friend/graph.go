/*
Package friend manages the friendship graph and its request state machine.

Per ordered pair (requester, target) the states are NONE, PENDING, and
FRIENDS. PENDING is directional (requester to target); FRIENDS is symmetric
and stored as two membership facts that are always created together. A
pending request and a friendship between the same pair are mutually
exclusive.

Every mutation is a set operation, idempotent under re-application, so two
racing identical transitions both succeed without corrupting state and any
transition can be retried after a partial failure.
*/
package friend

import (
	"context"

	"github.com/rs/zerolog"

	"pairchat/internal/app/broadcast"
	"pairchat/internal/app/store"
	"pairchat/internal/app/user"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
)

// Graph exposes the friend-request state machine over the durable store.
type Graph struct {
	store  store.Store
	users  *user.Directory
	bcast  broadcast.Broadcaster
	logger zerolog.Logger
}

// NewGraph returns a Graph over the given store, user directory, and broadcaster.
func NewGraph(s store.Store, users *user.Directory, bcast broadcast.Broadcaster) *Graph {
	graphLogger := logx.Logger().With().Str("component", "friend.Graph").Logger()

	return &Graph{
		store:  s,
		users:  users,
		bcast:  bcast,
		logger: graphLogger,
	}
}

// Request sends a friend request from requester to the account owning
// targetEmail. It resolves the email, rejects self-referential and duplicate
// requests, records the pending request, and notifies the target's request
// channel. The returned User is the resolved target.
//
// A repeated identical call hits ErrRequestAlreadyPending, leaving exactly
// one pending entry.
func (g *Graph) Request(ctx context.Context, requesterID, targetEmail string) (*user.User, *errs.CustomError) {
	target, customErr := g.users.ByEmail(ctx, targetEmail)
	if customErr != nil {
		return nil, customErr
	}

	if target.ID == requesterID {
		return nil, errs.NewError(errs.ErrSelfReferential)
	}

	pending, err := g.store.SIsMember(ctx, store.IncomingRequestsKey(target.ID), requesterID)
	if err != nil {
		return nil, asCustom(err)
	}
	if pending {
		return nil, errs.NewError(errs.ErrRequestAlreadyPending)
	}

	friends, err := g.AreFriends(ctx, requesterID, target.ID)
	if err != nil {
		return nil, asCustom(err)
	}
	if friends {
		return nil, errs.NewError(errs.ErrAlreadyFriends)
	}

	if err := g.store.SAdd(ctx, store.IncomingRequestsKey(target.ID), requesterID); err != nil {
		return nil, asCustom(err)
	}

	requester, customErr := g.users.ByID(ctx, requesterID)
	if customErr != nil {
		return nil, customErr
	}

	g.publish(ctx, broadcast.RequestsChannel(target.ID), broadcast.FriendRequestEvent{
		SenderID:    requester.ID,
		SenderEmail: requester.Email,
	})

	return target, nil
}

// Accept turns the pending request from requesterID into a friendship.
// Both halves of the friend edge are written before the pending entry is
// removed, so a crash mid-transition leaves at most a stale pending entry
// that the next retry clears. Both parties are notified on their friends
// channels.
func (g *Graph) Accept(ctx context.Context, accepterID, requesterID string) *errs.CustomError {
	friends, err := g.AreFriends(ctx, accepterID, requesterID)
	if err != nil {
		return asCustom(err)
	}
	if friends {
		return errs.NewError(errs.ErrAlreadyFriends)
	}

	pending, err := g.store.SIsMember(ctx, store.IncomingRequestsKey(accepterID), requesterID)
	if err != nil {
		return asCustom(err)
	}
	if !pending {
		return errs.NewError(errs.ErrNoSuchRequest)
	}

	if err := g.store.SAdd(ctx, store.FriendsKey(accepterID), requesterID); err != nil {
		return asCustom(err)
	}
	if err := g.store.SAdd(ctx, store.FriendsKey(requesterID), accepterID); err != nil {
		return asCustom(err)
	}
	if err := g.store.SRem(ctx, store.IncomingRequestsKey(accepterID), requesterID); err != nil {
		return asCustom(err)
	}

	accepter, customErr := g.users.ByID(ctx, accepterID)
	if customErr != nil {
		return customErr
	}
	requester, customErr := g.users.ByID(ctx, requesterID)
	if customErr != nil {
		return customErr
	}

	g.publish(ctx, broadcast.FriendsChannel(accepterID), broadcast.NewFriendEvent{Friend: *requester})
	g.publish(ctx, broadcast.FriendsChannel(requesterID), broadcast.NewFriendEvent{Friend: *accepter})

	return nil
}

// Deny discards the pending request from requesterID without creating a
// friendship. No event is emitted; the denier's own view updates locally.
func (g *Graph) Deny(ctx context.Context, denierID, requesterID string) *errs.CustomError {
	pending, err := g.store.SIsMember(ctx, store.IncomingRequestsKey(denierID), requesterID)
	if err != nil {
		return asCustom(err)
	}
	if !pending {
		return errs.NewError(errs.ErrNoSuchRequest)
	}

	if err := g.store.SRem(ctx, store.IncomingRequestsKey(denierID), requesterID); err != nil {
		return asCustom(err)
	}

	return nil
}

// AreFriends reports whether a friendship exists between the two users.
func (g *Graph) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	return g.store.SIsMember(ctx, store.FriendsKey(userID), otherID)
}

// Friends returns the resolved user records of all the user's friends.
func (g *Graph) Friends(ctx context.Context, userID string) ([]user.User, *errs.CustomError) {
	return g.resolveMembers(ctx, store.FriendsKey(userID))
}

// IncomingRequests returns the resolved user records of every sender with a
// pending request addressed to the user.
func (g *Graph) IncomingRequests(ctx context.Context, userID string) ([]user.User, *errs.CustomError) {
	return g.resolveMembers(ctx, store.IncomingRequestsKey(userID))
}

// resolveMembers loads a set of user ids and resolves each to its record.
// Members whose record has vanished are skipped rather than failing the
// whole listing.
func (g *Graph) resolveMembers(ctx context.Context, key string) ([]user.User, *errs.CustomError) {
	ids, err := g.store.SMembers(ctx, key)
	if err != nil {
		return nil, asCustom(err)
	}

	users := make([]user.User, 0, len(ids))
	for _, id := range ids {
		u, customErr := g.users.ByID(ctx, id)
		if customErr != nil {
			if customErr.Code == errs.ErrUserNotFound {
				g.logger.Warn().Str("user_id", id).Msg("Set member has no user record. Skipping.")
				continue
			}
			return nil, customErr
		}
		users = append(users, *u)
	}

	return users, nil
}

// publish sends the event best-effort. A broadcast failure after a durable
// write is delivery degradation, not an operation failure: subscribed
// sessions may miss the push, but the next historical fetch reconciles them.
func (g *Graph) publish(ctx context.Context, channel string, event broadcast.Event) {
	if err := g.bcast.Publish(ctx, channel, event); err != nil {
		g.logger.Warn().
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
