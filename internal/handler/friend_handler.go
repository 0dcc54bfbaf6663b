/*
Package handler provides the HTTP handlers and routing setup for the pairchat server.

This file contains the handlers for the friend-request state machine: sending,
accepting, and denying requests, plus the read side of the friend graph.
*/
package handler

import (
	"net/http"
	"net/mail"

	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/randx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

// RequestFriendInput is the request body for sending a friend request.
type RequestFriendInput struct {
	Email string `json:"email"`
}

// SenderInput is the request body for answering a friend request.
type SenderInput struct {
	SenderID string `json:"senderId"`
}

// HandleRequestFriend sends a friend request to the account owning the given email.
func HandleRequestFriend(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r, deps)
		if identity == nil {
			return
		}

		var input RequestFriendInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if _, err := mail.ParseAddress(input.Email); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		target, customErr := deps.Graph.Request(r.Context(), identity.ID, input.Email)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"targetId": target.ID,
		})
	}
}

// HandleAcceptFriend accepts a pending friend request from the given sender.
func HandleAcceptFriend(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r, deps)
		if identity == nil {
			return
		}

		var input SenderInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !randx.IsValidUserID(input.SenderID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if customErr := deps.Graph.Accept(r.Context(), identity.ID, input.SenderID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleDenyFriend denies a pending friend request from the given sender.
func HandleDenyFriend(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r, deps)
		if identity == nil {
			return
		}

		var input SenderInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !randx.IsValidUserID(input.SenderID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if customErr := deps.Graph.Deny(r.Context(), identity.ID, input.SenderID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleListFriends returns the caller's friends as resolved user records.
func HandleListFriends(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r, deps)
		if identity == nil {
			return
		}

		friends, customErr := deps.Graph.Friends(r.Context(), identity.ID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"friends": friends,
		})
	}
}

// HandleListRequests returns the senders of the caller's pending friend requests.
func HandleListRequests(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r, deps)
		if identity == nil {
			return
		}

		senders, customErr := deps.Graph.IncomingRequests(r.Context(), identity.ID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"requests": senders,
		})
	}
}
