/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 21xx: Friend Graph Business Logic Errors
	ErrUserNotFound:          {Code: ErrUserNotFound, Message: "This person does not exist.", Status: http.StatusNotFound},
	ErrSelfReferential:       {Code: ErrSelfReferential, Message: "You cannot add yourself as a friend.", Status: http.StatusBadRequest},
	ErrRequestAlreadyPending: {Code: ErrRequestAlreadyPending, Message: "You already sent this person a friend request.", Status: http.StatusConflict},
	ErrAlreadyFriends:        {Code: ErrAlreadyFriends, Message: "You are already friends with this person.", Status: http.StatusConflict},
	ErrNoSuchRequest:         {Code: ErrNoSuchRequest, Message: "No friend request from this person.", Status: http.StatusNotFound},
	ErrNotFriends:            {Code: ErrNotFriends, Message: "You can only message your friends.", Status: http.StatusForbidden},

	// 22xx: Conversation and Message Errors
	ErrEmptyMessage:          {Code: ErrEmptyMessage, Message: "Message text cannot be empty.", Status: http.StatusBadRequest},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},
	ErrInvalidMessage:        {Code: ErrInvalidMessage, Message: "Malformed message.", Status: http.StatusBadRequest},
	ErrInvalidChatID:         {Code: ErrInvalidChatID, Message: "Unknown conversation.", Status: http.StatusBadRequest},
	ErrNotParticipant:        {Code: ErrNotParticipant, Message: "You are not part of this conversation.", Status: http.StatusForbidden},

	// 23xx: Channel Subscription Errors
	ErrChannelForbidden: {Code: ErrChannelForbidden, Message: "You cannot listen on this channel.", Status: http.StatusForbidden},
	ErrInvalidChannel:   {Code: ErrInvalidChannel, Message: "Unknown channel.", Status: http.StatusBadRequest},

	// 24xx: Avatar and File Errors
	ErrFileSizeTooLarge: {Code: ErrFileSizeTooLarge, Message: "File is too large.", Status: http.StatusBadRequest},
	ErrFileTypeInvalid:  {Code: ErrFileTypeInvalid, Message: "Unsupported file type.", Status: http.StatusBadRequest},
	ErrAvatarKeyInvalid: {Code: ErrAvatarKeyInvalid, Message: "Invalid avatar.", Status: http.StatusBadRequest},

	// 3xxx: Identity and Security Errors
	ErrUnauthorized: {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStoreUnavailable:  {Code: ErrStoreUnavailable, Message: "Service is temporarily unavailable. Please try again.", Status: http.StatusServiceUnavailable},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusInternalServerError},
}
