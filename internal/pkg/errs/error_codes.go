/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 21xx: Friend Graph Business Logic Errors
const (
	// ErrUserNotFound indicates that the given email or user id does not resolve to a known account.
	ErrUserNotFound = 2101

	// ErrSelfReferential indicates an attempt to befriend or message oneself.
	ErrSelfReferential = 2102

	// ErrRequestAlreadyPending indicates that an identical friend request is already waiting for an answer.
	ErrRequestAlreadyPending = 2103

	// ErrAlreadyFriends indicates that a friendship between the two users already exists.
	ErrAlreadyFriends = 2104

	// ErrNoSuchRequest indicates that no pending friend request exists for the given sender.
	ErrNoSuchRequest = 2105

	// ErrNotFriends indicates that the two users are not friends, which the operation requires.
	ErrNotFriends = 2106
)

// 22xx: Conversation and Message Errors
const (
	// ErrEmptyMessage indicates that the message text was empty.
	ErrEmptyMessage = 2201

	// ErrMessageContentTooLong indicates that the message text exceeded the maximum length limit.
	ErrMessageContentTooLong = 2202

	// ErrInvalidMessage indicates that the message id or sender id was malformed.
	ErrInvalidMessage = 2203

	// ErrInvalidChatID indicates that the conversation identifier is not a well-formed sorted id pair.
	ErrInvalidChatID = 2204

	// ErrNotParticipant indicates that the caller is not one of the two participants of the conversation.
	ErrNotParticipant = 2205
)

// 23xx: Channel Subscription Errors
const (
	// ErrChannelForbidden indicates an attempt to subscribe to a channel the session does not own.
	ErrChannelForbidden = 2301

	// ErrInvalidChannel indicates a malformed or unrecognized channel name.
	ErrInvalidChannel = 2302
)

// 24xx: Avatar and File Errors
const (
	// ErrFileSizeTooLarge indicates that the uploaded file exceeded the size limit.
	ErrFileSizeTooLarge = 2401

	// ErrFileTypeInvalid indicates that the uploaded file type is not allowed.
	ErrFileTypeInvalid = 2402

	// ErrAvatarKeyInvalid indicates that the provided avatar object key does not belong to the caller.
	ErrAvatarKeyInvalid = 2403
)

// 3xxx: Identity and Security Errors
const (
	// ErrUnauthorized indicates that no verified identity accompanies the request.
	ErrUnauthorized = 3001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStoreUnavailable indicates a transient failure talking to the durable store.
	ErrStoreUnavailable = 5001

	// ErrFileStorageFailed indicates a failure talking to the object storage service.
	ErrFileStorageFailed = 5002
)
