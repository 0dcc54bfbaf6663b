/*
Package user contains the user record and the directory that resolves identities.

Accounts are created by the external identity provider; the directory only
materializes the provider's identity into the durable store on first contact
and resolves ids and email addresses afterwards. Records are never deleted.
*/
package user

import (
	"context"
	"encoding/json"
	"errors"

	"pairchat/internal/app/store"
	"pairchat/internal/pkg/errs"
)

// User represents the stored identity of an account.
type User struct {
	// ID is the opaque, stable identifier assigned by the identity provider.
	ID string `json:"id"`

	// Name is the display name of the account.
	Name string `json:"name"`

	// Email is the unique email address, used to address friend requests.
	Email string `json:"email"`

	// AvatarRef is the object-storage key of the account's avatar, if any.
	AvatarRef string `json:"avatarRef,omitempty"`
}

// Directory resolves and provisions user records in the durable store.
type Directory struct {
	store store.Store
}

// NewDirectory returns a Directory backed by the given store.
func NewDirectory(s store.Store) *Directory {
	return &Directory{store: s}
}

// ByID returns the user record for the given id.
// It returns ErrUserNotFound when no record exists.
func (d *Directory) ByID(ctx context.Context, id string) (*User, *errs.CustomError) {
	raw, err := d.store.Get(ctx, store.UserKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}
	if err != nil {
		return nil, asCustom(err)
	}

	var u User
	if jsonErr := json.Unmarshal([]byte(raw), &u); jsonErr != nil {
		return nil, errs.NewError(errs.ErrUnknown, jsonErr)
	}
	return &u, nil
}

// ByEmail resolves an email address to the user record it belongs to.
// It returns ErrUserNotFound when the email is unknown.
func (d *Directory) ByEmail(ctx context.Context, email string) (*User, *errs.CustomError) {
	id, err := d.store.Get(ctx, store.EmailKey(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}
	if err != nil {
		return nil, asCustom(err)
	}

	return d.ByID(ctx, id)
}

// Ensure provisions the record for a verified identity if it does not exist
// yet. Existing records keep their stored name and avatar; the operation is
// idempotent and safe to run on every authenticated request.
func (d *Directory) Ensure(ctx context.Context, u User) *errs.CustomError {
	_, err := d.store.Get(ctx, store.UserKey(u.ID))
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return asCustom(err)
	}

	raw, jsonErr := json.Marshal(u)
	if jsonErr != nil {
		return errs.NewError(errs.ErrUnknown, jsonErr)
	}

	if err := d.store.Set(ctx, store.UserKey(u.ID), string(raw)); err != nil {
		return asCustom(err)
	}
	if err := d.store.Set(ctx, store.EmailKey(u.Email), u.ID); err != nil {
		return asCustom(err)
	}

	return nil
}

// UpdateAvatar replaces the avatar reference on an existing record and
// returns the previous reference so the caller can clean up the old object.
func (d *Directory) UpdateAvatar(ctx context.Context, id, avatarRef string) (string, *errs.CustomError) {
	u, customErr := d.ByID(ctx, id)
	if customErr != nil {
		return "", customErr
	}

	previous := u.AvatarRef
	u.AvatarRef = avatarRef

	raw, jsonErr := json.Marshal(u)
	if jsonErr != nil {
		return "", errs.NewError(errs.ErrUnknown, jsonErr)
	}

	if err := d.store.Set(ctx, store.UserKey(id), string(raw)); err != nil {
		return "", asCustom(err)
	}

	return previous, nil
}

// asCustom passes store-level CustomErrors through and wraps anything else.
func asCustom(err error) *errs.CustomError {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		return customErr
	}
	return errs.NewError(errs.ErrUnknown, err)
}
