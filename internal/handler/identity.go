package handler

import (
	"net/http"

	"pairchat/internal/app/user"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/resp"
)

// requireIdentity extracts the verified identity from the request and
// provisions its user record on first contact. It writes the Unauthorized
// response and returns nil when the caller is anonymous.
func requireIdentity(w http.ResponseWriter, r *http.Request, deps *AppDeps) *jwt.Payload {
	identity := jwt.GetPayloadFromContext(r)
	if identity == nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return nil
	}

	customErr := deps.Users.Ensure(r.Context(), user.User{
		ID:        identity.ID,
		Name:      identity.Name,
		Email:     identity.Email,
		AvatarRef: identity.AvatarRef,
	})
	if customErr != nil {
		resp.RespondError(w, r, customErr)
		return nil
	}

	return identity
}
