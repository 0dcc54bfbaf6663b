package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims accepted by the server.
// Tokens are issued by the external identity provider; the server only verifies them
// and treats the embedded identity as authoritative. The server never issues
// credentials of its own.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the stable, opaque user identifier assigned by the identity provider.
	ID string `json:"id"`

	// Email is the unique email address of the account, used to resolve friend requests.
	Email string `json:"email"`

	// Name is the display name of the account at sign-in time.
	Name string `json:"name"`

	// AvatarRef is the object key of the account's avatar, if any.
	AvatarRef string `json:"avatarRef,omitempty"`
}
