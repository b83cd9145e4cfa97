package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/anadolubroker/sigorta-backend/pkg/enums"
)

// Actor is the authenticated identity attached to a request. Tokens are
// minted by the external identity service; this service only verifies
// them.
type Actor struct {
	UserID int64
	Role   enums.ActorRole
}

// AccessTokenClaims represents the typed JWT issued by the identity service.
type AccessTokenClaims struct {
	UserID int64           `json:"user_id"`
	Role   enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts the claims to the domain actor.
func (c *AccessTokenClaims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role}
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.ActorRoleAdmin
}

// IsAgent reports whether the actor holds the agent role.
func (a Actor) IsAgent() bool {
	return a.Role == enums.ActorRoleAgent
}

// IsCustomer reports whether the actor holds the customer role.
func (a Actor) IsCustomer() bool {
	return a.Role == enums.ActorRoleCustomer
}
