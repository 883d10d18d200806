package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles. Values outside the set are
// rejected when decoded, so a Role held by a User is always valid.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole converts s into a Role, failing for anything outside the set.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleAdmin:
		return r, nil
	default:
		return "", NewValidationError(fmt.Sprintf("unknown role %q", s))
	}
}

func (r Role) String() string { return string(r) }

// UnmarshalText validates roles arriving in request bodies. An empty value
// is left unset so the server-side default applies.
func (r *Role) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = ""
		return nil
	}
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is an account. PasswordHash is only populated by lookups that need it
// (login) and is never serialized.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UpdateProfileParams defines the fields allowed for profile updates.
// Pointers distinguish "not provided" from an empty value.
type UpdateProfileParams struct {
	Bio            *string `json:"bio,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
	Username       *string `json:"username,omitempty"`
}

// IsEmpty reports whether no field was provided.
func (p UpdateProfileParams) IsEmpty() bool {
	return p.Bio == nil && p.ProfilePicture == nil && p.Username == nil
}
