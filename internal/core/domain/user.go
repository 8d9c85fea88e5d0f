package domain

import "strings"

// User models the authenticated operator as reported by the backend.
// Role is untrusted until it has been normalized by the session core.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Role     Role   `json:"role"`
	Active   bool   `json:"is_active"`
}

// Clone returns a copy that shares no state with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Credentials are the login inputs accepted by the backend.
type Credentials struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// UserPatch carries a partial profile update. Nil fields are left untouched.
// Role and active status are not patchable: they only change when the
// backend reports them.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// Apply merges the patch into a copy of u and returns it.
func (p UserPatch) Apply(u *User) *User {
	out := u.Clone()
	if out == nil {
		return nil
	}
	if p.Username != nil && strings.TrimSpace(*p.Username) != "" {
		out.Username = strings.TrimSpace(*p.Username)
	}
	if p.Email != nil {
		out.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	return out
}
