package models

// User roles as stored in the JWT role claim.
const (
	RoleCitizen = "citizen"
	RoleAdmin   = "admin"
)

// Identity is the verified caller identity attached to a request after token
// verification. A nil *Identity means the request is anonymous.
type Identity struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
	Role     string `json:"role"`
}

// IsAdmin is safe to call on a nil identity.
func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role == RoleAdmin
}
