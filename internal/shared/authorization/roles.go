package authorization

// UserRole is the coarse role carried in an access token. The API knows
// exactly two: admins operate the plan management surface, everyone
// else is a regular user.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// IsAdmin reports whether the role grants access to the admin surface.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}
