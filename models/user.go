package models

// Role controls whether a user may be selected as a course's teacher
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Roles lists every role the portal can assign, in display order.
var Roles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// CanTeach reports whether a user with this role may appear in the
// teacher selector. Admins count as teachers.
func (r Role) CanTeach() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// User represents an account record held by the remote API. The
// password only exists on the create request and is never returned.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}
