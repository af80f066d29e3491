package permission

import (
	"errors"
	"strings"
)

// ErrUnknownRole is returned by ParseRole for a tag outside the role set.
var ErrUnknownRole = errors.New("unknown role")

// Role is the closed set of account kinds the API issues sessions for.
// The zero value is RoleNone.
type Role uint8

const (
	// RoleNone marks the absence of a session.
	RoleNone Role = iota
	// RoleAdmin is an administrator account.
	RoleAdmin
	// RoleStaff is a staff account.
	RoleStaff
	// RoleUser is a customer account.
	RoleUser
)

// RoleVisitor dispatches on a Role. Implementations must handle every role,
// so adding a role breaks every visitor at compile time.
type RoleVisitor interface {
	VisitNone()
	VisitAdmin()
	VisitStaff()
	VisitUser()
}

// Visit calls the visitor method matching r. Out-of-range values visit None.
func (r Role) Visit(v RoleVisitor) {
	switch r {
	case RoleAdmin:
		v.VisitAdmin()
	case RoleStaff:
		v.VisitStaff()
	case RoleUser:
		v.VisitUser()
	default:
		v.VisitNone()
	}
}

// String returns the wire tag ("ADMIN", "STAFF", "USER", "NONE").
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "ADMIN"
	case RoleStaff:
		return "STAFF"
	case RoleUser:
		return "USER"
	default:
		return "NONE"
	}
}

// Valid reports whether r names an account kind (anything but RoleNone).
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff || r == RoleUser
}

// ParseRole maps a wire tag to a Role. Matching is case-insensitive.
// "NONE" and "" parse to RoleNone without error.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADMIN":
		return RoleAdmin, nil
	case "STAFF":
		return RoleStaff, nil
	case "USER":
		return RoleUser, nil
	case "", "NONE":
		return RoleNone, nil
	default:
		return RoleNone, ErrUnknownRole
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
