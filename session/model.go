package session

import "github.com/MrEthical07/storefront/permission"

// Profile is the account record returned by the login endpoint.
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Designation string `json:"designation,omitempty"`
	Department  string `json:"department,omitempty"`
	Status      string `json:"status,omitempty"`
	Rights      string `json:"rightsPrivileges,omitempty"`
}

// State is a snapshot of the session.
//
// Authenticated holds exactly when Token is non-empty, Profile is non-nil and
// Role is not RoleNone. Snapshots handed out by Manager always satisfy this.
type State struct {
	Token         string
	Profile       *Profile
	Role          permission.Role
	Permissions   string
	Authenticated bool
	Loading       bool
}

// PermissionSet parses the permission tag.
func (s State) PermissionSet() permission.Set {
	return permission.ParseSet(s.Permissions)
}

// ProfileID returns the profile id, or "" when logged out.
func (s State) ProfileID() string {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.ID
}

func loggedOut(loading bool) State {
	return State{Loading: loading}
}

// normalize coerces s into a state that satisfies the authentication
// invariant. Anything partially populated collapses to logged out.
func (s State) normalize() State {
	if s.Token == "" || s.Profile == nil || !s.Role.Valid() {
		return loggedOut(s.Loading)
	}
	s.Authenticated = true
	return s
}

func cloneProfile(p *Profile) *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
