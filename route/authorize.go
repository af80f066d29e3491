package route

import (
	"slices"

	"github.com/MrEthical07/storefront/permission"
	"github.com/MrEthical07/storefront/session"
)

// Kind is the outcome of Authorize.
type Kind uint8

const (
	// Wait means the session is still hydrating; show a loading indicator.
	Wait Kind = iota
	// Allow renders the route.
	Allow
	// RedirectLogin sends an unauthenticated user to the login screen.
	RedirectLogin
	// RedirectUnauthorized sends an authenticated user to the not-authorized screen.
	RedirectUnauthorized
)

func (k Kind) String() string {
	switch k {
	case Wait:
		return "wait"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Requirement restricts a route. A nil or empty slice means the check is not set.
type Requirement struct {
	Roles       []permission.Role
	Permissions []string
}

// IsZero reports whether r imposes only authentication.
func (r Requirement) IsZero() bool {
	return len(r.Roles) == 0 && len(r.Permissions) == 0
}

// Decision is the guard's verdict for one navigation.
//
// Redirect decisions carry enough context for the target screen to explain
// itself: where the user was going, what the route needed and what the
// session had.
type Decision struct {
	Kind Kind
	From string

	RequiredRoles       []permission.Role
	RequiredPermissions []string
	ActualRole          permission.Role
	ActualPermissions   string
}

// Authorize evaluates req against st for a navigation to from.
func Authorize(st session.State, req Requirement, from string) Decision {
	if st.Loading {
		return Decision{Kind: Wait, From: from}
	}
	if !st.Authenticated {
		return Decision{Kind: RedirectLogin, From: from}
	}

	deny := Decision{
		Kind:                RedirectUnauthorized,
		From:                from,
		RequiredRoles:       slices.Clone(req.Roles),
		RequiredPermissions: slices.Clone(req.Permissions),
		ActualRole:          st.Role,
		ActualPermissions:   st.Permissions,
	}

	if len(req.Roles) > 0 && !slices.Contains(req.Roles, st.Role) {
		return deny
	}
	if len(req.Permissions) > 0 && !st.PermissionSet().Any(req.Permissions...) {
		return deny
	}

	return Decision{
		Kind:              Allow,
		From:              from,
		ActualRole:        st.Role,
		ActualPermissions: st.Permissions,
	}
}
