package route

import (
	"sort"
	"strings"

	"github.com/MrEthical07/storefront/permission"
	"github.com/MrEthical07/storefront/session"
)

// Rule binds a path prefix to a requirement.
type Rule struct {
	Prefix      string
	Requirement Requirement
}

// Table is a static route configuration matched by longest path prefix.
// Paths matching no rule are public.
type Table struct {
	rules []Rule
}

// NewTable builds a table from rules.
func NewTable(rules ...Rule) Table {
	rs := make([]Rule, len(rules))
	copy(rs, rules)
	sort.SliceStable(rs, func(i, j int) bool {
		return len(rs[i].Prefix) > len(rs[j].Prefix)
	})
	return Table{rules: rs}
}

// DefaultTable gives each dashboard area to its role.
func DefaultTable() Table {
	return NewTable(
		Rule{Prefix: "/admin", Requirement: Requirement{Roles: []permission.Role{permission.RoleAdmin}}},
		Rule{Prefix: "/staff", Requirement: Requirement{Roles: []permission.Role{permission.RoleStaff}}},
		Rule{Prefix: "/user", Requirement: Requirement{Roles: []permission.Role{permission.RoleUser}}},
	)
}

// Match returns the requirement for path. ok is false for public paths.
func (t Table) Match(path string) (Requirement, bool) {
	for _, r := range t.rules {
		if matchPrefix(path, r.Prefix) {
			return r.Requirement, true
		}
	}
	return Requirement{}, false
}

// Authorize evaluates path against the table. Public paths are allowed
// regardless of session state.
func (t Table) Authorize(st session.State, path string) Decision {
	req, ok := t.Match(path)
	if !ok {
		return Decision{Kind: Allow, From: path, ActualRole: st.Role, ActualPermissions: st.Permissions}
	}
	return Authorize(st, req, path)
}

// matchPrefix matches on segment boundaries: "/user" matches "/user" and
// "/user/cart" but not "/users".
func matchPrefix(path, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/' || strings.HasSuffix(prefix, "/")
}

// HomePath returns the dashboard for role, or the login path for RoleNone.
func HomePath(role permission.Role) string {
	var v homeVisitor
	role.Visit(&v)
	return v.path
}

type homeVisitor struct{ path string }

func (h *homeVisitor) VisitNone()  { h.path = session.DefaultLoginPath }
func (h *homeVisitor) VisitAdmin() { h.path = "/admin/dashboard" }
func (h *homeVisitor) VisitStaff() { h.path = "/staff/dashboard" }
func (h *homeVisitor) VisitUser()  { h.path = "/user/dashboard" }
