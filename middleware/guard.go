package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MrEthical07/storefront/permission"
	"github.com/MrEthical07/storefront/route"
	"github.com/MrEthical07/storefront/session"
)

// Default redirect targets.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// StateSource supplies the current session snapshot.
type StateSource interface {
	State() session.State
}

type decisionContextKey struct{}

// DecisionFromContext returns the decision that admitted the request.
func DecisionFromContext(ctx context.Context) (route.Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(route.Decision)
	return d, ok
}

// Guard enforces req for every request.
func Guard(src StateSource, req route.Requirement) func(http.Handler) http.Handler {
	return guard(src, func(st session.State, path string) route.Decision {
		return route.Authorize(st, req, path)
	})
}

// GuardTable enforces tbl, keyed by request path.
func GuardTable(src StateSource, tbl route.Table) func(http.Handler) http.Handler {
	return guard(src, tbl.Authorize)
}

// RequireRole admits sessions holding any of roles.
func RequireRole(src StateSource, roles ...permission.Role) func(http.Handler) http.Handler {
	return Guard(src, route.Requirement{Roles: roles})
}

// RequirePermission admits sessions holding any of perms.
func RequirePermission(src StateSource, perms ...string) func(http.Handler) http.Handler {
	return Guard(src, route.Requirement{Permissions: perms})
}

func guard(src StateSource, decide func(session.State, string) route.Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if src == nil {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			from := r.URL.RequestURI()
			d := decide(src.State(), r.URL.Path)
			d.From = from

			switch d.Kind {
			case route.Allow:
				ctx := context.WithValue(r.Context(), decisionContextKey{}, d)
				next.ServeHTTP(w, r.WithContext(ctx))
			case route.RedirectLogin:
				http.Redirect(w, r, LoginPath+"?"+url.Values{"redirect": {from}}.Encode(), http.StatusFound)
			case route.RedirectUnauthorized:
				http.Redirect(w, r, UnauthorizedPath, http.StatusFound)
			default:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session loading", http.StatusServiceUnavailable)
			}
		})
	}
}
