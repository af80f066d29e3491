package session

import (
	"context"
	"net/url"
)

// Reason says why the session navigated away.
type Reason uint8

const (
	// ReasonLogout is an explicit logout.
	ReasonLogout Reason = iota
	// ReasonExpired is a forced logout after the server rejected the token.
	ReasonExpired
)

func (r Reason) String() string {
	if r == ReasonExpired {
		return "expired"
	}
	return "logout"
}

// Location is a navigation target.
// From is the location the user originally asked for; the login screen
// resumes there after a successful login.
type Location struct {
	Path   string
	From   string
	Reason Reason
}

// String renders the location as a path with a redirect query when From is set.
func (l Location) String() string {
	if l.From == "" {
		return l.Path
	}
	return l.Path + "?" + url.Values{"redirect": {l.From}}.Encode()
}

// Navigator moves the application to a location.
type Navigator interface {
	Navigate(ctx context.Context, loc Location)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, loc Location)

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, loc Location) { f(ctx, loc) }

type noopNavigator struct{}

func (noopNavigator) Navigate(context.Context, Location) {}
