package storefront

import "context"

type requestedLocationContextKey struct{}

// WithRequestedLocation records the location the user was on when ctx's
// work started. If the server rejects the session during that work, the
// forced logout carries it so the login screen can send the user back.
func WithRequestedLocation(ctx context.Context, location string) context.Context {
	return context.WithValue(ctx, requestedLocationContextKey{}, location)
}

func requestedLocationFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	location, _ := ctx.Value(requestedLocationContextKey{}).(string)
	return location
}
