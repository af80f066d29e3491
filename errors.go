package storefront

import (
	"errors"

	"github.com/MrEthical07/storefront/api"
	"github.com/MrEthical07/storefront/session"
)

// Authentication failures, shared with package api so errors.Is works on
// either.
var (
	ErrInvalidCredentials = api.ErrInvalidCredentials
	ErrAccountInactive    = api.ErrAccountInactive
	ErrAccountNotFound    = api.ErrAccountNotFound
	ErrRateLimited        = api.ErrRateLimited
	ErrNetwork            = api.ErrNetwork
	ErrInvalidSession     = session.ErrInvalidSession
)

var (
	// ErrMissingCredentials is returned by Login before any request when
	// email or password is blank.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrSessionExpired is returned when the server rejected the session
	// token. The session has already been cleared.
	ErrSessionExpired = errors.New("session expired")
	// ErrPersistence wraps local storage failures. In-memory state is left
	// as it was before the failed write.
	ErrPersistence = errors.New("local persistence failed")
	// ErrNotAuthenticated is returned by customer actions while logged out.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotCustomer is returned by cart and checkout actions for ADMIN and
	// STAFF sessions.
	ErrNotCustomer = errors.New("cart is only available to customers")
	// ErrUnknownProduct is returned for product ids missing from the catalog.
	ErrUnknownProduct = errors.New("unknown product")
	ErrEmptyCart      = errors.New("cart is empty")
	// ErrInFlight is returned when the same action is already running.
	ErrInFlight = errors.New("action already in progress")
	// ErrOrderRejected is a checkout the service answered with success=false.
	ErrOrderRejected = errors.New("order rejected")
	// ErrStockFeedDisabled is returned by WatchStock without a StockFeedURL.
	ErrStockFeedDisabled = errors.New("stock feed not configured")
)
