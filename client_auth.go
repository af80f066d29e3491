package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrEthical07/storefront/route"
	"github.com/MrEthical07/storefront/session"
)

// Login authenticates against the service and persists the session. While
// one Login runs, others fail with ErrInFlight.
//
// Failures leave the previous session untouched. Service rejections match
// ErrInvalidCredentials, ErrAccountInactive, ErrAccountNotFound or
// ErrRateLimited under errors.Is; a failed local write matches
// ErrPersistence.
func (c *Client) Login(ctx context.Context, email, password string) (LoginOutcome, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginOutcome{}, ErrMissingCredentials
	}
	if !c.loginFlight.TryAcquire() {
		return LoginOutcome{}, ErrInFlight
	}
	defer c.loginFlight.Release()

	attempt := session.State{Profile: &session.Profile{Email: email}}
	start := time.Now()
	res, err := c.api.Authenticate(ctx, email, password)
	c.observe(MetricLoginLatency, start)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			c.metrics.Inc(MetricLoginRateLimited)
		} else {
			c.metrics.Inc(MetricLoginFailure)
		}
		c.logger.InfoContext(ctx, "login failed", slog.String("email", email), slog.Any("err", err))
		c.emitAudit(ctx, AuditEventLogin, attempt, err, nil)
		return LoginOutcome{}, err
	}

	if err := c.sessions.Login(ctx, res.Token, res.Profile, res.Role, res.Permissions); err != nil {
		if errors.Is(err, session.ErrPersistence) {
			err = fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		c.metrics.Inc(MetricLoginFailure)
		c.emitAudit(ctx, AuditEventLogin, attempt, err, nil)
		return LoginOutcome{}, err
	}

	st := c.sessions.State()
	c.metrics.Inc(MetricLoginSuccess)
	c.logger.InfoContext(ctx, "logged in",
		slog.String("user", customerID(st)), slog.String("role", res.Role.String()))
	c.emitAudit(ctx, AuditEventLogin, st, nil, nil)

	return LoginOutcome{
		Role:    res.Role,
		Home:    route.HomePath(res.Role),
		Profile: st.Profile,
		Message: res.Message,
	}, nil
}

// Logout clears the session together with the cart and wishlist, then
// navigates to the login location. Memory is cleared even when the storage
// delete fails; that failure is returned wrapped in ErrPersistence.
func (c *Client) Logout(ctx context.Context) error {
	st := c.sessions.State()
	err := c.sessions.Logout(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	c.metrics.Inc(MetricLogout)
	if st.Authenticated {
		c.emitAudit(ctx, AuditEventLogout, st, err, nil)
	}
	return err
}
