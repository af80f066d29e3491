package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/MrEthical07/storefront/jwt"
	"github.com/MrEthical07/storefront/permission"
)

var (
	// ErrInvalidSession is returned by Login when token, profile or role is missing.
	ErrInvalidSession = errors.New("session: token, profile and role are required")
	// ErrPersistence wraps storage failures while writing or clearing the session.
	ErrPersistence = errors.New("session: persistence failed")
)

// DefaultLoginPath is where Logout and Expire navigate when none is configured.
const DefaultLoginPath = "/login"

// ScopedStore is state bound to the logged-in identity. Its keys are deleted
// with the session keys on logout, and Reset clears its memory.
type ScopedStore interface {
	Keys() []string
	Reset()
}

// Observer is notified after every session transition.
type Observer func(ctx context.Context, st State)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithNavigator sets the navigator used by Logout and Expire.
func WithNavigator(n Navigator) Option {
	return func(m *Manager) {
		if n != nil {
			m.nav = n
		}
	}
}

// WithLoginPath overrides DefaultLoginPath.
func WithLoginPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.loginPath = path
		}
	}
}

// WithExpiredTokenCheck makes Hydrate discard persisted JWTs whose exp is
// older than leeway.
func WithExpiredTokenCheck(leeway time.Duration) Option {
	return func(m *Manager) {
		m.rejectExpired = true
		m.leeway = leeway
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager is the session state machine.
//
// Transitions (Hydrate, Login, Logout, Expire) are serialised; reads take a
// read lock and never touch storage.
type Manager struct {
	store *Store

	// opMu serialises transitions so storage writes land in call order.
	opMu sync.Mutex

	mu       sync.RWMutex
	state    State
	hydrated bool

	scoped    []ScopedStore
	observers []Observer

	nav           Navigator
	logger        *slog.Logger
	loginPath     string
	rejectExpired bool
	leeway        time.Duration
	now           func() time.Time
}

// NewManager returns a Manager in the Loading state.
func NewManager(store *Store, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		state:     loggedOut(true),
		nav:       noopNavigator{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		loginPath: DefaultLoginPath,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds identity-scoped stores cleared by Logout and Expire.
func (m *Manager) Register(stores ...ScopedStore) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.scoped = append(m.scoped, stores...)
}

// Subscribe adds an observer. Observers run after the transition, outside
// the state lock, in registration order. They must not start another
// transition.
func (m *Manager) Subscribe(fn Observer) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.observers = append(m.observers, fn)
}

// Hydrate loads the persisted session. It always leaves Loading false.
// Only the first call reads storage; later calls return the current state.
func (m *Manager) Hydrate(ctx context.Context) State {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.isHydrated() {
		return m.State()
	}

	next := loggedOut(false)
	rec, ok, err := m.store.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptRecord):
		m.logger.WarnContext(ctx, "session: discarding corrupt persisted session", slog.Any("err", err))
	case err != nil:
		m.logger.ErrorContext(ctx, "session: read persisted session", slog.Any("err", err))
	case !ok:
	case m.rejectExpired && jwt.ExpiredAt(rec.Token, m.now(), m.leeway):
		m.logger.InfoContext(ctx, "session: persisted token expired", slog.String("role", rec.Role.String()))
	default:
		next = State{
			Token:       rec.Token,
			Profile:     rec.Profile,
			Role:        rec.Role,
			Permissions: rec.Permissions,
		}.normalize()
	}

	m.mu.Lock()
	m.state = next
	m.hydrated = true
	m.mu.Unlock()

	m.notify(ctx, next)
	return snapshot(next)
}

// Login persists a new session and makes it current. On a storage failure
// the in-memory state is left as it was.
func (m *Manager) Login(ctx context.Context, token string, profile *Profile, role permission.Role, permissions string) error {
	if token == "" || profile == nil || !role.Valid() {
		return ErrInvalidSession
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	rec := Record{
		Token:       token,
		Profile:     cloneProfile(profile),
		Role:        role,
		Permissions: permissions,
	}
	if err := m.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	next := State{
		Token:       rec.Token,
		Profile:     rec.Profile,
		Role:        rec.Role,
		Permissions: rec.Permissions,
	}.normalize()

	m.mu.Lock()
	m.state = next
	m.hydrated = true
	m.mu.Unlock()

	m.notify(ctx, next)
	return nil
}

// Logout clears the session and every registered scoped store, then
// navigates to the login location. It is safe to call when logged out.
func (m *Manager) Logout(ctx context.Context) error {
	return m.clear(ctx, Location{Path: m.loginPath, Reason: ReasonLogout})
}

// Expire is Logout for a session the server rejected. The login location
// carries from so the user can resume there.
func (m *Manager) Expire(ctx context.Context, from string) error {
	return m.clear(ctx, Location{Path: m.loginPath, From: from, Reason: ReasonExpired})
}

// ExpireToken is Expire limited to the session that holds token. When token
// is no longer the current one nothing changes and expired is false.
func (m *Manager) ExpireToken(ctx context.Context, token, from string) (expired bool, err error) {
	m.opMu.Lock()
	if token == "" || token != m.Token() {
		m.opMu.Unlock()
		return false, nil
	}
	return true, m.clearLocked(ctx, Location{Path: m.loginPath, From: from, Reason: ReasonExpired})
}

func (m *Manager) clear(ctx context.Context, loc Location) error {
	m.opMu.Lock()
	return m.clearLocked(ctx, loc)
}

// clearLocked is called with opMu held and releases it before navigating.
func (m *Manager) clearLocked(ctx context.Context, loc Location) error {
	var extra []string
	for _, s := range m.scoped {
		extra = append(extra, s.Keys()...)
	}

	var result error
	if err := m.store.Clear(ctx, extra...); err != nil {
		m.logger.ErrorContext(ctx, "session: clear persisted state",
			slog.String("reason", loc.Reason.String()), slog.Any("err", err))
		result = fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	next := loggedOut(false)
	m.mu.Lock()
	m.state = next
	m.hydrated = true
	m.mu.Unlock()

	for _, s := range m.scoped {
		s.Reset()
	}
	m.notify(ctx, next)
	m.opMu.Unlock()

	m.nav.Navigate(ctx, loc)
	return result
}

// State returns a snapshot of the session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot(m.state)
}

// IsAuthenticated reports whether a session is active.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Authenticated
}

// CurrentRole returns the session role, RoleNone when logged out.
func (m *Manager) CurrentRole() permission.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Role
}

// Token returns the bearer token, "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token
}

func (m *Manager) isHydrated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hydrated
}

func (m *Manager) notify(ctx context.Context, st State) {
	for _, fn := range m.observers {
		fn(ctx, snapshot(st))
	}
}

func snapshot(s State) State {
	s.Profile = cloneProfile(s.Profile)
	return s
}
