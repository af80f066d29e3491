package storefront

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/storefront/api"
	"github.com/MrEthical07/storefront/cart"
	"github.com/MrEthical07/storefront/catalog"
	internalaudit "github.com/MrEthical07/storefront/internal/audit"
	"github.com/MrEthical07/storefront/kv"
	"github.com/MrEthical07/storefront/permission"
	"github.com/MrEthical07/storefront/route"
	"github.com/MrEthical07/storefront/session"
)

// Builder assembles a [Client]. A Builder builds once.
type Builder struct {
	config Config

	storage kv.Storage
	redis   redis.UniversalClient

	httpClient *http.Client
	logger     *slog.Logger
	navigator  session.Navigator
	auditSink  AuditSink
	table      *route.Table
	roles      *permission.RoleManager

	built bool
}

// New returns a Builder holding [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStorage sets durable storage directly. It excludes WithRedis.
func (b *Builder) WithStorage(s kv.Storage) *Builder {
	b.storage = s
	return b
}

// WithRedis stores client state in Redis under Config.Storage.Prefix.
// Without WithRedis or WithStorage the client keeps state in memory.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient replaces the default client built from Config.API.Timeout.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithNavigator receives the login location after logout and forced expiry.
func (b *Builder) WithNavigator(n session.Navigator) *Builder {
	b.navigator = n
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithRouteTable replaces [route.DefaultTable].
func (b *Builder) WithRouteTable(t route.Table) *Builder {
	b.table = &t
	return b
}

// WithRoleManager supplies the per-role permission fallbacks used when the
// service omits rightsPrivileges. Build freezes it.
func (b *Builder) WithRoleManager(rm *permission.RoleManager) *Builder {
	b.roles = rm
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the client. The returned
// client starts in the loading state; call [Client.Hydrate] before use.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.storage != nil && b.redis != nil {
		return nil, errors.New("WithStorage and WithRedis are mutually exclusive")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// -------- STORAGE --------
	storage := b.storage
	switch {
	case storage != nil:
	case b.redis != nil:
		storage = kv.NewRedisStorage(b.redis, cfg.Storage.Prefix)
	default:
		storage = kv.NewMemoryStorage(cfg.Storage.QuotaBytes)
	}

	// -------- ROLES & ROUTES --------
	roles := b.roles
	if roles == nil {
		roles = permission.NewRoleManager()
	}
	roles.Freeze()

	table := route.DefaultTable()
	if b.table != nil {
		table = *b.table
	}

	// -------- SESSION --------
	sessionOpts := []session.Option{
		session.WithLogger(logger),
		session.WithLoginPath(cfg.Session.LoginPath),
		session.WithNavigator(b.navigator),
	}
	if cfg.Session.RejectExpiredTokens {
		sessionOpts = append(sessionOpts, session.WithExpiredTokenCheck(cfg.Session.TokenLeeway))
	}
	sessions := session.NewManager(session.NewStore(storage), sessionOpts...)

	// -------- AUDIT --------
	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
		Logger:     logger,
	}, b.auditSink)

	c := &Client{
		config:   cfg,
		logger:   logger,
		sessions: sessions,
		cart:     cart.NewStore(storage, cart.WithLogger(logger)),
		table:    table,
		metrics:  NewMetrics(cfg.Metrics),
		audit:    dispatcher,
	}

	// -------- API --------
	hc := b.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.API.Timeout}
	}
	apiClient, err := api.New(cfg.API.BaseURL,
		api.WithHTTPClient(hc),
		api.WithTokenSource(api.TokenFunc(sessions.Token)),
		api.WithUnauthorizedHandler(c.handleUnauthorized),
		api.WithRoleManager(roles),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	c.api = apiClient
	c.catalog = catalog.New(apiClient, catalog.WithLogger(logger))

	sessions.Register(c.cart)
	sessions.Subscribe(c.bindCart)

	b.built = true

	return c, nil
}
