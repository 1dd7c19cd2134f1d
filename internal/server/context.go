package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/api/option"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/config"
	"github.com/teemow/calimport/internal/google"
	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
	"github.com/teemow/calimport/internal/sheet"
)

// Options configures a ServerContext.
type Options struct {
	Config        config.Config
	Authenticator *google.Authenticator
	Provider      *instrumentation.Provider
	Logger        *slog.Logger
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      config.Config
	loc      *time.Location
	auth     *google.Authenticator
	provider *instrumentation.Provider
	audit    *instrumentation.AuditLogger
	logger   *slog.Logger

	mu       sync.RWMutex
	clients  map[string]*calendar.Client // account name to Calendar client
	shutdown bool
}

// NewServerContext creates a new server context. Calendar clients are
// created lazily on first use of an account.
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	loc, err := opts.Config.Location()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	auditCfg := instrumentation.AuditLoggingConfig{Enabled: true}
	if opts.Provider != nil {
		auditCfg = opts.Provider.Config().AuditLogging
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		cfg:      opts.Config,
		loc:      loc,
		auth:     opts.Authenticator,
		provider: opts.Provider,
		audit:    instrumentation.NewAuditLoggerWithConfig(logger, auditCfg),
		logger:   logger,
		clients:  make(map[string]*calendar.Client),
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the loaded configuration.
func (sc *ServerContext) Config() config.Config {
	return sc.cfg
}

// Location returns the configured time zone.
func (sc *ServerContext) Location() *time.Location {
	return sc.loc
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder; nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.provider.Metrics()
}

// AuditLogger returns the audit logger.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// Authenticator returns the OAuth authenticator.
func (sc *ServerContext) Authenticator() *google.Authenticator {
	return sc.auth
}

// CalendarClientForAccount returns the Calendar client for account,
// creating and caching it on first use.
func (sc *ServerContext) CalendarClientForAccount(account string) (*calendar.Client, error) {
	sc.mu.RLock()
	client, ok := sc.clients[account]
	shutdown := sc.shutdown
	sc.mu.RUnlock()
	if shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}
	if ok {
		return client, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if client, ok := sc.clients[account]; ok {
		return client, nil
	}
	if sc.auth == nil {
		return nil, fmt.Errorf("no authenticator configured")
	}

	httpClient, err := sc.auth.HTTPClient(sc.ctx, account)
	if err != nil {
		return nil, err
	}
	client, err = calendar.NewClient(sc.ctx, account, sc.Metrics(), option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	sc.clients[account] = client
	return client, nil
}

// SheetsLoaderForAccount returns a Google Sheets loader authorized as account.
func (sc *ServerContext) SheetsLoaderForAccount(account string) (*sheet.SheetsLoader, error) {
	if sc.IsShutdown() {
		return nil, fmt.Errorf("server is shutting down")
	}
	if sc.auth == nil {
		return nil, fmt.Errorf("no authenticator configured")
	}
	httpClient, err := sc.auth.HTTPClient(sc.ctx, account)
	if err != nil {
		return nil, err
	}
	return sheet.NewSheetsLoader(sc.ctx, option.WithHTTPClient(httpClient))
}

// SetCalendarClientForAccount sets the Calendar client for a specific account
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.clients[account] = client
}

// CachedClients returns the number of cached calendar clients.
func (sc *ServerContext) CachedClients() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.clients)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and drops cached clients.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.clients = make(map[string]*calendar.Client)
	sc.cancel()
	return nil
}
