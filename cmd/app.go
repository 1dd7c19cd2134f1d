package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"google.golang.org/api/option"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/config"
	"github.com/teemow/calimport/internal/google"
	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
	"github.com/teemow/calimport/internal/sheet"
)

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

var globals globalFlags

// app bundles what every command needs: configuration, logging,
// instrumentation and Google authorization.
type app struct {
	cfg      config.Config
	loc      *time.Location
	logger   *slog.Logger
	provider *instrumentation.Provider
	store    google.TokenStore

	auth    *google.Authenticator
	authErr error
}

// newApp loads the configuration and wires the shared collaborators. Log
// output goes to logOut. A missing OAuth client is not an error here; it is
// reported when a command needs Google access.
func newApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(globals.configPath, nil)
	if err != nil {
		return nil, err
	}
	if globals.logLevel != "" {
		cfg.Log.Level = globals.logLevel
	}
	if globals.logFormat != "" {
		cfg.Log.Format = globals.logFormat
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	provider, err := instrumentation.NewProvider(ctx, cfg.Instrumentation(version))
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	store, err := google.NewTokenStore(cfg.TokenStore.Type, cfg.TokenStore.Path)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	a := &app{
		cfg:      cfg,
		loc:      loc,
		logger:   logger,
		provider: provider,
		store:    store,
	}
	oauthCfg, err := google.LoadOAuthConfig(cfg.OAuthSettings())
	if err != nil {
		a.authErr = err
	} else {
		a.auth = google.NewAuthenticator(oauthCfg, store, provider.Metrics(), logger)
	}
	return a, nil
}

// authenticator returns the Google authenticator or the reason there is none.
func (a *app) authenticator() (*google.Authenticator, error) {
	if a.auth == nil {
		return nil, a.authErr
	}
	return a.auth, nil
}

func (a *app) metrics() *instrumentation.Metrics {
	return a.provider.Metrics()
}

func (a *app) auditLogger() *instrumentation.AuditLogger {
	return instrumentation.NewAuditLoggerWithConfig(a.logger, a.provider.Config().AuditLogging)
}

func (a *app) calendarClient(ctx context.Context, account string) (*calendar.Client, error) {
	auth, err := a.authenticator()
	if err != nil {
		return nil, err
	}
	httpClient, err := auth.HTTPClient(ctx, account)
	if err != nil {
		return nil, err
	}
	return calendar.NewClient(ctx, account, a.metrics(), option.WithHTTPClient(httpClient))
}

func (a *app) sheetsLoader(ctx context.Context, account string) (*sheet.SheetsLoader, error) {
	auth, err := a.authenticator()
	if err != nil {
		return nil, err
	}
	httpClient, err := auth.HTTPClient(ctx, account)
	if err != nil {
		return nil, err
	}
	return sheet.NewSheetsLoader(ctx, option.WithHTTPClient(httpClient))
}

// Close flushes telemetry and releases the token store.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if err := a.provider.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// closeApp is deferred by commands; shutdown errors are only logged.
func closeApp(a *app) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		a.logger.Warn("shutdown failed", logging.Err(err))
	}
}
