package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
)

// Authenticator hands out authenticated HTTP clients per account.
type Authenticator struct {
	config  *oauth2.Config
	store   TokenStore
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewAuthenticator creates an Authenticator. metrics and logger may be nil.
func NewAuthenticator(config *oauth2.Config, store TokenStore, metrics *instrumentation.Metrics, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Authenticator{
		config:  config,
		store:   store,
		metrics: metrics,
		logger:  logging.WithService(logger, "oauth"),
	}
}

// Store returns the token store.
func (a *Authenticator) Store() TokenStore {
	return a.store
}

// HasToken reports whether a token is stored for account.
func (a *Authenticator) HasToken(ctx context.Context, account string) bool {
	_, err := a.store.Load(ctx, account)
	return err == nil
}

// HTTPClient returns a client authorized as account. Expired access tokens
// are refreshed on use and the new token is saved to the store.
func (a *Authenticator) HTTPClient(ctx context.Context, account string) (*http.Client, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}
	tok, err := a.store.Load(ctx, account)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, fmt.Errorf("%w; run 'calimport auth login --account %s'", err, account)
		}
		return nil, err
	}
	ts := &persistingTokenSource{
		ctx:     ctx,
		base:    a.config.TokenSource(ctx, tok),
		store:   a.store,
		account: account,
		last:    tok.AccessToken,
		metrics: a.metrics,
		logger:  logging.WithAccount(a.logger, account),
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, ts)), nil
}

// AuthCodeURL returns the consent page URL. redirectURL overrides the
// configured redirect when set.
func (a *Authenticator) AuthCodeURL(state, redirectURL string) string {
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline, oauth2.ApprovalForce}
	if redirectURL != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", redirectURL))
	}
	return a.config.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for a token and stores it.
func (a *Authenticator) Exchange(ctx context.Context, account, code, redirectURL string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	var opts []oauth2.AuthCodeOption
	if redirectURL != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", redirectURL))
	}
	tok, err := a.config.Exchange(ctx, code, opts...)
	if err != nil {
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if err := a.store.Save(ctx, account, tok); err != nil {
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return err
	}
	a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	a.logger.Info("stored token", logging.Account(account))
	return nil
}

// persistingTokenSource saves every token that differs from the last one
// it saw, so refreshed tokens survive the process.
type persistingTokenSource struct {
	ctx     context.Context
	base    oauth2.TokenSource
	store   TokenStore
	account string
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.base.Token()
	if err != nil {
		result := instrumentation.OAuthResultFailure
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
			result = instrumentation.OAuthResultExpired
		}
		s.metrics.RecordOAuthTokenRefresh(s.ctx, result)
		s.logger.Warn("token refresh failed", logging.Err(err))
		return nil, fmt.Errorf("failed to refresh token for account %s: %w", s.account, err)
	}
	if tok.AccessToken == s.last {
		return tok, nil
	}

	s.metrics.RecordOAuthTokenRefresh(s.ctx, instrumentation.OAuthResultSuccess)
	s.last = tok.AccessToken
	s.logger.Debug("token refreshed",
		slog.String("access_token", logging.SanitizeToken(tok.AccessToken)),
		slog.Time("expiry", tok.Expiry))
	if err := s.store.Save(s.ctx, s.account, tok); err != nil {
		s.logger.Warn("failed to persist refreshed token", logging.Err(err))
	}
	return tok, nil
}
