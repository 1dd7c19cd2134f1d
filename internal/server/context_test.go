package server

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/config"
	"github.com/teemow/calimport/internal/google"
)

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()
	store := &google.FileTokenStore{Dir: filepath.Join(t.TempDir(), "tokens")}
	auth := google.NewAuthenticator(&oauth2.Config{ClientID: "id"}, store, nil, nil)

	sc, err := NewServerContext(context.Background(), Options{
		Config:        config.Default(),
		Authenticator: auth,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestServerContext_Basics(t *testing.T) {
	sc := newTestServerContext(t)

	assert.Equal(t, "Asia/Tokyo", sc.Location().String())
	assert.Nil(t, sc.Metrics())
	assert.NotNil(t, sc.AuditLogger())
	assert.NotNil(t, sc.Logger())
	assert.False(t, sc.IsShutdown())
}

func TestServerContext_InvalidTimezone(t *testing.T) {
	cfg := config.Default()
	cfg.Timezone = "Nowhere/Special"
	_, err := NewServerContext(context.Background(), Options{Config: cfg})
	assert.Error(t, err)
}

func TestServerContext_CalendarClientCache(t *testing.T) {
	sc := newTestServerContext(t)

	_, err := sc.CalendarClientForAccount("work")
	require.Error(t, err, "no token stored yet")
	assert.Contains(t, err.Error(), "auth login")

	client, err := calendar.NewClient(context.Background(), "work", nil, option.WithHTTPClient(http.DefaultClient))
	require.NoError(t, err)
	sc.SetCalendarClientForAccount("work", client)

	got, err := sc.CalendarClientForAccount("work")
	require.NoError(t, err)
	assert.Same(t, client, got)
}

func TestServerContext_CalendarClientFromStoredToken(t *testing.T) {
	sc := newTestServerContext(t)
	require.NoError(t, sc.Authenticator().Store().Save(context.Background(), "default",
		&oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}))

	first, err := sc.CalendarClientForAccount("default")
	require.NoError(t, err)
	second, err := sc.CalendarClientForAccount("default")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, "default", first.Account())
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)
	require.NoError(t, sc.Shutdown())
	require.NoError(t, sc.Shutdown())

	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())
	_, err := sc.CalendarClientForAccount("default")
	assert.Error(t, err)
}
