package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calimport/internal/instrumentation"
)

// isolate points the default config location at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, "HK", cfg.KeyPrefix)
	assert.Equal(t, "北海道札幌市", cfg.RegionPrefix)
	assert.Equal(t, "primary", cfg.Register.CalendarID)
	assert.True(t, cfg.Register.Private)
	assert.False(t, cfg.Register.AllDay)
	assert.Equal(t, []string{"holiday"}, cfg.Calendars.Exclude)
	assert.Equal(t, "file", cfg.TokenStore.Type)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoad_DefaultFileLocation(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "calimport"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calimport", "config.yaml"),
		[]byte("keyprefix: KK\n"), 0o600))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "KK", cfg.KeyPrefix)
}

func TestLoad_YAMLFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `timezone: Europe/Berlin
google:
  credentialsfile: /etc/calimport/credentials.json
tokenstore:
  type: sqlite
  path: /var/lib/calimport/tokens.db
register:
  calendarid: team@group.calendar.google.com
  allday: true
  descriptioncolumns:
    - 数量
    - 備考
calendars:
  exclude: [holiday, birthdays]
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "/etc/calimport/credentials.json", cfg.Google.CredentialsFile)
	assert.Equal(t, "sqlite", cfg.TokenStore.Type)
	assert.Equal(t, "team@group.calendar.google.com", cfg.Register.CalendarID)
	assert.True(t, cfg.Register.AllDay)
	assert.True(t, cfg.Register.Private, "defaults survive a partial section")
	assert.Equal(t, []string{"数量", "備考"}, cfg.Register.DescriptionColumns)
	assert.Equal(t, []string{"holiday", "birthdays"}, cfg.Calendars.Exclude)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "HK", cfg.KeyPrefix)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("register:\n  calendarid: from-file\n"), 0o600))

	t.Setenv("CALIMPORT_REGISTER_CALENDARID", "from-env")
	t.Setenv("CALIMPORT_REGISTER_PRIVATE", "false")
	t.Setenv("CALIMPORT_GOOGLE_CLIENTID", "client-id")
	t.Setenv("CALIMPORT_REGISTER_DESCRIPTIONCOLUMNS", "数量, 備考 ,")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Register.CalendarID)
	assert.False(t, cfg.Register.Private)
	assert.Equal(t, "client-id", cfg.Google.ClientID)
	assert.Equal(t, []string{"数量", "備考"}, cfg.Register.DescriptionColumns)
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err, "an explicit config file must exist")

	t.Setenv("CALIMPORT_TIMEZONE", "Mars/Olympus")
	_, err = Load("", nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.TokenStore.Type = "redis"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())
}

func TestInstrumentation(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	cfg := Default()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.TracingExporter = instrumentation.ExporterOTLP
	cfg.Telemetry.OTLPEndpoint = "collector:4318"

	ic := cfg.Instrumentation("1.2.3")
	assert.True(t, ic.Enabled)
	assert.Equal(t, "1.2.3", ic.ServiceVersion)
	assert.Equal(t, instrumentation.ExporterPrometheus, ic.MetricsExporter)
	assert.Equal(t, instrumentation.ExporterOTLP, ic.TracingExporter)
	assert.Equal(t, "collector:4318", ic.OTLPEndpoint)
	assert.NoError(t, ic.Validate())
}

func TestOAuthSettings(t *testing.T) {
	cfg := Default()
	cfg.Google.ClientID = "id"
	cfg.Google.ClientSecret = "secret"
	s := cfg.OAuthSettings()
	assert.Equal(t, "id", s.ClientID)
	assert.Equal(t, "secret", s.ClientSecret)
}
