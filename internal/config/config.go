// Package config loads calimport settings from struct defaults, an
// optional YAML file and CALIMPORT_ environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/teemow/calimport/internal/google"
	"github.com/teemow/calimport/internal/instrumentation"
	"github.com/teemow/calimport/internal/logging"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CALIMPORT_"

type Config struct {
	Timezone     string     `koanf:"timezone"`
	KeyPrefix    string     `koanf:"keyprefix"`
	RegionPrefix string     `koanf:"regionprefix"`
	Google       Google     `koanf:"google"`
	TokenStore   TokenStore `koanf:"tokenstore"`
	Register     Register   `koanf:"register"`
	Calendars    Calendars  `koanf:"calendars"`
	Log          Log        `koanf:"log"`
	Telemetry    Telemetry  `koanf:"telemetry"`
}

type Google struct {
	CredentialsFile string `koanf:"credentialsfile"`
	ClientID        string `koanf:"clientid"`
	ClientSecret    string `koanf:"clientsecret"`
}

type TokenStore struct {
	Type string `koanf:"type"`
	Path string `koanf:"path"`
}

type Register struct {
	CalendarID         string   `koanf:"calendarid"`
	AllDay             bool     `koanf:"allday"`
	Private            bool     `koanf:"private"`
	DescriptionColumns []string `koanf:"descriptioncolumns"`
}

type Calendars struct {
	Exclude []string `koanf:"exclude"`
}

type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type Telemetry struct {
	Enabled         bool    `koanf:"enabled"`
	MetricsExporter string  `koanf:"metricsexporter"`
	TracingExporter string  `koanf:"tracingexporter"`
	OTLPEndpoint    string  `koanf:"otlpendpoint"`
	OTLPInsecure    bool    `koanf:"otlpinsecure"`
	SamplingRate    float64 `koanf:"samplingrate"`
	MetricsAddr     string  `koanf:"metricsaddr"`
}

// listKeys are split on commas when they come from the environment.
var listKeys = map[string]bool{
	"register.descriptioncolumns": true,
	"calendars.exclude":           true,
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Timezone:     "Asia/Tokyo",
		KeyPrefix:    "HK",
		RegionPrefix: "北海道札幌市",
		TokenStore:   TokenStore{Type: google.StoreFile},
		Register: Register{
			CalendarID: "primary",
			Private:    true,
		},
		Calendars: Calendars{Exclude: []string{"holiday"}},
		Log:       Log{Level: "info", Format: logging.FormatText},
		Telemetry: Telemetry{
			Enabled:         false,
			MetricsExporter: instrumentation.ExporterPrometheus,
			TracingExporter: instrumentation.ExporterNone,
			SamplingRate:    0.1,
		},
	}
}

// DefaultPath returns the config file looked up when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "calimport", "config.yaml")
}

// Load reads the configuration. A missing file is fine when path is empty
// and the default location is used; an explicitly named file must exist.
func Load(path string, logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("error loading config defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				logger.Debug("config file not found, using defaults and environment", slog.String("path", path))
			} else {
				return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
			}
		} else {
			logger.Debug("loaded configuration", slog.String("path", path))
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_", ".")
			if listKeys[key] {
				return key, splitList(value)
			}
			return key, value
		},
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("error loading config from environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	return cfg, cfg.Validate()
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.TokenStore.Type {
	case "", google.StoreFile, google.StoreSQLite:
	default:
		return fmt.Errorf("invalid tokenstore.type %q, must be file or sqlite", c.TokenStore.Type)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured IANA time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// OAuthSettings returns the Google OAuth client settings.
func (c Config) OAuthSettings() google.OAuthSettings {
	return google.OAuthSettings{
		CredentialsFile: c.Google.CredentialsFile,
		ClientID:        c.Google.ClientID,
		ClientSecret:    c.Google.ClientSecret,
	}
}

// Instrumentation maps the telemetry section onto the instrumentation
// config, keeping the OTEL_ environment defaults for unset values.
func (c Config) Instrumentation(version string) instrumentation.Config {
	ic := instrumentation.DefaultConfig()
	ic.ServiceVersion = version
	ic.Enabled = c.Telemetry.Enabled
	if c.Telemetry.MetricsExporter != "" {
		ic.MetricsExporter = c.Telemetry.MetricsExporter
	}
	if c.Telemetry.TracingExporter != "" {
		ic.TracingExporter = c.Telemetry.TracingExporter
	}
	if c.Telemetry.OTLPEndpoint != "" {
		ic.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	}
	ic.OTLPInsecure = ic.OTLPInsecure || c.Telemetry.OTLPInsecure
	if c.Telemetry.SamplingRate > 0 {
		ic.TraceSamplingRate = c.Telemetry.SamplingRate
	}
	return ic
}
