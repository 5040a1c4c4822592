// Package config provides configuration management for webtools.
package config

import (
	"errors"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Defaults.
const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 5000
	DefaultMaxUploadBytes = 8 * 1024 * 1024
	DefaultSessionDays    = 30
	DefaultPDFBackend     = "ledongthuc"

	// DefaultSecretKey signs session cookies when SECRET_KEY is unset.
	// Anyone who knows it can forge sessions; never run with it in production.
	DefaultSecretKey = "change-this-secret-key-please"
)

// Config holds the service settings. JSON keys match the environment
// variable names so settings.json and the environment read the same.
type Config struct {
	Host           string `json:"WEBTOOLS_HOST"`
	Port           int    `json:"WEBTOOLS_PORT"`
	SecretKey      string `json:"SECRET_KEY,omitempty"`
	MaxUploadBytes int64  `json:"WEBTOOLS_MAX_UPLOAD_BYTES"`
	SessionDays    int    `json:"WEBTOOLS_SESSION_DAYS"`
	CookieSecure   bool   `json:"WEBTOOLS_COOKIE_SECURE"`
	PDFBackend     string `json:"WEBTOOLS_PDF_BACKEND"`
	Debug          bool   `json:"WEBTOOLS_DEBUG"`
}

var (
	global     *Config
	globalOnce sync.Once
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		SecretKey:      DefaultSecretKey,
		MaxUploadBytes: DefaultMaxUploadBytes,
		SessionDays:    DefaultSessionDays,
		PDFBackend:     DefaultPDFBackend,
	}
}

// DataDir returns the data directory, $WEBTOOLS_DATA_DIR or ~/.webtools.
func DataDir() string {
	if dir := os.Getenv("WEBTOOLS_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".webtools")
}

// SettingsPath returns the path of the settings file.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.json")
}

// EnsureDataDir creates the data directory if needed.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0750)
}

// EnsureSettings writes a settings file with the defaults if none exists.
// The secret is left out so it is never written to disk by accident.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := Default()
	cfg.SecretKey = ""
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

// EnsureAll creates the data directory and settings file.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	return EnsureSettings()
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the environment. Variables already set are kept; missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load reads settings.json on top of the defaults and applies environment
// overrides. An unreadable or invalid settings file leaves the defaults in
// place.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(SettingsPath())
	switch {
	case err == nil:
		fileCfg := *cfg
		if jsonErr := json.Unmarshal(data, &fileCfg); jsonErr != nil {
			log.Warn().Err(jsonErr).Str("path", SettingsPath()).Msg("Invalid settings file, using defaults")
		} else {
			cfg = &fileCfg
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	applyEnv(cfg)
	cfg.normalize()
	return cfg, nil
}

// Get returns the process-wide configuration, loading it on first use.
func Get() *Config {
	globalOnce.Do(func() {
		global = loadOrDefault()
	})
	return global
}

// loadOrDefault is Load with the settings file ignored when it cannot be
// read. Environment overrides still apply.
func loadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		log.Warn().Err(err).Str("path", SettingsPath()).Msg("Failed to read settings file, using defaults")
		cfg = Default()
		applyEnv(cfg)
		cfg.normalize()
	}
	return cfg
}

// applyEnv overrides cfg with any valid environment variables.
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("WEBTOOLS_HOST")); v != "" {
		cfg.Host = v
	}
	if port, ok := envInt("WEBTOOLS_PORT"); ok && port < 65536 {
		cfg.Port = port
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if n, ok := envInt("WEBTOOLS_MAX_UPLOAD_BYTES"); ok {
		cfg.MaxUploadBytes = int64(n)
	}
	if n, ok := envInt("WEBTOOLS_SESSION_DAYS"); ok {
		cfg.SessionDays = n
	}
	if b, ok := envBool("WEBTOOLS_COOKIE_SECURE"); ok {
		cfg.CookieSecure = b
	}
	if v := strings.TrimSpace(os.Getenv("WEBTOOLS_PDF_BACKEND")); v != "" {
		cfg.PDFBackend = v
	}
	if b, ok := envBool("WEBTOOLS_DEBUG"); ok {
		cfg.Debug = b
	}
}

// normalize replaces out-of-range values from the settings file with defaults.
func (c *Config) normalize() {
	d := Default()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Port <= 0 || c.Port >= 65536 {
		c.Port = d.Port
	}
	if c.SecretKey == "" {
		c.SecretKey = d.SecretKey
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.SessionDays <= 0 {
		c.SessionDays = d.SessionDays
	}
	if c.PDFBackend == "" {
		c.PDFBackend = d.PDFBackend
	}
}

// envInt returns a positive integer environment variable.
func envInt(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func envBool(key string) (bool, bool) {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return false, false
	}
	return b, true
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SessionMaxAge returns the rolling session lifetime.
func (c *Config) SessionMaxAge() time.Duration {
	return time.Duration(c.SessionDays) * 24 * time.Hour
}

// InsecureSecret reports whether sessions are signed with the built-in
// default secret.
func (c *Config) InsecureSecret() bool {
	return c.SecretKey == "" || c.SecretKey == DefaultSecretKey
}
