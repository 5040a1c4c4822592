// Package config provides configuration management for webtools.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// envKeys are cleared before each test so the host environment cannot leak in.
var envKeys = []string{
	"WEBTOOLS_DATA_DIR", "WEBTOOLS_HOST", "WEBTOOLS_PORT", "SECRET_KEY",
	"WEBTOOLS_MAX_UPLOAD_BYTES", "WEBTOOLS_SESSION_DAYS", "WEBTOOLS_COOKIE_SECURE",
	"WEBTOOLS_PDF_BACKEND", "WEBTOOLS_DEBUG",
}

// ConfigSuite is a test suite for config operations.
type ConfigSuite struct {
	suite.Suite
	tempDir string
}

func (s *ConfigSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
	s.T().Setenv("HOME", s.tempDir)
	for _, key := range envKeys {
		s.T().Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) writeSettings(content string) {
	s.Require().NoError(os.MkdirAll(filepath.Join(s.tempDir, ".webtools"), 0750))
	s.Require().NoError(os.WriteFile(filepath.Join(s.tempDir, ".webtools", "settings.json"), []byte(content), 0600))
}

// TestDefault tests default configuration values.
func (s *ConfigSuite) TestDefault() {
	cfg := Default()

	s.Equal("0.0.0.0", cfg.Host)
	s.Equal(5000, cfg.Port)
	s.Equal(int64(8*1024*1024), cfg.MaxUploadBytes)
	s.Equal(30, cfg.SessionDays)
	s.Equal("ledongthuc", cfg.PDFBackend)
	s.Equal(DefaultSecretKey, cfg.SecretKey)
	s.False(cfg.CookieSecure)
	s.False(cfg.Debug)
	s.True(cfg.InsecureSecret())
}

func (s *ConfigSuite) TestPaths() {
	s.Equal(filepath.Join(s.tempDir, ".webtools"), DataDir())
	s.Equal(filepath.Join(s.tempDir, ".webtools", "settings.json"), SettingsPath())

	custom := filepath.Join(s.tempDir, "elsewhere")
	s.T().Setenv("WEBTOOLS_DATA_DIR", custom)
	s.Equal(custom, DataDir())
}

// TestEnsureAll tests full initialization.
func (s *ConfigSuite) TestEnsureAll() {
	s.NoError(EnsureAll())

	info, err := os.Stat(DataDir())
	s.Require().NoError(err)
	s.True(info.IsDir())

	data, err := os.ReadFile(SettingsPath())
	s.Require().NoError(err)
	s.NotContains(string(data), "SECRET_KEY")

	var written Config
	s.Require().NoError(json.Unmarshal(data, &written))
	s.Equal(DefaultPort, written.Port)

	// Second call keeps the existing file.
	s.writeSettings(`{"WEBTOOLS_PORT": 7000}`)
	s.NoError(EnsureAll())
	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(7000, cfg.Port)
}

// TestLoad_TableDriven tests configuration loading with various scenarios.
func (s *ConfigSuite) TestLoad_TableDriven() {
	tests := []struct {
		name        string
		settings    string
		wantPort    int
		wantBackend string
		wantDays    int
	}{
		{name: "no settings file", settings: "", wantPort: 5000, wantBackend: "ledongthuc", wantDays: 30},
		{name: "custom port", settings: `{"WEBTOOLS_PORT": 8080}`, wantPort: 8080, wantBackend: "ledongthuc", wantDays: 30},
		{name: "custom backend", settings: `{"WEBTOOLS_PDF_BACKEND": "rsc"}`, wantPort: 5000, wantBackend: "rsc", wantDays: 30},
		{name: "multiple settings", settings: `{"WEBTOOLS_PORT": 9000, "WEBTOOLS_SESSION_DAYS": 7}`, wantPort: 9000, wantBackend: "ledongthuc", wantDays: 7},
		{name: "out of range values", settings: `{"WEBTOOLS_PORT": -1, "WEBTOOLS_SESSION_DAYS": 0}`, wantPort: 5000, wantBackend: "ledongthuc", wantDays: 30},
		{name: "invalid JSON returns defaults", settings: `{invalid}`, wantPort: 5000, wantBackend: "ledongthuc", wantDays: 30},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			os.Remove(SettingsPath())
			if tt.settings != "" {
				s.writeSettings(tt.settings)
			}

			cfg, err := Load()
			s.NoError(err)
			s.Require().NotNil(cfg)
			s.Equal(tt.wantPort, cfg.Port)
			s.Equal(tt.wantBackend, cfg.PDFBackend)
			s.Equal(tt.wantDays, cfg.SessionDays)
		})
	}
}

func (s *ConfigSuite) TestLoad_EnvOverridesFile() {
	s.writeSettings(`{"WEBTOOLS_PORT": 8080, "WEBTOOLS_HOST": "127.0.0.1"}`)
	s.T().Setenv("WEBTOOLS_PORT", "9999")
	s.T().Setenv("SECRET_KEY", "from-env")
	s.T().Setenv("WEBTOOLS_COOKIE_SECURE", "true")
	s.T().Setenv("WEBTOOLS_MAX_UPLOAD_BYTES", "1024")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(9999, cfg.Port)
	s.Equal("127.0.0.1", cfg.Host)
	s.Equal("from-env", cfg.SecretKey)
	s.False(cfg.InsecureSecret())
	s.True(cfg.CookieSecure)
	s.Equal(int64(1024), cfg.MaxUploadBytes)
	s.Equal("127.0.0.1:9999", cfg.Addr())
}

func (s *ConfigSuite) TestLoad_InvalidEnvIgnored() {
	s.T().Setenv("WEBTOOLS_PORT", "not-a-number")
	s.T().Setenv("WEBTOOLS_SESSION_DAYS", "0")
	s.T().Setenv("WEBTOOLS_DEBUG", "maybe")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(DefaultPort, cfg.Port)
	s.Equal(DefaultSessionDays, cfg.SessionDays)
	s.False(cfg.Debug)
}

func (s *ConfigSuite) TestLoad_EmptySecretInFileFallsBack() {
	s.writeSettings(`{"SECRET_KEY": ""}`)

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(DefaultSecretKey, cfg.SecretKey)
	s.True(cfg.InsecureSecret())
}

func (s *ConfigSuite) TestLoadDotEnv() {
	path := filepath.Join(s.tempDir, ".env")
	s.Require().NoError(os.WriteFile(path, []byte("SECRET_KEY=dotenv-secret\nWEBTOOLS_PORT=6001\n"), 0600))
	s.T().Setenv("WEBTOOLS_PORT", "6002")

	s.Require().NoError(LoadDotEnv(path))
	s.T().Cleanup(func() { os.Unsetenv("SECRET_KEY") })

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal("dotenv-secret", cfg.SecretKey)
	s.Equal(6002, cfg.Port, "variables already set win over .env")
}

func (s *ConfigSuite) TestLoadOrDefault_UnreadableSettingsKeepsEnv() {
	// A directory in place of the settings file cannot be read.
	s.Require().NoError(os.MkdirAll(filepath.Join(s.tempDir, ".webtools", "settings.json"), 0750))
	s.T().Setenv("SECRET_KEY", "from-env")
	s.T().Setenv("WEBTOOLS_PORT", "7000")

	_, err := Load()
	s.Require().Error(err)

	cfg := loadOrDefault()
	s.Equal("from-env", cfg.SecretKey)
	s.Equal(7000, cfg.Port)
	s.False(cfg.InsecureSecret())
}

func (s *ConfigSuite) TestLoadDotEnv_MissingFile() {
	s.NoError(LoadDotEnv(filepath.Join(s.tempDir, "missing.env")))
}

func TestSessionMaxAge(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30*24*time.Hour, cfg.SessionMaxAge())

	cfg.SessionDays = 1
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge())
}

// TestGet tests the global config getter.
func TestGet(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WEBTOOLS_DATA_DIR", "")

	cfg := Get()
	require.NotNil(t, cfg)
	assert.Greater(t, cfg.Port, 0)
	assert.NotEmpty(t, cfg.SecretKey)
	assert.Same(t, cfg, Get())
}
