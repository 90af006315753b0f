package wikidot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
)

func clearWikidotEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WIKIDOT_URL", "WIKIDOT_USERNAME", "WIKIDOT_PASSWORD", "WIKIDOT_TIMEOUT",
		"WIKIDOT_MAX_RETRIES", "WIKIDOT_RETRY_STEP", "WIKIDOT_THROTTLE_DELAY",
		"WIKIDOT_USER_AGENT", "WIKIDOT_LOGIN_URL", "WIKIDOT_GRAPHQL_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_RequiresURL(t *testing.T) {
	clearWikidotEnv(t)

	if _, err := LoadConfig(); !apierrors.IsValidation(err) {
		t.Errorf("expected ValidationError without WIKIDOT_URL, got %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearWikidotEnv(t)
	t.Setenv("WIKIDOT_URL", "https://scp-wiki.wikidot.com/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.BaseURL != "https://scp-wiki.wikidot.com" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.BaseURL)
	}
	if cfg.MaxRetries != 60 {
		t.Errorf("MaxRetries = %d, want 60", cfg.MaxRetries)
	}
	if cfg.RetryStep != time.Second {
		t.Errorf("RetryStep = %v, want 1s", cfg.RetryStep)
	}
	if cfg.ThrottleDelay != 30*time.Second {
		t.Errorf("ThrottleDelay = %v, want 30s", cfg.ThrottleDelay)
	}
	if cfg.LoginURL != DefaultLoginURL || cfg.GraphQLURL != DefaultGraphQLURL {
		t.Errorf("unexpected endpoints: %s %s", cfg.LoginURL, cfg.GraphQLURL)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.HasCredentials() {
		t.Error("HasCredentials should be false without username/password")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearWikidotEnv(t)
	t.Setenv("WIKIDOT_URL", "https://scp-wiki.wikidot.com")
	t.Setenv("WIKIDOT_USERNAME", "alice")
	t.Setenv("WIKIDOT_PASSWORD", "pw")
	t.Setenv("WIKIDOT_TIMEOUT", "5s")
	t.Setenv("WIKIDOT_MAX_RETRIES", "5")
	t.Setenv("WIKIDOT_RETRY_STEP", "250ms")
	t.Setenv("WIKIDOT_THROTTLE_DELAY", "1m")
	t.Setenv("WIKIDOT_USER_AGENT", "wdctl/1.0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.HasCredentials() {
		t.Error("expected credentials")
	}
	if cfg.Timeout != 5*time.Second || cfg.MaxRetries != 5 || cfg.RetryStep != 250*time.Millisecond || cfg.ThrottleDelay != time.Minute {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.UserAgent != "wdctl/1.0" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"WIKIDOT_TIMEOUT", "soon"},
		{"WIKIDOT_MAX_RETRIES", "many"},
		{"WIKIDOT_MAX_RETRIES", "-1"},
		{"WIKIDOT_RETRY_STEP", "x"},
		{"WIKIDOT_GRAPHQL_URL", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearWikidotEnv(t)
			t.Setenv("WIKIDOT_URL", "https://scp-wiki.wikidot.com")
			t.Setenv(tt.key, tt.value)

			if _, err := LoadConfig(); !apierrors.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearWikidotEnv(t)
	path := filepath.Join(t.TempDir(), "wikidot.yaml")
	content := `url: https://scp-wiki-cn.wikidot.com
username: bob
password: secret
timeout: 10s
max_retries: 3
retry_step: 2s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if cfg.BaseURL != "https://scp-wiki-cn.wikidot.com" || cfg.Username != "bob" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Timeout != 10*time.Second || cfg.MaxRetries != 3 || cfg.RetryStep != 2*time.Second {
		t.Errorf("durations not applied: %+v", cfg)
	}
	if cfg.ThrottleDelay != DefaultThrottleDelay {
		t.Errorf("unset keys should keep defaults, ThrottleDelay = %v", cfg.ThrottleDelay)
	}

	t.Setenv("WIKIDOT_USERNAME", "carol")
	cfg, err = LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if cfg.Username != "carol" {
		t.Errorf("environment should override file, Username = %q", cfg.Username)
	}
}

func TestLoadConfigFile_Errors(t *testing.T) {
	clearWikidotEnv(t)

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("url: [unclosed"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing url", func(c *Config) { c.BaseURL = "" }, true},
		{"relative url", func(c *Config) { c.BaseURL = "scp-wiki.wikidot.com" }, true},
		{"ftp url", func(c *Config) { c.BaseURL = "ftp://scp-wiki.wikidot.com" }, true},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, true},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, false},
		{"negative throttle", func(c *Config) { c.ThrottleDelay = -time.Second }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"empty user agent falls back", func(c *Config) { c.UserAgent = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.BaseURL = "https://scp-wiki.wikidot.com"
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	if _, err := NewClient(&Config{}); err == nil {
		t.Error("expected error for empty config")
	}
}

func TestNewClient_DerivesSiteName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://scp-wiki.wikidot.com"

	client, err := NewClient(cfg, WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	if client.SiteName() != "scp-wiki" {
		t.Errorf("SiteName = %q", client.SiteName())
	}
	if client.BaseURL() != "https://scp-wiki.wikidot.com" {
		t.Errorf("BaseURL = %q", client.BaseURL())
	}
	if client.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", client.HTTPClient.Timeout, DefaultTimeout)
	}
	if client.IsLoggedIn() {
		t.Error("new client should not be logged in")
	}
}
