package wikidot

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
	"github.com/olgasafonova/wikidot-mcp-server/internal/infra"
)

const (
	// DefaultLoginURL is the fixed endpoint that issues WIKIDOT_SESSION_ID cookies
	DefaultLoginURL = "https://www.wikidot.com/default--flow/login__LoginPopupScreen"

	// DefaultGraphQLURL is the Crom read-only GraphQL mirror
	DefaultGraphQLURL = "https://apiv1.crom.avn.sh/graphql"

	// DefaultUserAgent mimics a desktop browser; the module connector rejects obvious bots
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

	// DefaultThrottleDelay is the extra pause after the mirror reports throttling
	DefaultThrottleDelay = 30 * time.Second

	// DefaultTimeout bounds a single HTTP attempt
	DefaultTimeout = 30 * time.Second
)

// Config holds Wikidot connection settings
type Config struct {
	// BaseURL is the site root (e.g., https://scp-wiki.wikidot.com)
	BaseURL string `yaml:"url"`

	// Username for the Wikidot account (optional, required for page edits)
	Username string `yaml:"username"`

	// Password for the Wikidot account (optional, required for page edits)
	Password string `yaml:"password"`

	// Timeout for a single HTTP attempt
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent sent with module, login and page-source requests
	UserAgent string `yaml:"user_agent"`

	// MaxRetries is how many times a failing request is retried
	MaxRetries int `yaml:"max_retries"`

	// RetryStep is the linear backoff unit: retry n waits n*RetryStep
	RetryStep time.Duration `yaml:"retry_step"`

	// ThrottleDelay is slept when the GraphQL mirror says we are too fast
	ThrottleDelay time.Duration `yaml:"throttle_delay"`

	LoginURL   string `yaml:"login_url"`
	GraphQLURL string `yaml:"graphql_url"`
}

// DefaultConfig returns a Config with production defaults and no site
func DefaultConfig() *Config {
	return &Config{
		Timeout:       DefaultTimeout,
		UserAgent:     DefaultUserAgent,
		MaxRetries:    infra.DefaultMaxRetries,
		RetryStep:     infra.DefaultRetryStep,
		ThrottleDelay: DefaultThrottleDelay,
		LoginURL:      DefaultLoginURL,
		GraphQLURL:    DefaultGraphQLURL,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		return nil, apierrors.NewValidationError("WIKIDOT_URL", "", "environment variable is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile loads a YAML config file. Environment variables override
// values from the file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays the WIKIDOT_* environment variables onto c. Unset
// variables leave the current value alone.
func (c *Config) ApplyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return apierrors.NewValidationError(key, v, "must be a duration such as 30s")
		}
		*dst = d
		return nil
	}

	setString("WIKIDOT_URL", &c.BaseURL)
	setString("WIKIDOT_USERNAME", &c.Username)
	setString("WIKIDOT_PASSWORD", &c.Password)
	setString("WIKIDOT_USER_AGENT", &c.UserAgent)
	setString("WIKIDOT_LOGIN_URL", &c.LoginURL)
	setString("WIKIDOT_GRAPHQL_URL", &c.GraphQLURL)

	if err := setDuration("WIKIDOT_TIMEOUT", &c.Timeout); err != nil {
		return err
	}
	if err := setDuration("WIKIDOT_RETRY_STEP", &c.RetryStep); err != nil {
		return err
	}
	if err := setDuration("WIKIDOT_THROTTLE_DELAY", &c.ThrottleDelay); err != nil {
		return err
	}

	if r := os.Getenv("WIKIDOT_MAX_RETRIES"); r != "" {
		n, err := strconv.Atoi(r)
		if err != nil {
			return apierrors.NewValidationError("WIKIDOT_MAX_RETRIES", r, "must be an integer")
		}
		c.MaxRetries = n
	}
	return nil
}

// Validate checks the config and normalizes BaseURL (no trailing slash)
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return apierrors.NewValidationError("url", "", "site URL is required")
	}
	if err := validateHTTPURL("url", c.BaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("login_url", c.LoginURL); err != nil {
		return err
	}
	if err := validateHTTPURL("graphql_url", c.GraphQLURL); err != nil {
		return err
	}
	if c.MaxRetries < 0 {
		return apierrors.NewValidationError("max_retries", strconv.Itoa(c.MaxRetries), "cannot be negative")
	}
	if c.RetryStep < 0 {
		return apierrors.NewValidationError("retry_step", c.RetryStep.String(), "cannot be negative")
	}
	if c.ThrottleDelay < 0 {
		return apierrors.NewValidationError("throttle_delay", c.ThrottleDelay.String(), "cannot be negative")
	}
	if c.Timeout <= 0 {
		return apierrors.NewValidationError("timeout", c.Timeout.String(), "must be positive")
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return nil
}

// HasCredentials returns true if authentication credentials are configured
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return apierrors.NewValidationError(field, raw, "must be an absolute http(s) URL")
	}
	return nil
}
