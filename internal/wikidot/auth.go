package wikidot

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/olgasafonova/wikidot-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
	"github.com/olgasafonova/wikidot-mcp-server/internal/token"
	"github.com/olgasafonova/wikidot-mcp-server/metrics"
)

// badCredentialsMessage is matched case-insensitively against the login
// screen's error banner.
const badCredentialsMessage = "the login and password do not match"

var sessionIDPattern = regexp.MustCompile(`WIKIDOT_SESSION_ID=([^;]+)`)

// Login authenticates against the Wikidot login endpoint and stores the
// session cookie. Rejected credentials fail immediately with a
// *errors.CredentialError; transport failures are retried. The session is
// left unchanged on failure.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" {
		return apierrors.NewValidationError("username", "", "username is required")
	}
	if password == "" {
		return apierrors.NewValidationError("password", "", "password is required")
	}

	_, err := call(ctx, c, "login", username, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.loginOnce(ctx, username, password)
	})
	if err != nil {
		metrics.AuthFailures.WithLabelValues(authFailureReason(err)).Inc()
		return err
	}

	c.Logger.Info("logged in", "site", c.siteName, "username", username)
	return nil
}

func (c *Client) loginOnce(ctx context.Context, username, password string) error {
	tok := token.Generate()
	resp, err := c.Do(ctx, base.Request{
		Operation: "login",
		Method:    http.MethodPost,
		URL:       c.cfg.LoginURL,
		Header:    c.headers(tok),
		Body:      []byte(loginForm(username, password, tok).Encode()),
	})
	if err != nil {
		return err
	}

	if banner, ok := errorBanner(resp.Body); ok && strings.Contains(strings.ToLower(banner), badCredentialsMessage) {
		return &apierrors.CredentialError{Username: username, Message: banner}
	}

	id, ok := sessionID(resp.Header)
	if !ok {
		return apierrors.ErrNoSessionCookie
	}
	c.session.set(sessionCookie(id))
	return nil
}

// sessionID finds WIKIDOT_SESSION_ID among the Set-Cookie headers
func sessionID(h http.Header) (string, bool) {
	for _, v := range h.Values("Set-Cookie") {
		if m := sessionIDPattern.FindStringSubmatch(v); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// Logout forgets the session cookie. No request is sent.
func (c *Client) Logout() {
	c.session.clear()
}

// IsLoggedIn reports whether the client holds a session cookie
func (c *Client) IsLoggedIn() bool {
	return c.session.Authenticated()
}

// EnsureLoggedIn logs in with the configured credentials unless a session
// is already held.
func (c *Client) EnsureLoggedIn(ctx context.Context) error {
	if c.IsLoggedIn() {
		return nil
	}

	c.loginMu.Lock()
	defer c.loginMu.Unlock()
	if c.IsLoggedIn() {
		return nil
	}
	if !c.cfg.HasCredentials() {
		return apierrors.ErrNotAuthenticated
	}
	return c.Login(ctx, c.cfg.Username, c.cfg.Password)
}

func authFailureReason(err error) string {
	switch {
	case apierrors.IsCredential(err):
		return "credentials"
	case errors.Is(err, apierrors.ErrNoSessionCookie):
		return "no_session_cookie"
	default:
		return "transport"
	}
}
