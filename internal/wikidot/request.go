package wikidot

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	ajaxPath        = "/ajax-module-connector.php"
	quickModulePath = "/quickmodule.php"

	formContentType = "application/x-www-form-urlencoded; charset=UTF-8"
	jsonContentType = "application/json"

	tokenField = "wikidot_token7"
)

// headers builds the browser-like header set sent with every module, login
// and page-source request.
func (c *Client) headers(token string) http.Header {
	h := make(http.Header)
	h.Set("User-Agent", c.cfg.UserAgent)
	h.Set("Content-Type", formContentType)
	h.Set("Cookie", cookieHeader(c.session.Cookie(), token))
	h.Set("Origin", c.cfg.BaseURL)
	h.Set("Referer", c.cfg.BaseURL+"/")
	return h
}

// cookieHeader appends the per-request token to the session cookie. An
// unauthenticated session sends the token alone.
func cookieHeader(session, token string) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s=%s;", session, tokenField, token))
}

// moduleForm is the body of an ajax-module-connector.php call. Caller params
// are applied after the fixed fields and win on collision.
func moduleForm(moduleName, token string, params url.Values) url.Values {
	form := url.Values{}
	form.Set("moduleName", moduleName)
	form.Set("callbackIndex", "0")
	form.Set(tokenField, token)
	for k, vs := range params {
		form[k] = append([]string(nil), vs...)
	}
	return form
}

// quickModuleQuery is the query string of a quickmodule.php call
func quickModuleQuery(module string, params url.Values) url.Values {
	q := url.Values{}
	q.Set("module", module)
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	return q
}

// loginForm is the body posted to the login endpoint
func loginForm(username, password, token string) url.Values {
	form := url.Values{}
	form.Set("callbackIndex", "0")
	form.Set(tokenField, token)
	form.Set("login", username)
	form.Set("password", password)
	form.Set("action", "Login2Action")
	form.Set("event", "login")
	return form
}

// pageURL resolves a page name or absolute URL for a page-source fetch
func pageURL(baseURL, page string, norender bool) string {
	u := page
	if !strings.HasPrefix(page, "http") {
		u = baseURL + "/" + strings.TrimPrefix(page, "/")
	}
	if norender {
		u += "/norender/true"
	}
	return u
}
