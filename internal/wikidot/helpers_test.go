package wikidot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

const (
	testSite    = "test-site"
	testBaseURL = "http://test-site.wikidot.com"

	graphqlRoute = "apiv1.crom.avn.sh/graphql"
	loginRoute   = "www.wikidot.com/default--flow/login__LoginPopupScreen"
	moduleRoute  = "test-site.wikidot.com/ajax-module-connector.php"
	quickRoute   = "test-site.wikidot.com/quickmodule.php"
)

// fakeWikidot routes requests by Host and path so one httptest server can
// stand in for the site, the login endpoint and the GraphQL mirror.
type fakeWikidot struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
}

func newFakeWikidot() *fakeWikidot {
	return &fakeWikidot{
		routes: make(map[string]http.HandlerFunc),
		hits:   make(map[string]int),
	}
}

func (f *fakeWikidot) handle(route string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = h
}

func (f *fakeWikidot) Hits(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *fakeWikidot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Host + r.URL.Path
	f.mu.Lock()
	f.hits[route]++
	h := f.routes[route]
	f.mu.Unlock()

	if h == nil {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// rewriteTransport sends every request to the test server while keeping
// the original Host header.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

// sleepRecorder is a SleepFunc that returns immediately and remembers the
// requested delays.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, fake *fakeWikidot, mutate ...func(*Config)) (*Client, *sleepRecorder) {
	t.Helper()
	return newTestClientWithOptions(t, fake, mutate, nil)
}

func newTestClientWithOptions(t *testing.T, fake *fakeWikidot, mutate []func(*Config), opts []ClientOption) (*Client, *sleepRecorder) {
	t.Helper()

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	target, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("failed to parse server URL: %v", err)
	}

	cfg := DefaultConfig()
	cfg.BaseURL = testBaseURL
	for _, m := range mutate {
		m(cfg)
	}

	sleeps := &sleepRecorder{}
	opts = append([]ClientOption{
		WithHTTPClient(&http.Client{Transport: rewriteTransport{target: target}}),
		WithLogger(discardLogger()),
		WithSleep(sleeps.Sleep),
	}, opts...)
	client, err := NewClient(cfg, opts...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(client.Close)
	return client, sleeps
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// graphQLPage renders a page(url) response with the given wikidotInfo JSON
func graphQLPage(info string) string {
	return `{"data":{"page":{"url":"http://test-site.wikidot.com/x","wikidotInfo":` + info + `}}}`
}

// decodeGraphQL reads the request body sent to the mirror
func decodeGraphQL(t *testing.T, r *http.Request) graphQLRequest {
	t.Helper()
	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Errorf("failed to decode graphql request: %v", err)
	}
	return req
}

// pageWithID renders a page carrying the WIKIREQUEST bootstrap script
func pageWithID(id string) string {
	return `<!DOCTYPE html><html><head>
<title>test</title>
<script type="text/javascript">var x = 1;</script>
<script type="text/javascript">
	WIKIREQUEST = {};
	WIKIREQUEST.info = {};
	WIKIREQUEST.info.domain = "test-site.wikidot.com";
	WIKIREQUEST.info.siteId = 100;
	WIKIREQUEST.info.pageId = ` + id + `;
	WIKIREQUEST.info.lang = "en";
</script>
</head><body><div id="page-content">hello</div></body></html>`
}

// loginAs installs a login handler issuing sessionID and logs the client in
func loginAs(t *testing.T, fake *fakeWikidot, client *Client, sessionID string) {
	t.Helper()
	fake.handle(loginRoute, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "WIKIDOT_SESSION_ID="+sessionID+"; path=/; domain=.wikidot.com")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	})
	if err := client.Login(context.Background(), "user", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
}
