package tools

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
	"github.com/olgasafonova/wikidot-mcp-server/internal/wikidot"
)

// rewriteTransport sends every request to the test server, keeping the Host.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T, h http.HandlerFunc) *HandlerRegistry {
	t.Helper()
	if h == nil {
		h = http.NotFound
	}
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	target, _ := url.Parse(server.URL)

	cfg := wikidot.DefaultConfig()
	cfg.BaseURL = "http://test-site.wikidot.com"
	cfg.MaxRetries = 0

	client, err := wikidot.NewClient(cfg,
		wikidot.WithHTTPClient(&http.Client{Transport: rewriteTransport{target: target}}),
		wikidot.WithLogger(testLogger()),
		wikidot.WithSleep(func(ctx context.Context, d time.Duration) error { return ctx.Err() }),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(client.Close)
	return NewHandlerRegistry(client, testLogger())
}

func TestNewHandlerRegistry(t *testing.T) {
	registry := newTestRegistry(t, nil)

	if registry.client == nil {
		t.Error("Registry should hold the wikidot client reference")
	}
	if registry.logger == nil {
		t.Error("Registry should hold the logger reference")
	}
}

func TestBuildTool(t *testing.T) {
	registry := newTestRegistry(t, nil)

	tests := []struct {
		name      string
		spec      ToolSpec
		wantRO    bool
		wantIdem  bool
		wantDestr bool
		wantOpen  bool
	}{
		{
			name: "read-only tool",
			spec: ToolSpec{
				Name:        "wikidot_get_tags",
				Title:       "Get Page Tags",
				Description: "Get the tags of a page",
				Method:      "GetTags",
				ReadOnly:    true,
				Idempotent:  true,
			},
			wantRO:   true,
			wantIdem: true,
		},
		{
			name: "destructive open world tool",
			spec: ToolSpec{
				Name:        "wikidot_delete_page",
				Title:       "Delete Page",
				Description: "Delete a page",
				Method:      "DeletePage",
				Destructive: true,
				OpenWorld:   true,
			},
			wantDestr: true,
			wantOpen:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := registry.buildTool(tt.spec)

			if tool.Name != tt.spec.Name {
				t.Errorf("Name = %q, want %q", tool.Name, tt.spec.Name)
			}
			if tool.Description != tt.spec.Description {
				t.Errorf("Description = %q, want %q", tool.Description, tt.spec.Description)
			}
			if tool.Annotations == nil {
				t.Fatal("Expected annotations")
			}
			if tool.Annotations.Title != tt.spec.Title {
				t.Errorf("Title = %q", tool.Annotations.Title)
			}
			if tool.Annotations.ReadOnlyHint != tt.wantRO {
				t.Errorf("ReadOnlyHint = %v, want %v", tool.Annotations.ReadOnlyHint, tt.wantRO)
			}
			if tool.Annotations.IdempotentHint != tt.wantIdem {
				t.Errorf("IdempotentHint = %v, want %v", tool.Annotations.IdempotentHint, tt.wantIdem)
			}
			if tt.wantDestr != (tool.Annotations.DestructiveHint != nil && *tool.Annotations.DestructiveHint) {
				t.Errorf("DestructiveHint mismatch, want %v", tt.wantDestr)
			}
			if tt.wantOpen != (tool.Annotations.OpenWorldHint != nil && *tool.Annotations.OpenWorldHint) {
				t.Errorf("OpenWorldHint mismatch, want %v", tt.wantOpen)
			}
		})
	}
}

func TestRegisterAll(t *testing.T) {
	registry := newTestRegistry(t, nil)
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0.0.0"}, nil)

	registry.RegisterAll(server)

	for _, spec := range AllTools {
		if !registry.registerByName(mcp.NewServer(&mcp.Implementation{Name: "t", Version: "0"}, nil), spec) {
			t.Errorf("tool %s (%s) has no handler", spec.Name, spec.Method)
		}
	}
	if registry.registerByName(server, ToolSpec{Name: "bogus", Method: "Bogus"}) {
		t.Error("unknown method should not register")
	}
}

func TestHandler_Success(t *testing.T) {
	registry := newTestRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Host != "apiv1.crom.avn.sh" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"page":{"url":"x","wikidotInfo":{"wikidotId":173}}}}`))
	})
	spec := ToolSpec{Name: "wikidot_get_page_id", Category: "lookup", Backend: "graphql"}

	h := handler(registry, spec, registry.client.GetPageIDMCP)
	res, out, err := h(context.Background(), nil, wikidot.GetPageIDArgs{Page: "scp-173"})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if res != nil {
		t.Errorf("expected nil CallToolResult, got %+v", res)
	}
	if out.PageID != 173 || !out.Found || out.Site != "test-site" {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestHandler_WrapsErrors(t *testing.T) {
	registry := newTestRegistry(t, nil)
	spec := ToolSpec{Name: "wikidot_get_page_source"}

	h := handler(registry, spec, registry.client.GetPageSourceMCP)
	_, _, err := h(context.Background(), nil, wikidot.GetPageSourceArgs{Page: ""})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.HasPrefix(err.Error(), "wikidot_get_page_source failed:") {
		t.Errorf("error not prefixed with tool name: %v", err)
	}
}

func TestHandler_RequiresAuthBeforeCallingMethod(t *testing.T) {
	registry := newTestRegistry(t, nil)
	spec := ToolSpec{Name: "wikidot_delete_page", RequiresAuth: true}

	called := false
	h := handler(registry, spec, func(ctx context.Context, args wikidot.DeletePageArgs) (wikidot.DeletePageResult, error) {
		called = true
		return wikidot.DeletePageResult{}, nil
	})
	_, _, err := h(context.Background(), nil, wikidot.DeletePageArgs{Page: "scp-173"})
	if !errors.Is(err, apierrors.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if called {
		t.Error("method should not run without a session")
	}

	// The same method runs when the tool does not need a session
	spec.RequiresAuth = false
	h = handler(registry, spec, func(ctx context.Context, args wikidot.DeletePageArgs) (wikidot.DeletePageResult, error) {
		called = true
		return wikidot.DeletePageResult{}, nil
	})
	if _, _, err := h(context.Background(), nil, wikidot.DeletePageArgs{Page: "scp-173"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !called {
		t.Error("method should run for tools without RequiresAuth")
	}
}

func TestHandler_RecoversPanics(t *testing.T) {
	registry := newTestRegistry(t, nil)
	spec := ToolSpec{Name: "panicky"}

	h := handler(registry, spec, func(ctx context.Context, args wikidot.DeletePageArgs) (wikidot.DeletePageResult, error) {
		panic("boom")
	})
	_, _, err := h(context.Background(), nil, wikidot.DeletePageArgs{Page: "x"})
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Errorf("expected internal error after panic, got %v", err)
	}
}

func TestRecoverPanic(t *testing.T) {
	registry := newTestRegistry(t, nil)

	func() {
		defer registry.recoverPanic("test_tool", nil)
		panic("test panic")
	}()
}

func TestLogExecution(t *testing.T) {
	registry := newTestRegistry(t, nil)
	spec := ToolSpec{Name: "test_tool", Backend: "module"}

	registry.logExecution(spec,
		wikidot.ListPagesArgs{Category: "_default"},
		wikidot.ListPagesResult{Status: "ok", Body: "<p/>"})
	registry.logExecution(spec,
		wikidot.EditTagsArgs{Page: "scp-173", Tags: []string{"scp"}},
		wikidot.EditTagsResult{Status: "ok"})
	registry.logExecution(spec,
		wikidot.SearchPagesArgs{SiteID: 1, Query: "scp"},
		wikidot.SearchPagesResult{Pages: []wikidot.QuickModulePage{{UnixName: "scp-173"}}})
}

func TestAllToolsNotEmpty(t *testing.T) {
	if len(AllTools) != 9 {
		t.Errorf("expected 9 tools, got %d", len(AllTools))
	}

	seen := make(map[string]bool)
	for i, spec := range AllTools {
		if spec.Name == "" {
			t.Errorf("Tool %d has empty Name", i)
		}
		if !strings.HasPrefix(spec.Name, "wikidot_") {
			t.Errorf("Tool %s should use the wikidot_ prefix", spec.Name)
		}
		if seen[spec.Name] {
			t.Errorf("Tool %s defined twice", spec.Name)
		}
		seen[spec.Name] = true
		if spec.Method == "" {
			t.Errorf("Tool %s has empty Method", spec.Name)
		}
		if spec.Description == "" {
			t.Errorf("Tool %s has empty Description", spec.Name)
		}
		if spec.Backend == "" {
			t.Errorf("Tool %s has empty Backend", spec.Name)
		}
	}
}

func TestWriteToolsRequireAuth(t *testing.T) {
	for _, spec := range ToolsByCategory("write") {
		if spec.ReadOnly {
			t.Errorf("write tool %s marked read-only", spec.Name)
		}
		if !spec.RequiresAuth {
			t.Errorf("write tool %s should require auth", spec.Name)
		}
	}
	for _, spec := range AllTools {
		if spec.Category != "write" && spec.RequiresAuth {
			t.Errorf("read tool %s should not require auth", spec.Name)
		}
	}
}

func TestToolsByBackend(t *testing.T) {
	for _, backend := range []string{"module", "graphql", "page", "quickmodule"} {
		tools := ToolsByBackend(backend)
		if len(tools) == 0 {
			t.Errorf("Expected tools for backend %s", backend)
		}
		for _, tool := range tools {
			if tool.Backend != backend {
				t.Errorf("Tool %s has backend %s, expected %s", tool.Name, tool.Backend, backend)
			}
		}
	}

	if got := ToolsByBackend("unknown"); len(got) != 0 {
		t.Errorf("Expected 0 tools for unknown backend, got %d", len(got))
	}
}

func TestToolsByCategory(t *testing.T) {
	total := 0
	for _, category := range []string{"read", "lookup", "write"} {
		tools := ToolsByCategory(category)
		total += len(tools)
		for _, tool := range tools {
			if tool.Category != category {
				t.Errorf("Tool %s has category %s, expected %s", tool.Name, tool.Category, category)
			}
		}
	}
	if total != len(AllTools) {
		t.Errorf("categories cover %d tools, want %d", total, len(AllTools))
	}
}
