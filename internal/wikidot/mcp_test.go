package wikidot

import (
	"context"
	"errors"
	"net/http"
	"testing"

	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
)

func TestListPagesMCP_BuildsParams(t *testing.T) {
	fake := newFakeWikidot()
	fake.handle(moduleRoute, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		want := map[string]string{
			"moduleName":  "list/ListPagesModule",
			"category":    "fragment",
			"tags":        "+scp",
			"order":       "created_at desc",
			"perPage":     "20",
			"module_body": "%%title%%",
			"separate":    "no",
		}
		for k, v := range want {
			if got := r.PostForm.Get(k); got != v {
				t.Errorf("%s = %q, want %q", k, got, v)
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok","CURRENT_TIMESTAMP":1700000000,"body":"<p>SCP-173</p>","callbackIndex":0}`))
	})
	client, _ := newTestClient(t, fake)

	result, err := client.ListPagesMCP(context.Background(), ListPagesArgs{
		Category:   "fragment",
		Tags:       "+scp",
		Order:      "created_at desc",
		PerPage:    20,
		ModuleBody: "%%title%%",
		Params:     map[string]string{"separate": "no", "category": "ignored"},
	})
	if err != nil {
		t.Fatalf("ListPagesMCP failed: %v", err)
	}
	if result.Status != "ok" || result.Timestamp != 1700000000 || result.Body != "<p>SCP-173</p>" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestGetPageIDMCP(t *testing.T) {
	fake := newFakeWikidot()
	fake.handle(graphqlRoute, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(graphQLPage(`{"wikidotId":321}`)))
	})
	client, _ := newTestClient(t, fake)

	result, err := client.GetPageIDMCP(context.Background(), GetPageIDArgs{Page: "scp-173"})
	if err != nil {
		t.Fatalf("GetPageIDMCP failed: %v", err)
	}
	if result.PageID != 321 || !result.Found || result.Site != testSite {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestGetPageIDMCP_NotFound(t *testing.T) {
	fake := newFakeWikidot()
	fake.handle(graphqlRoute, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"page":null}}`))
	})
	fake.handle("test-site.wikidot.com/ghost/norender/true", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head></head><body>not here</body></html>`))
	})
	client, _ := newTestClient(t, fake)

	result, err := client.GetPageIDMCP(context.Background(), GetPageIDArgs{Page: "ghost"})
	if err != nil {
		t.Fatalf("GetPageIDMCP failed: %v", err)
	}
	if result.Found || result.PageID != 0 {
		t.Errorf("expected unresolved page, got %+v", result)
	}
}

func TestGetPageIDMCP_InvalidSite(t *testing.T) {
	client, _ := newTestClient(t, newFakeWikidot())

	_, err := client.GetPageIDMCP(context.Background(), GetPageIDArgs{Page: "scp-173", Site: "Bad Site"})
	if !apierrors.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestGetTagsMCP(t *testing.T) {
	fake := newFakeWikidot()
	fake.handle(graphqlRoute, func(w http.ResponseWriter, r *http.Request) {
		req := decodeGraphQL(t, r)
		if req.Variables["url"] != "http://scp-wiki.wikidot.com/scp-173" {
			t.Errorf("url variable = %v", req.Variables["url"])
		}
		_, _ = w.Write([]byte(graphQLPage(`{"tags":["scp","euclid"]}`)))
	})
	client, _ := newTestClient(t, fake)

	result, err := client.GetTagsMCP(context.Background(), GetTagsArgs{Page: "scp-173", Site: "scp-wiki"})
	if err != nil {
		t.Fatalf("GetTagsMCP failed: %v", err)
	}
	if len(result.Tags) != 2 || result.Tags[0] != "scp" {
		t.Errorf("unexpected tags: %v", result.Tags)
	}
}

func TestPageExistsMCP_Sources(t *testing.T) {
	fake := newFakeWikidot()
	fake.handle(graphqlRoute, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(graphQLPage(`{"title":"SCP-173"}`)))
	})
	fake.handle(moduleRoute, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","body":"<div>scp-173</div>"}`))
	})
	client, _ := newTestClient(t, fake)

	viaMirror, err := client.PageExistsMCP(context.Background(), PageExistsArgs{Page: "scp-173"})
	if err != nil {
		t.Fatalf("PageExistsMCP failed: %v", err)
	}
	if !viaMirror.Exists || viaMirror.Source != "graphql" {
		t.Errorf("unexpected mirror result: %+v", viaMirror)
	}

	viaListPages, err := client.PageExistsMCP(context.Background(), PageExistsArgs{Page: "scp-173", UseListPages: true})
	if err != nil {
		t.Fatalf("PageExistsMCP failed: %v", err)
	}
	if !viaListPages.Exists || viaListPages.Source != "list_pages" {
		t.Errorf("unexpected list_pages result: %+v", viaListPages)
	}
}

func TestSearchPagesMCP_EmptyIsNotNull(t *testing.T) {
	fake := newFakeWikidot()
	fake.handle(quickRoute, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	client, _ := newTestClient(t, fake)

	result, err := client.SearchPagesMCP(context.Background(), SearchPagesArgs{SiteID: 66711, Query: "zzz"})
	if err != nil {
		t.Fatalf("SearchPagesMCP failed: %v", err)
	}
	if result.Pages == nil || len(result.Pages) != 0 {
		t.Errorf("expected empty slice, got %#v", result.Pages)
	}
}

func TestEditTagsMCP_LogsInWithConfiguredCredentials(t *testing.T) {
	fake, last := pageActionServer(t, "77", "ok")
	fake.handle(loginRoute, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if r.PostForm.Get("login") != "alice" || r.PostForm.Get("password") != "pw" {
			t.Errorf("unexpected credentials: %v", r.PostForm)
		}
		w.Header().Add("Set-Cookie", "WIKIDOT_SESSION_ID=mcp-session; path=/")
		_, _ = w.Write([]byte("<html></html>"))
	})
	client, _ := newTestClient(t, fake, func(c *Config) {
		c.Username = "alice"
		c.Password = "pw"
	})

	result, err := client.EditTagsMCP(context.Background(), EditTagsArgs{Page: "scp-173", Tags: []string{"scp", "keter"}})
	if err != nil {
		t.Fatalf("EditTagsMCP failed: %v", err)
	}
	if result.Status != "ok" {
		t.Errorf("status = %q", result.Status)
	}
	if fake.Hits(loginRoute) != 1 {
		t.Errorf("login hits = %d, want 1", fake.Hits(loginRoute))
	}
	if got := (*last.Load()).Get("tags"); got != "scp keter" {
		t.Errorf("tags = %q", got)
	}

	if _, err := client.DeletePageMCP(context.Background(), DeletePageArgs{Page: "scp-173"}); err != nil {
		t.Fatalf("DeletePageMCP failed: %v", err)
	}
	if fake.Hits(loginRoute) != 1 {
		t.Errorf("session should be reused, login hits = %d", fake.Hits(loginRoute))
	}
}

func TestRenamePageMCP_WithoutCredentials(t *testing.T) {
	fake, _ := pageActionServer(t, "1", "ok")
	client, _ := newTestClient(t, fake)

	_, err := client.RenamePageMCP(context.Background(), RenamePageArgs{Page: "a", NewName: "b"})
	if !errors.Is(err, apierrors.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if fake.Hits(moduleRoute) != 0 {
		t.Error("no module call should be made without a session")
	}
}
