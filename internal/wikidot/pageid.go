package wikidot

import (
	"context"
	"strings"

	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
	"github.com/olgasafonova/wikidot-mcp-server/metrics"
	"github.com/olgasafonova/wikidot-mcp-server/tracing"
)

// ResolvePageID returns the numeric ID of page on siteName (the client's own
// site when empty). The GraphQL mirror is asked first; when it has no ID the
// page source is fetched and the WIKIREQUEST.info.pageId assignment in its
// head scripts is parsed. 0 means neither source knew the page.
func (c *Client) ResolvePageID(ctx context.Context, page, siteName string) (int, error) {
	if err := ValidatePageName(page); err != nil {
		return 0, err
	}
	if siteName == "" {
		siteName = c.siteName
	}

	key := pageIDKey(siteName, page)
	if id, ok := c.pageIDs.Get(key); ok {
		metrics.RecordCacheAccess(true)
		metrics.RecordPageIDResolution("cache")
		return id, nil
	}
	metrics.RecordCacheAccess(false)

	id, shared, err := c.dedup.Do(ctx, key, func(ctx context.Context) (int, error) {
		return c.resolvePageID(ctx, page, siteName)
	})
	if err != nil {
		return 0, err
	}
	if shared {
		c.Logger.Debug("page id resolution shared", "site", siteName, "page", page)
	}
	if id != 0 {
		c.pageIDs.Set(key, id, PageIDCacheTTL)
	}
	return id, nil
}

func (c *Client) resolvePageID(ctx context.Context, page, siteName string) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "wikidot.resolve_page_id")
	defer span.End()
	tracing.AddWikidotAttributes(span, "resolve_page_id", siteName, page)

	data, err := c.queryPage(ctx, pageIDQuery, siteName, page)
	if err != nil {
		tracing.RecordError(span, err)
		return 0, err
	}
	if info := data.info(); info != nil && info.WikidotID != nil {
		metrics.RecordPageIDResolution("graphql")
		return *info.WikidotID, nil
	}

	// Pages on another site are fetched by their canonical URL
	target := page
	if siteName != c.siteName && !strings.HasPrefix(page, "http") {
		target = canonicalURL(siteName, page)
	}
	src, err := c.FetchPageSource(ctx, target, true)
	if err != nil {
		tracing.RecordError(span, err)
		return 0, err
	}

	id, ok := extractPageID(src)
	if !ok {
		metrics.RecordPageIDResolution("unresolved")
		c.Logger.Warn("page id not found", "site", siteName, "page", page)
		return 0, nil
	}
	metrics.RecordPageIDResolution("source")
	return id, nil
}

// requirePageID resolves page on the client's site and turns the 0
// sentinel into a *errors.NotFoundError.
func (c *Client) requirePageID(ctx context.Context, page string) (int, error) {
	id, err := c.ResolvePageID(ctx, page, "")
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, apierrors.NewNotFoundError(c.siteName, page)
	}
	return id, nil
}

// forgetPageID drops a cached ID after the page was renamed or deleted
func (c *Client) forgetPageID(siteName, page string) {
	c.pageIDs.Delete(pageIDKey(siteName, page))
}

func pageIDKey(siteName, page string) string {
	return "pageid:" + siteName + "/" + page
}
