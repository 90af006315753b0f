package wikidot

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
	"github.com/olgasafonova/wikidot-mcp-server/metrics"
)

const (
	listPagesModule  = "list/ListPagesModule"
	emptyModule      = "Empty"
	pageLookupModule = "PageLookupQModule"
	defaultCategory  = "_default"
)

// ListPages runs the ListPages module with the given parameters. See
// https://www.wikidot.com/doc-modules:listpages-module for the parameter set.
func (c *Client) ListPages(ctx context.Context, params url.Values) (*ModuleResponse, error) {
	return c.ModuleCall(ctx, listPagesModule, params)
}

// GetPageSource returns the rendered HTML of a page, or its unrendered
// chrome when norender is set.
func (c *Client) GetPageSource(ctx context.Context, page string, norender bool) (string, error) {
	if err := ValidatePageName(page); err != nil {
		return "", err
	}
	return c.FetchPageSource(ctx, page, norender)
}

// GetTags returns the tags the GraphQL mirror knows for page on site.
// An unknown page has no tags.
func (c *Client) GetTags(ctx context.Context, page, site string) ([]string, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}
	if site == "" {
		site = c.siteName
	}
	data, err := c.queryPage(ctx, tagsQuery, site, page)
	if err != nil {
		return nil, err
	}
	info := data.info()
	if info == nil || info.Tags == nil {
		return []string{}, nil
	}
	return info.Tags, nil
}

// PageExists asks the GraphQL mirror whether site has page
func (c *Client) PageExists(ctx context.Context, site, page string) (bool, error) {
	if err := ValidatePageName(page); err != nil {
		return false, err
	}
	if site == "" {
		site = c.siteName
	}
	data, err := c.queryPage(ctx, existsQuery, site, page)
	if err != nil {
		return false, err
	}
	return data.info() != nil, nil
}

// PageExistsByListPages checks existence on the live site through ListPages.
// category defaults to _default.
func (c *Client) PageExistsByListPages(ctx context.Context, name, category string) (bool, error) {
	if err := ValidatePageName(name); err != nil {
		return false, err
	}
	if category == "" {
		category = defaultCategory
	}
	resp, err := c.ListPages(ctx, url.Values{
		"category":    {category},
		"name":        {name},
		"module_body": {"%%fullname%%"},
	})
	if err != nil {
		return false, err
	}
	return strings.Contains(resp.Body, name), nil
}

// SearchPages looks up pages by title through quickmodule.php.
//
// Deprecated: the endpoint fails most of the time. Use PageExists or
// ListPages instead.
func (c *Client) SearchPages(ctx context.Context, siteID int, query string) ([]QuickModulePage, error) {
	if siteID <= 0 {
		return nil, apierrors.NewValidationError("site_id", strconv.Itoa(siteID), "must be positive")
	}
	if query == "" {
		return nil, apierrors.NewValidationError("query", "", "query is required")
	}
	resp, err := c.QuickModuleCall(ctx, pageLookupModule, url.Values{
		"s": {strconv.Itoa(siteID)},
		"q": {query},
	})
	if err != nil {
		return nil, err
	}
	return resp.Pages, nil
}

// EditTags replaces the tags of page
func (c *Client) EditTags(ctx context.Context, page string, tags []string) (*ModuleResponse, error) {
	if err := ValidateTags(tags); err != nil {
		return nil, err
	}
	return c.pageAction(ctx, "saveTags", page, "pageId", url.Values{
		"tags": {strings.Join(tags, " ")},
	})
}

// RenamePage moves page to newName
func (c *Client) RenamePage(ctx context.Context, page, newName string) (*ModuleResponse, error) {
	if err := ValidatePageName(newName); err != nil {
		return nil, err
	}
	resp, err := c.pageAction(ctx, "renamePage", page, "page_id", url.Values{
		"new_name": {newName},
	})
	if err == nil {
		c.forgetPageID(c.siteName, newName)
	}
	return resp, err
}

// DeletePage deletes page
func (c *Client) DeletePage(ctx context.Context, page string) (*ModuleResponse, error) {
	return c.pageAction(ctx, "deletePage", page, "page_id", url.Values{})
}

// pageAction sends a WikiPageAction event through the Empty module. The
// page must resolve to a non-zero ID and the session must be logged in.
func (c *Client) pageAction(ctx context.Context, event, page, idField string, params url.Values) (*ModuleResponse, error) {
	if err := ValidatePageName(page); err != nil {
		return nil, err
	}
	if !c.IsLoggedIn() {
		return nil, apierrors.ErrNotAuthenticated
	}

	id, err := c.requirePageID(ctx, page)
	if err != nil {
		metrics.RecordEdit(event, false)
		return nil, err
	}

	form := url.Values{
		"action": {"WikiPageAction"},
		"event":  {event},
	}
	for k, vs := range params {
		form[k] = vs
	}
	form.Set(idField, strconv.Itoa(id))

	resp, err := c.ModuleCall(ctx, emptyModule, form)
	if err != nil {
		metrics.RecordEdit(event, false)
		return nil, err
	}
	if !resp.OK() {
		metrics.RecordEdit(event, false)
		return resp, &apierrors.ModuleError{Module: emptyModule, Status: resp.Status, Message: resp.Message}
	}

	c.forgetPageID(c.siteName, page)
	metrics.RecordEdit(event, true)
	c.Logger.Info("page action completed", "event", event, "page", page, "page_id", id)
	return resp, nil
}
