package wikidot

import (
	"context"
	"net/url"
	"strconv"
)

// MCP Tool wrapper methods
// These methods wrap the client methods with Args/Result types for MCP integration.

// ListPagesMCP is the MCP wrapper for ListPages
func (c *Client) ListPagesMCP(ctx context.Context, args ListPagesArgs) (ListPagesResult, error) {
	params := url.Values{}
	for k, v := range args.Params {
		params.Set(k, v)
	}
	if args.Category != "" {
		params.Set("category", args.Category)
	}
	if args.Tags != "" {
		params.Set("tags", args.Tags)
	}
	if args.Order != "" {
		params.Set("order", args.Order)
	}
	if args.PerPage > 0 {
		params.Set("perPage", strconv.Itoa(args.PerPage))
	}
	if args.ModuleBody != "" {
		params.Set("module_body", args.ModuleBody)
	}

	resp, err := c.ListPages(ctx, params)
	if err != nil {
		return ListPagesResult{}, err
	}
	return ListPagesResult{
		Status:    resp.Status,
		Timestamp: resp.CurrentTimestamp,
		Body:      resp.Body,
	}, nil
}

// GetPageSourceMCP is the MCP wrapper for GetPageSource
func (c *Client) GetPageSourceMCP(ctx context.Context, args GetPageSourceArgs) (GetPageSourceResult, error) {
	src, err := c.GetPageSource(ctx, args.Page, args.Norender)
	if err != nil {
		return GetPageSourceResult{}, err
	}
	return GetPageSourceResult{Page: args.Page, Source: src}, nil
}

// GetPageIDMCP is the MCP wrapper for ResolvePageID
func (c *Client) GetPageIDMCP(ctx context.Context, args GetPageIDArgs) (GetPageIDResult, error) {
	if err := ValidateSiteName(args.Site); err != nil {
		return GetPageIDResult{}, err
	}
	site := args.Site
	if site == "" {
		site = c.siteName
	}
	id, err := c.ResolvePageID(ctx, args.Page, site)
	if err != nil {
		return GetPageIDResult{}, err
	}
	return GetPageIDResult{Page: args.Page, Site: site, PageID: id, Found: id != 0}, nil
}

// GetTagsMCP is the MCP wrapper for GetTags
func (c *Client) GetTagsMCP(ctx context.Context, args GetTagsArgs) (GetTagsResult, error) {
	if err := ValidateSiteName(args.Site); err != nil {
		return GetTagsResult{}, err
	}
	tags, err := c.GetTags(ctx, args.Page, args.Site)
	if err != nil {
		return GetTagsResult{}, err
	}
	return GetTagsResult{Page: args.Page, Tags: tags}, nil
}

// PageExistsMCP is the MCP wrapper for PageExists and PageExistsByListPages
func (c *Client) PageExistsMCP(ctx context.Context, args PageExistsArgs) (PageExistsResult, error) {
	if args.UseListPages {
		exists, err := c.PageExistsByListPages(ctx, args.Page, args.Category)
		if err != nil {
			return PageExistsResult{}, err
		}
		return PageExistsResult{Page: args.Page, Exists: exists, Source: "list_pages"}, nil
	}

	if err := ValidateSiteName(args.Site); err != nil {
		return PageExistsResult{}, err
	}
	exists, err := c.PageExists(ctx, args.Site, args.Page)
	if err != nil {
		return PageExistsResult{}, err
	}
	return PageExistsResult{Page: args.Page, Exists: exists, Source: "graphql"}, nil
}

// SearchPagesMCP is the MCP wrapper for SearchPages
func (c *Client) SearchPagesMCP(ctx context.Context, args SearchPagesArgs) (SearchPagesResult, error) {
	pages, err := c.SearchPages(ctx, args.SiteID, args.Query)
	if err != nil {
		return SearchPagesResult{}, err
	}
	if pages == nil {
		pages = []QuickModulePage{}
	}
	return SearchPagesResult{Pages: pages}, nil
}

// EditTagsMCP is the MCP wrapper for EditTags
func (c *Client) EditTagsMCP(ctx context.Context, args EditTagsArgs) (EditTagsResult, error) {
	if err := c.EnsureLoggedIn(ctx); err != nil {
		return EditTagsResult{}, err
	}
	resp, err := c.EditTags(ctx, args.Page, args.Tags)
	if err != nil {
		return EditTagsResult{}, err
	}
	return EditTagsResult{Page: args.Page, Tags: args.Tags, Status: resp.Status}, nil
}

// RenamePageMCP is the MCP wrapper for RenamePage
func (c *Client) RenamePageMCP(ctx context.Context, args RenamePageArgs) (RenamePageResult, error) {
	if err := c.EnsureLoggedIn(ctx); err != nil {
		return RenamePageResult{}, err
	}
	resp, err := c.RenamePage(ctx, args.Page, args.NewName)
	if err != nil {
		return RenamePageResult{}, err
	}
	return RenamePageResult{Page: args.Page, NewName: args.NewName, Status: resp.Status}, nil
}

// DeletePageMCP is the MCP wrapper for DeletePage
func (c *Client) DeletePageMCP(ctx context.Context, args DeletePageArgs) (DeletePageResult, error) {
	if err := c.EnsureLoggedIn(ctx); err != nil {
		return DeletePageResult{}, err
	}
	resp, err := c.DeletePage(ctx, args.Page)
	if err != nil {
		return DeletePageResult{}, err
	}
	return DeletePageResult{Page: args.Page, Status: resp.Status}, nil
}
