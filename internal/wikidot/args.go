package wikidot

// ListPagesArgs contains parameters for a ListPages module call
type ListPagesArgs struct {
	Category   string            `json:"category,omitempty" jsonschema_description:"Category to list (default: all categories visible to ListPages)"`
	Tags       string            `json:"tags,omitempty" jsonschema_description:"ListPages tag selector, e.g. '+scp -joke'"`
	Order      string            `json:"order,omitempty" jsonschema_description:"Sort order, e.g. 'created_at desc'"`
	PerPage    int               `json:"per_page,omitempty" jsonschema_description:"Pages per result page (ListPages perPage)"`
	ModuleBody string            `json:"module_body,omitempty" jsonschema_description:"ListPages module body template, e.g. '%%fullname%%'"`
	Params     map[string]string `json:"params,omitempty" jsonschema_description:"Additional raw ListPages parameters"`
}

// ListPagesResult is the result of a ListPages call
type ListPagesResult struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Body      string `json:"body"`
}

// GetPageSourceArgs contains parameters for fetching page HTML
type GetPageSourceArgs struct {
	Page     string `json:"page" jsonschema:"required" jsonschema_description:"Page name (e.g. 'scp-173') or absolute URL"`
	Norender bool   `json:"norender,omitempty" jsonschema_description:"Fetch the page chrome without rendering its content"`
}

// GetPageSourceResult is the result of fetching page HTML
type GetPageSourceResult struct {
	Page   string `json:"page"`
	Source string `json:"source"`
}

// GetPageIDArgs contains parameters for resolving a page ID
type GetPageIDArgs struct {
	Page string `json:"page" jsonschema:"required" jsonschema_description:"Page name, e.g. 'scp-173'"`
	Site string `json:"site,omitempty" jsonschema_description:"Site short name (default: the configured site)"`
}

// GetPageIDResult is the result of resolving a page ID
type GetPageIDResult struct {
	Page   string `json:"page"`
	Site   string `json:"site"`
	PageID int    `json:"page_id"`
	Found  bool   `json:"found"`
}

// GetTagsArgs contains parameters for reading page tags
type GetTagsArgs struct {
	Page string `json:"page" jsonschema:"required" jsonschema_description:"Page name"`
	Site string `json:"site,omitempty" jsonschema_description:"Site short name (default: the configured site)"`
}

// GetTagsResult is the result of reading page tags
type GetTagsResult struct {
	Page string   `json:"page"`
	Tags []string `json:"tags"`
}

// PageExistsArgs contains parameters for an existence check
type PageExistsArgs struct {
	Page         string `json:"page" jsonschema:"required" jsonschema_description:"Page name"`
	Site         string `json:"site,omitempty" jsonschema_description:"Site short name (default: the configured site)"`
	UseListPages bool   `json:"use_list_pages,omitempty" jsonschema_description:"Check the live site through ListPages instead of the GraphQL mirror"`
	Category     string `json:"category,omitempty" jsonschema_description:"Category for the ListPages check (default: _default)"`
}

// PageExistsResult is the result of an existence check
type PageExistsResult struct {
	Page   string `json:"page"`
	Exists bool   `json:"exists"`
	Source string `json:"source"` // graphql or list_pages
}

// SearchPagesArgs contains parameters for a quick-module page lookup
type SearchPagesArgs struct {
	SiteID int    `json:"site_id" jsonschema:"required" jsonschema_description:"Numeric Wikidot site ID"`
	Query  string `json:"query" jsonschema:"required" jsonschema_description:"Title prefix to look up"`
}

// SearchPagesResult is the result of a quick-module page lookup
type SearchPagesResult struct {
	Pages []QuickModulePage `json:"pages"`
}

// EditTagsArgs contains parameters for replacing page tags
type EditTagsArgs struct {
	Page string   `json:"page" jsonschema:"required" jsonschema_description:"Page name"`
	Tags []string `json:"tags" jsonschema:"required" jsonschema_description:"Complete new tag list; tags cannot contain spaces"`
}

// EditTagsResult is the result of replacing page tags
type EditTagsResult struct {
	Page   string   `json:"page"`
	Tags   []string `json:"tags"`
	Status string   `json:"status"`
}

// RenamePageArgs contains parameters for renaming a page
type RenamePageArgs struct {
	Page    string `json:"page" jsonschema:"required" jsonschema_description:"Current page name"`
	NewName string `json:"new_name" jsonschema:"required" jsonschema_description:"New page name"`
}

// RenamePageResult is the result of renaming a page
type RenamePageResult struct {
	Page    string `json:"page"`
	NewName string `json:"new_name"`
	Status  string `json:"status"`
}

// DeletePageArgs contains parameters for deleting a page
type DeletePageArgs struct {
	Page string `json:"page" jsonschema:"required" jsonschema_description:"Page name"`
}

// DeletePageResult is the result of deleting a page
type DeletePageResult struct {
	Page   string `json:"page"`
	Status string `json:"status"`
}
