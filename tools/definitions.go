package tools

// AllTools contains all tool specifications for the Wikidot MCP server.
// Tool descriptions follow a structured format for LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// READ TOOLS
	// ==========================================================================
	{
		Name:     "wikidot_list_pages",
		Method:   "ListPages",
		Title:    "List Pages",
		Category: "read",
		Backend:  "module",
		Description: `Run the Wikidot ListPages module on the configured site.

USE WHEN: User asks "list pages tagged X", "newest pages in category Y", "show page titles matching a selector".

NOT FOR: Checking a single page (use wikidot_page_exists). Not for raw page HTML (use wikidot_get_page_source).

PARAMETERS:
- category: Category name (optional)
- tags: Tag selector such as "+scp -joke" (optional)
- order: Sort order such as "created_at desc" (optional)
- per_page: Results per page (optional)
- module_body: Body template, e.g. "%%fullname%%" (optional)
- params: Extra raw ListPages parameters (optional)

RETURNS: Module status, server timestamp, and the rendered body HTML.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wikidot_get_page_source",
		Method:   "GetPageSource",
		Title:    "Get Page Source",
		Category: "read",
		Backend:  "page",
		Description: `Fetch the HTML of a Wikidot page.

USE WHEN: User says "show me the page X", "fetch the HTML of X", "what does page X look like".

NOT FOR: Page metadata such as tags (use wikidot_get_tags).

PARAMETERS:
- page: Page name or absolute URL (required)
- norender: Return the page chrome without rendered content (default false)

RETURNS: The page HTML.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wikidot_get_tags",
		Method:   "GetTags",
		Title:    "Get Page Tags",
		Category: "read",
		Backend:  "graphql",
		Description: `Get the tags of a page from the GraphQL mirror.

USE WHEN: User asks "what tags does X have", "is X tagged euclid".

NOT FOR: Changing tags (use wikidot_edit_tags).

PARAMETERS:
- page: Page name (required)
- site: Site short name (default: configured site)

RETURNS: Tag list, empty when the mirror does not know the page.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// LOOKUP TOOLS
	// ==========================================================================
	{
		Name:     "wikidot_get_page_id",
		Method:   "GetPageID",
		Title:    "Resolve Page ID",
		Category: "lookup",
		Backend:  "graphql",
		Description: `Resolve the numeric Wikidot page ID for a page.

USE WHEN: User asks "what is the page id of X", or another tool needs a page ID.

NOT FOR: Checking existence only (use wikidot_page_exists).

PARAMETERS:
- page: Page name (required)
- site: Site short name (default: configured site)

RETURNS: The page ID and found=false when neither the mirror nor the page HTML yields one.

NOTE: Falls back to parsing the page HTML when the mirror has no ID.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wikidot_page_exists",
		Method:   "PageExists",
		Title:    "Page Exists",
		Category: "lookup",
		Backend:  "graphql",
		Description: `Check whether a page exists.

USE WHEN: User asks "does page X exist", "is X taken".

NOT FOR: Fetching page content (use wikidot_get_page_source).

PARAMETERS:
- page: Page name (required)
- site: Site short name (default: configured site)
- use_list_pages: Ask the live site via ListPages instead of the mirror (default false)
- category: Category for the ListPages check (default _default)

RETURNS: exists flag and which source answered.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "wikidot_search_pages",
		Method:   "SearchPages",
		Title:    "Search Pages",
		Category: "lookup",
		Backend:  "quickmodule",
		Description: `Look up pages by title prefix through the quick-module endpoint.

USE WHEN: User asks "which pages start with X" and the numeric site ID is known.

NOT FOR: Tag or category listings (use wikidot_list_pages).

PARAMETERS:
- site_id: Numeric Wikidot site ID (required)
- query: Title prefix (required)

RETURNS: Matching unix names and titles.

NOTE: The quick-module endpoint is deprecated upstream.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// WRITE TOOLS
	// ==========================================================================
	{
		Name:     "wikidot_edit_tags",
		Method:   "EditTags",
		Title:    "Edit Page Tags",
		Category: "write",
		Backend:  "module",
		Description: `Replace the full tag list of a page.

USE WHEN: User says "tag X with Y", "remove tag Z from X", "set tags on X".

PARAMETERS:
- page: Page name (required)
- tags: Complete new tag list (required); tags cannot contain spaces

RETURNS: Module status.

NOTE: Requires WIKIDOT_USERNAME and WIKIDOT_PASSWORD. Existing tags not in the list are removed.`,
		ReadOnly:     false,
		Destructive:  true,
		Idempotent:   true,
		OpenWorld:    true,
		RequiresAuth: true,
	},
	{
		Name:     "wikidot_rename_page",
		Method:   "RenamePage",
		Title:    "Rename Page",
		Category: "write",
		Backend:  "module",
		Description: `Rename (move) a page.

USE WHEN: User says "rename X to Y", "move page X".

PARAMETERS:
- page: Current page name (required)
- new_name: New page name (required)

RETURNS: Module status.

NOTE: Requires authentication.`,
		ReadOnly:     false,
		Destructive:  true,
		Idempotent:   false,
		OpenWorld:    true,
		RequiresAuth: true,
	},
	{
		Name:     "wikidot_delete_page",
		Method:   "DeletePage",
		Title:    "Delete Page",
		Category: "write",
		Backend:  "module",
		Description: `Delete a page.

USE WHEN: User explicitly asks to delete page X.

PARAMETERS:
- page: Page name (required)

RETURNS: Module status.

WARNING: Confirm with the user first. Requires authentication.`,
		ReadOnly:     false,
		Destructive:  true,
		Idempotent:   false,
		OpenWorld:    true,
		RequiresAuth: true,
	},
}
