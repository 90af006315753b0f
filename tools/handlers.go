package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/wikidot-mcp-server/internal/wikidot"
	"github.com/olgasafonova/wikidot-mcp-server/metrics"
	"github.com/olgasafonova/wikidot-mcp-server/tracing"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *wikidot.Client
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *wikidot.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		client: client,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	registered := 0
	for _, spec := range AllTools {
		if h.registerByName(server, spec) {
			registered++
		}
	}
	h.logger.Info("Registered all tools",
		"count", registered,
		"read", len(ToolsByCategory("read")),
		"lookup", len(ToolsByCategory("lookup")),
		"write", len(ToolsByCategory("write")))

	for _, spec := range ToolsByBackend("quickmodule") {
		h.logger.Debug("Tool uses the deprecated quickmodule.php endpoint", "tool", spec.Name)
	}
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) bool {
	tool := h.buildTool(spec)
	c := h.client

	switch spec.Method {
	case "ListPages":
		register(h, server, tool, spec, c.ListPagesMCP)
	case "GetPageSource":
		register(h, server, tool, spec, c.GetPageSourceMCP)
	case "GetTags":
		register(h, server, tool, spec, c.GetTagsMCP)
	case "GetPageID":
		register(h, server, tool, spec, c.GetPageIDMCP)
	case "PageExists":
		register(h, server, tool, spec, c.PageExistsMCP)
	case "SearchPages":
		register(h, server, tool, spec, c.SearchPagesMCP)
	case "EditTags":
		register(h, server, tool, spec, c.EditTagsMCP)
	case "RenamePage":
		register(h, server, tool, spec, c.RenamePageMCP)
	case "DeletePage":
		register(h, server, tool, spec, c.DeletePageMCP)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
		return false
	}
	return true
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register adds a tool to the MCP server, wrapping the client method with
// panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, handler(h, spec, method))
}

// handler builds the typed MCP handler for method.
func handler[Args, Result any](
	h *HandlerRegistry,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) mcp.ToolHandlerFor[Args, Result] {
	return func(ctx context.Context, req *mcp.CallToolRequest, args Args) (res *mcp.CallToolResult, out Result, err error) {
		defer h.recoverPanic(spec.Name, &err)

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(
			attribute.String("mcp.tool.backend", spec.Backend),
			attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
		)

		// Track in-flight requests
		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		var result Result
		if spec.RequiresAuth {
			span.SetAttributes(attribute.Bool("mcp.tool.requires_auth", true))
			err = h.client.EnsureLoggedIn(ctx)
		}
		if err == nil {
			result, err = method(ctx, args)
		}
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRequest(spec.Name, duration, false)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	}
}

// recoverPanic recovers from panics in tool handlers and turns them into
// a tool error.
func (h *HandlerRegistry) recoverPanic(toolName string, err *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		if err != nil {
			*err = fmt.Errorf("%s failed: internal error", toolName)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "backend", spec.Backend}

	switch a := args.(type) {
	case wikidot.ListPagesArgs:
		attrs = append(attrs, "category", a.Category, "tags", a.Tags)
	case wikidot.GetPageSourceArgs:
		attrs = append(attrs, "page", a.Page, "norender", a.Norender)
	case wikidot.GetTagsArgs:
		attrs = append(attrs, "page", a.Page, "site", a.Site)
	case wikidot.GetPageIDArgs:
		attrs = append(attrs, "page", a.Page, "site", a.Site)
	case wikidot.PageExistsArgs:
		attrs = append(attrs, "page", a.Page, "use_list_pages", a.UseListPages)
	case wikidot.SearchPagesArgs:
		attrs = append(attrs, "site_id", a.SiteID, "query", a.Query)
	case wikidot.EditTagsArgs:
		attrs = append(attrs, "page", a.Page, "tag_count", len(a.Tags))
	case wikidot.RenamePageArgs:
		attrs = append(attrs, "page", a.Page, "new_name", a.NewName)
	case wikidot.DeletePageArgs:
		attrs = append(attrs, "page", a.Page)
	}

	switch r := result.(type) {
	case wikidot.ListPagesResult:
		attrs = append(attrs, "status", r.Status, "body_chars", len(r.Body))
	case wikidot.GetPageSourceResult:
		attrs = append(attrs, "output_chars", len(r.Source))
	case wikidot.GetTagsResult:
		attrs = append(attrs, "tags", len(r.Tags))
	case wikidot.GetPageIDResult:
		attrs = append(attrs, "page_id", r.PageID, "found", r.Found)
	case wikidot.PageExistsResult:
		attrs = append(attrs, "exists", r.Exists, "source", r.Source)
	case wikidot.SearchPagesResult:
		attrs = append(attrs, "results_count", len(r.Pages))
	case wikidot.EditTagsResult:
		attrs = append(attrs, "status", r.Status)
	case wikidot.RenamePageResult:
		attrs = append(attrs, "status", r.Status)
	case wikidot.DeletePageResult:
		attrs = append(attrs, "status", r.Status)
	}

	h.logger.Info("Tool executed", attrs...)
}
