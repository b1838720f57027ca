// Package mcptool exposes the knowledge base over the Model Context
// Protocol. Every tool is a thin adapter: parse arguments, call the KB,
// serialize the answer as JSON text.
package mcptool

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"appatlas/internal/kb"
	"appatlas/internal/util/jsonutil"
)

// Register adds every knowledge-base tool to the MCP server.
func Register(s *server.MCPServer, svc *kb.KB) {
	s.AddTool(listApplicationsTool(), listApplicationsHandler(svc))
	s.AddTool(getAppOverviewTool(), getAppOverviewHandler(svc))
	s.AddTool(searchBundlesTool(), searchBundlesHandler(svc))
	s.AddTool(searchObjectsTool(), searchObjectsHandler(svc))
	s.AddTool(getBundleTool(), getBundleHandler(svc))
	s.AddTool(getDependenciesTool(), getDependenciesHandler(svc))
	s.AddTool(getObjectDetailTool(), getObjectDetailHandler(svc))
	s.AddTool(listOrphansTool(), listOrphansHandler(svc))
	s.AddTool(getOrphanTool(), getOrphanHandler(svc))
}

// --- list_applications ---

func listApplicationsTool() mcp.Tool {
	return mcp.NewTool("list_applications",
		mcp.WithDescription("List all applications available in the knowledge base. Returns application names, object counts, and bundle coverage stats. Call this first to discover what's available."),
	)
}

func listApplicationsHandler(svc *kb.KB) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		apps, err := svc.ListApplications(ctx)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(apps)
	}
}

// --- get_app_overview ---

func getAppOverviewTool() mcp.Tool {
	return mcp.NewTool("get_app_overview",
		mcp.WithDescription("Get a comprehensive overview of an application in a single call: package metadata, object counts by type, bundle index with key objects, dependency summary, and coverage. Use this as the starting point before drilling into specific bundles or objects."),
		mcp.WithString("app_name",
			mcp.Description("Application folder name (from list_applications)."),
			mcp.Required(),
		),
	)
}

func getAppOverviewHandler(svc *kb.KB) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		app := req.GetString("app_name", "")
		if app == "" {
			return toolError(fmt.Errorf("app_name is required"))
		}
		overview, err := svc.Overview(ctx, app)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(overview)
	}
}

// --- search_bundles ---

func searchBundlesTool() mcp.Tool {
	return mcp.NewTool("search_bundles",
		mcp.WithDescription("Search bundles by name within an application. Use this to quickly find relevant bundles instead of browsing the full list."),
		mcp.WithString("app_name",
			mcp.Description("Application folder name."),
			mcp.Required(),
		),
		mcp.WithString("query",
			mcp.Description("Case-insensitive substring to match against bundle root names."),
			mcp.Required(),
		),
		mcp.WithString("bundle_type",
			mcp.Description("Optional filter: one of action, process, page, site, dashboard, web_api."),
		),
	)
}

func searchBundlesHandler(svc *kb.KB) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		app := req.GetString("app_name", "")
		query := req.GetString("query", "")
		if app == "" || query == "" {
			return toolError(fmt.Errorf("app_name and query are required"))
		}
		results, err := svc.SearchBundles(ctx, app, query, req.GetString("bundle_type", ""))
		if err != nil {
			return toolError(err)
		}
		return jsonResult(results)
	}
}

// --- search_objects ---

func searchObjectsTool() mcp.Tool {
	return mcp.NewTool("search_objects",
		mcp.WithDescription("Search parsed objects by name within an application."),
		mcp.WithString("app_name",
			mcp.Description("Application folder name."),
			mcp.Required(),
		),
		mcp.WithString("query",
			mcp.Description("Case-insensitive substring to match against object names."),
			mcp.Required(),
		),
		mcp.WithString("object_type",
			mcp.Description(`Optional filter (e.g. "Interface", "Expression Rule", "Process Model", "Record Type", "CDT", "Integration", "Web API", "Constant").`),
		),
	)
}

func searchObjectsHandler(svc *kb.KB) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		app := req.GetString("app_name", "")
		query := req.GetString("query", "")
		if app == "" || query == "" {
			return toolError(fmt.Errorf("app_name and query are required"))
		}
		results, err := svc.SearchObjects(ctx, app, query, req.GetString("object_type", ""))
		if err != nil {
			return toolError(err)
		}
		return jsonResult(results)
	}
}

// --- get_bundle ---

func getBundleTool() mcp.Tool {
	return mcp.NewTool("get_bundle",
		mcp.WithDescription("Get a bundle's content at the requested detail level."),
		mcp.WithString("app_name",
			mcp.Description("Application folder name."),
			mcp.Required(),
		),
		mcp.WithString("bundle_id",
			mcp.Description("Bundle ID from search_bundles/get_app_overview. Also accepts the root name with spaces; it is resolved automatically."),
			mcp.Required(),
		),
		mcp.WithString("detail_level",
			mcp.Description(`"summary" for metadata + object names + flow (small, fast), "structure" for the full structure (no code), "full" for structure with source text merged in.`),
		),
	)
}

func getBundleHandler(svc *kb.KB) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		app := req.GetString("app_name", "")
		bundleID := req.GetString("bundle_id", "")
		if app == "" || bundleID == "" {
			return toolError(fmt.Errorf("app_name and bundle_id are required"))
		}
		result, err := svc.Bundle(ctx, app, bundleID, req.GetString("detail_level", kb.DetailSummary))
		if err != nil {
			return toolError(err)
		}
		return jsonResult(result)
	}
}

// --- get_dependencies ---

func getDependenciesTool() mcp.Tool {
	return mcp.NewTool("get_dependencies",
		mcp.WithDescription("Get the dependency subgraph for a specific object by name: what it calls (outbound) and what calls it (inbound)."),
		mcp.WithString("app_name",
			mcp.Description("Application folder name."),
			mcp.Required(),
		),
		mcp.WithString("object_name",
			mcp.Description("Case-insensitive object name to look up."),
			mcp.Required(),
		),
	)
}

func getDependenciesHandler(svc *kb.KB) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		app := req.GetString("app_name", "")
		name := req.GetString("object_name", "")
		if app == "" || name == "" {
			return toolError(fmt.Errorf("app_name and object_name are required"))
		}
		detail, err := svc.Dependencies(ctx, app, name)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(detail)
	}
}

// --- get_object_detail ---

func getObjectDetailTool() mcp.Tool {
	return mcp.NewTool("get_object_detail",
		mcp.WithDescription("Get full dependency and bundle info for a specific object by UUID."),
		mcp.WithString("app_name",
			mcp.Description("Application folder name."),
			mcp.Required(),
		),
		mcp.WithString("object_uuid",
			mcp.Description("The object's UUID."),
			mcp.Required(),
		),
	)
}

func getObjectDetailHandler(svc *kb.KB) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		app := req.GetString("app_name", "")
		uuid := req.GetString("object_uuid", "")
		if app == "" || uuid == "" {
			return toolError(fmt.Errorf("app_name and object_uuid are required"))
		}
		detail, err := svc.ObjectDetail(ctx, app, uuid)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(detail)
	}
}

// --- list_orphans ---

func listOrphansTool() mcp.Tool {
	return mcp.NewTool("list_orphans",
		mcp.WithDescription("List all orphaned objects (not reachable from any entry point)."),
		mcp.WithString("app_name",
			mcp.Description("Application folder name."),
			mcp.Required(),
		),
	)
}

func listOrphansHandler(svc *kb.KB) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		app := req.GetString("app_name", "")
		if app == "" {
			return toolError(fmt.Errorf("app_name is required"))
		}
		index, err := svc.Orphans(ctx, app)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(index)
	}
}

// --- get_orphan ---

func getOrphanTool() mcp.Tool {
	return mcp.NewTool("get_orphan",
		mcp.WithDescription("Get full detail (including code) for an orphaned object."),
		mcp.WithString("app_name",
			mcp.Description("Application folder name."),
			mcp.Required(),
		),
		mcp.WithString("object_uuid",
			mcp.Description("The orphan object's UUID."),
			mcp.Required(),
		),
	)
}

func getOrphanHandler(svc *kb.KB) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		app := req.GetString("app_name", "")
		uuid := req.GetString("object_uuid", "")
		if app == "" || uuid == "" {
			return toolError(fmt.Errorf("app_name and object_uuid are required"))
		}
		detail, err := svc.Orphan(ctx, app, uuid)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(detail)
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	text, err := jsonutil.MarshalIndentNoEscape(v, "  ")
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(string(text)), nil
}
