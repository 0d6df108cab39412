package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"plandeck/internal/application/commands"
	"plandeck/internal/domain"
	"plandeck/internal/ports"
)

// RegisterReadTools adds the read-only plan tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, store ports.PlanStore) {
	s.AddTool(nextTool(), nextHandler(store))
	s.AddTool(listTool(), listHandler(store))
	s.AddTool(readPlanTool(), readPlanHandler(store))
}

// RegisterIndexTools adds the tools backed by the reference index.
func RegisterIndexTools(s *server.MCPServer, index ports.PlanIndex) {
	s.AddTool(dependentsTool(), dependentsHandler(index))
}

// --- next_plan ---

func nextTool() mcp.Tool {
	return mcp.NewTool("next_plan",
		mcp.WithDescription("Find the next plan ready to work on under a root plan. Walks dependencies and children, skipping done, blocked and maybe-priority plans."),
		mcp.WithNumber("root_id",
			mcp.Description("Id of the root plan"),
			mcp.Required(),
		),
	)
}

func nextHandler(store ports.PlanStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rootID := req.GetInt("root_id", 0)

		result, err := commands.NewNextCommand(store, rootID).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if !result.Found() {
			return mcp.NewToolResultText(result.Message), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s\n%s", result.Message, formatPlan(result.Path(), result.Plan))), nil
	}
}

// --- list_plans ---

func listTool() mcp.Tool {
	return mcp.NewTool("list_plans",
		mcp.WithDescription("List plan files ordered by id. Duplicated ids are listed once per file."),
		mcp.WithString("status",
			mcp.Description("Only list plans with this status"),
			mcp.Enum("pending", "in_progress", "done", "cancelled", "deferred"),
		),
	)
}

func listHandler(store ports.PlanStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := req.GetString("status", "")

		files, err := commands.NewListPlansCommand(store, status).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(files) == 0 {
			return mcp.NewToolResultText("No plans."), nil
		}

		var sb strings.Builder
		for _, f := range files {
			fmt.Fprintf(&sb, "%s  %s  %s  %s\n", formatID(f.Plan.ID), f.Plan.Status, f.Plan.Title, relTo(store.Root(), f.Path))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- read_plan ---

func readPlanTool() mcp.Tool {
	return mcp.NewTool("read_plan",
		mcp.WithDescription("Show a plan's fields and tasks by id."),
		mcp.WithNumber("id",
			mcp.Description("Plan id"),
			mcp.Required(),
		),
	)
}

func readPlanHandler(store ports.PlanStore) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetInt("id", 0)
		if id <= 0 {
			return toolError(fmt.Errorf("id must be a positive integer"))
		}

		set, err := store.ReadAll()
		if err != nil {
			return toolError(err)
		}
		p, ok := set.Get(id)
		if !ok {
			return toolError(fmt.Errorf("plan not found: %d", id))
		}
		return mcp.NewToolResultText(formatPlan(p.Filename, p)), nil
	}
}

// --- dependents ---

func dependentsTool() mcp.Tool {
	return mcp.NewTool("plan_dependents",
		mcp.WithDescription("List the plans that depend on, or are children of, a plan id."),
		mcp.WithNumber("id",
			mcp.Description("Plan id"),
			mcp.Required(),
		),
	)
}

func dependentsHandler(index ports.PlanIndex) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetInt("id", 0)

		if _, err := commands.NewSyncIndexCommand(index, false).Execute(ctx); err != nil {
			return toolError(err)
		}
		result, err := commands.NewDependentsCommand(index, id).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(result.Dependents) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("Nothing references plan %d.", id)), nil
		}

		var sb strings.Builder
		for _, d := range result.Dependents {
			fmt.Fprintf(&sb, "%s  %-10s  %s  %s\n", formatID(d.Node.PlanID), d.Kind, d.Node.Title, d.Node.Path)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatID(id int) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", id)
}

func formatPlan(path string, p *domain.Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d  %s\n", p.ID, p.Title)
	fmt.Fprintf(&sb, "path: %s\n", path)
	priority := p.Priority
	if priority == domain.PriorityUnset {
		priority = "unset"
	}
	fmt.Fprintf(&sb, "status: %s  priority: %s\n", p.Status, priority)
	if p.Parent != 0 {
		fmt.Fprintf(&sb, "parent: %d\n", p.Parent)
	}
	if len(p.Dependencies) > 0 {
		deps := make([]string, len(p.Dependencies))
		for i, d := range p.Dependencies {
			deps[i] = fmt.Sprintf("%d", d)
		}
		fmt.Fprintf(&sb, "dependencies: %s\n", strings.Join(deps, ", "))
	}
	if p.Goal != "" {
		fmt.Fprintf(&sb, "goal: %s\n", p.Goal)
	}
	for _, t := range p.Tasks {
		mark := " "
		if t.Done {
			mark = "x"
		}
		fmt.Fprintf(&sb, "[%s] %s\n", mark, t.Title)
	}
	return sb.String()
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
