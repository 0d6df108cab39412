package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"plandeck/internal/application/commands"
	"plandeck/internal/ports"
)

// WriteDeps carries what the mutating tools need. Branch and Index are optional.
type WriteDeps struct {
	Store  ports.PlanStore
	Writer ports.PlanWriter
	Branch ports.BranchChanges
	Index  ports.PlanIndex
	Trunk  string
	Logger *slog.Logger
}

// RegisterWriteTools adds the mutating plan tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, deps WriteDeps) {
	s.AddTool(renumberTool(), renumberHandler(deps))
}

// --- renumber_plans ---

func renumberTool() mcp.Tool {
	return mcp.NewTool("renumber_plans",
		mcp.WithDescription("Repair plan ids: renumber duplicated or missing ids and reorder parent/child families so parents and prerequisites come first. Defaults to a dry run."),
		mcp.WithBoolean("dry_run",
			mcp.Description("Report what would change without touching files (default true)"),
		),
		mcp.WithString("keep",
			mcp.Description("Path of a file that keeps its id when it conflicts"),
		),
		mcp.WithBoolean("branch_aware",
			mcp.Description("Renumber files changed on the current branch rather than those from trunk"),
		),
	)
}

func renumberHandler(deps WriteDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		opts := commands.RenumberOptions{
			DryRun:      req.GetBool("dry_run", true),
			BranchAware: req.GetBool("branch_aware", false),
			Trunk:       deps.Trunk,
		}
		if keep := req.GetString("keep", ""); keep != "" {
			// relative paths are taken from the plans directory, not the server's cwd
			if !filepath.IsAbs(keep) {
				keep = filepath.Join(deps.Store.Root(), keep)
			}
			opts.Keep = []string{keep}
		}

		cmd := commands.NewRenumberCommand(deps.Store, deps.Writer, opts)
		if deps.Branch != nil {
			cmd.WithBranchChanges(deps.Branch)
		}
		if deps.Index != nil {
			cmd.WithIndex(deps.Index)
		}
		if deps.Logger != nil {
			cmd.WithLogger(deps.Logger)
		}

		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatRenumber(result)), nil
	}
}

func formatRenumber(r *commands.RenumberResult) string {
	var sb strings.Builder
	sb.WriteString(r.Message)
	sb.WriteByte('\n')
	for _, c := range r.Changes {
		if c.IsRename() {
			fmt.Fprintf(&sb, "%s -> %s\n", c.OriginalPath, c.TargetPath)
		} else {
			fmt.Fprintf(&sb, "%s (references updated)\n", c.OriginalPath)
		}
	}
	for _, e := range r.CycleErrors {
		fmt.Fprintf(&sb, "skipped: %v\n", e)
	}
	return sb.String()
}
