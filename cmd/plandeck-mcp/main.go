package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"plandeck/internal/adapters/filesystem"
	"plandeck/internal/adapters/git"
	mcpadapter "plandeck/internal/adapters/mcp"
	"plandeck/internal/adapters/sqlite"
	"plandeck/internal/config"
	"plandeck/internal/logging"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("plandeck-mcp: %v", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		log.Fatalf("plandeck-mcp: %v", err)
	}

	dirFlag := flag.String("dir", cfg.PlansDir, "path to the plans directory")
	flag.Parse()

	// stdout carries the protocol, so logs always go to stderr
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: os.Stderr,
	})
	logging.SetDefault(logger)

	opts := []filesystem.Option{filesystem.WithLogger(logger)}
	if cfg.Schema != "" {
		opts = append(opts, filesystem.WithSchema(cfg.Schema))
	}
	repo := filesystem.NewRepository(*dirFlag, opts...)

	idx := sqlite.NewIndex(repo, cfg.IndexPath)
	if err := idx.Open(repo.Root()); err != nil {
		log.Fatalf("plandeck-mcp: failed to open index: %v", err)
	}
	defer idx.Close()

	deps := mcpadapter.WriteDeps{
		Store:  repo,
		Writer: filesystem.NewBatch(repo),
		Index:  idx,
		Trunk:  cfg.Trunk,
		Logger: logger,
	}
	if changes := git.NewChanges(repo.Root()); changes.IsAvailable() {
		deps.Branch = changes
	}

	mcpServer := server.NewMCPServer(
		"plandeck-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, repo)
	mcpadapter.RegisterIndexTools(mcpServer, idx)
	mcpadapter.RegisterWriteTools(mcpServer, deps)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("plandeck-mcp: %v", err)
	}
}
