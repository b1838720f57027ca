// atlas-mcp serves a built knowledge base over the Model Context Protocol
// on stdio. Exactly one backend must be selected: a local data directory, a
// GitHub repository, or the SQL artifact store.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"appatlas/internal/artifact"
	"appatlas/internal/config"
	"appatlas/internal/kb"
	"appatlas/internal/mcptool"
)

func main() {
	dataDir := flag.String("data-dir", "", "local directory containing application artifact folders")
	github := flag.String("github", "", "GitHub repository as OWNER/REPO")
	branch := flag.String("branch", "", "git branch (default main)")
	prefix := flag.String("data-prefix", "", "path prefix in the repo for application folders (default data)")
	useSQL := flag.Bool("sql", false, "read from the SQL store (ATLAS_SQL_DSN)")
	flag.Parse()

	cfg := config.Load()

	src, err := buildSource(cfg, *dataDir, *github, *branch, *prefix, *useSQL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "atlas-mcp:", err)
		os.Exit(1)
	}
	cached, err := kb.NewCached(src, cfg.CacheSize)
	if err != nil {
		fmt.Fprintln(os.Stderr, "atlas-mcp:", err)
		os.Exit(1)
	}

	mcpServer := server.NewMCPServer(
		"appatlas",
		"2.0.0",
		server.WithToolCapabilities(true),
	)
	mcptool.Register(mcpServer, kb.New(cached))

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("atlas-mcp: %v", err)
	}
}

func buildSource(cfg *config.Config, dataDir, github, branch, prefix string, useSQL bool) (kb.Source, error) {
	selected := 0
	for _, on := range []bool{dataDir != "", github != "", useSQL} {
		if on {
			selected++
		}
	}
	if selected != 1 {
		return nil, fmt.Errorf("exactly one of --data-dir, --github, or --sql is required")
	}

	switch {
	case dataDir != "":
		return kb.NewLocalSource(dataDir)
	case useSQL:
		store, err := artifact.OpenSQL(cfg.SQLDSN)
		if err != nil {
			return nil, err
		}
		return kb.NewSQLSource(store), nil
	default:
		parts := strings.SplitN(github, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("--github must be OWNER/REPO")
		}
		gh := cfg.GitHub
		gh.Owner, gh.Repo = parts[0], parts[1]
		if branch != "" {
			gh.Branch = branch
		}
		if prefix != "" {
			gh.Prefix = prefix
		}
		return kb.NewGitHubSource(gh)
	}
}
