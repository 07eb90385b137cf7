package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/Liam-Deacon/zettelkasten-mcp/internal"
	pkgconfig "github.com/Liam-Deacon/zettelkasten-mcp/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := cmd.String("notes-dir"); dir != "" {
		cfg.Notes.Dir = dir
	}
	if db := cmd.String("database"); db != "" {
		cfg.SQLite.Path = db
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithMCPStdio()); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func main() {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: "config/config.yaml",
			Value:       "config/config.yaml",
			Sources:     cli.EnvVars("ZETTELKASTEN_CONFIG_FILE"),
		},
		&cli.StringFlag{
			Name:    "notes-dir",
			Usage:   "Directory for storing note files",
			Sources: cli.EnvVars("ZETTELKASTEN_NOTES_DIR"),
		},
		&cli.StringFlag{
			Name:    "database",
			Usage:   "SQLite file path for the index database",
			Sources: cli.EnvVars("ZETTELKASTEN_DATABASE"),
		},
	}

	cmd := &cli.Command{
		Name:   "zettelkasten-mcp",
		Usage:  "Markdown Zettelkasten with a rebuildable SQLite index, served over MCP and REST",
		Flags:  flags,
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (REST API + SSE events)",
				Flags:  flags,
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Flags:  flags,
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
