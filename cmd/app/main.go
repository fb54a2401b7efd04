package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/orderlist/internal"
	pkgconfig "github.com/starford/orderlist/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := []internal.Option{internal.WithConfig(cfg)}
	if out := cmd.String("out"); out != "" {
		opts = append(opts, internal.WithOutputDir(out))
	}
	if err := internal.RunMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func exportList(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithListFile(cmd.String("list")),
		internal.WithWatch(cmd.Bool("watch")),
	}
	if out := cmd.String("out"); out != "" {
		opts = append(opts, internal.WithOutputDir(out))
	}
	if err := internal.RunExport(ctx, opts...); err != nil {
		return fmt.Errorf("export error: %w", err)
	}
	return nil
}

func outFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Directory exported documents are saved to (overrides output.path)",
		Sources: cli.EnvVars("ORDERLIST_OUTPUT_DIR"),
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "orderlist",
		Usage:  "Order list ledger with icon rendering and paginated PDF export",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the order list over MCP stdio",
				Action: mcp,
				Flags:  []cli.Flag{outFlag()},
			},
			{
				Name:   "export",
				Usage:  "Export a YAML order list to items_list.pdf",
				Action: exportList,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "list",
						Aliases:  []string{"l"},
						Usage:    "Path to the YAML order list",
						Required: true,
					},
					outFlag(),
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Re-export whenever the list file changes",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
