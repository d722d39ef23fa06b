package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/notion-normalize/internal/mcp"
	"github.com/salmonumbrella/notion-normalize/internal/output"
)

func newMCPCmd(app *App) *cobra.Command {
	var flags normalizeFlags

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the normalizer as MCP tools over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout.

Tools:
  ` + mcp.ToolNormalize + `       - flatten a query response into records
  ` + mcp.ToolPropertyTypes + `  - list how each property type is flattened

The flags and config file set the defaults for arguments a tool call leaves out.
Logs go to stderr; stdout carries only protocol messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, workers, err := flags.resolve(cmd, ConfigFromContext(ctx))
			if err != nil {
				return err
			}

			srv := mcp.NewServer(app.Version, mcp.Defaults{
				CamelCase: cfg.CamelCase,
				Collision: cfg.Collision,
				Strict:    cfg.Strict,
				Workers:   workers,
				Output:    output.FormatFromContext(ctx),
			}, slog.Default())
			return srv.Serve(ctx, stdinFromContext(ctx), stdoutFromContext(ctx), stderrFromContext(ctx))
		},
	}
	flags.register(cmd)
	return cmd
}
