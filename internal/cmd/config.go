package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/notion-normalize/internal/config"
	clierrors "github.com/salmonumbrella/notion-normalize/internal/errors"
	"github.com/salmonumbrella/notion-normalize/internal/output"
	"github.com/salmonumbrella/notion-normalize/internal/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
		Long: `Manage the notion-normalize configuration file at
~/.config/notion-normalize/config.yaml ($NOTION_NORMALIZE_CONFIG overrides the path).

Flags always win over the file.`,
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display every configuration key with the value currently in effect.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return clierrors.WrapUserError(err, "failed to load config", "Run 'notion-normalize config set <key> <value>' to rewrite it")
			}

			if *cfg == (config.Config{}) {
				path, _ := config.DefaultConfigPath()
				ui.FromContext(ctx).Info("No configuration at %s; showing defaults", path)
			}

			return printerForContext(ctx).PrintRecords(ctx, []*output.Record{configRecord(cfg)})
		},
	}
}

// configRecord lists the effective value of every key, filling in the
// built-in defaults for keys the file leaves unset.
func configRecord(cfg *config.Config) *output.Record {
	orDefault := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	rec := output.NewRecord()
	rec.Set("camelcase", cfg.CamelCase)
	rec.Set("collision", orDefault(cfg.Collision, "last"))
	rec.Set("strict", cfg.Strict)
	rec.Set("workers", cfg.Workers)
	rec.Set("output", orDefault(cfg.Output, string(output.FormatJSON)))
	rec.Set("color", orDefault(cfg.Color, "auto"))
	rec.Set("log_format", orDefault(cfg.LogFormat, "text"))
	return rec
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Supported keys:
  camelcase   - Rename property keys to camelCase (true, false)
  collision   - Key collision policy (last, first, error)
  strict      - Fail on properties without a type (true, false)
  workers     - Pages normalized in parallel (0 = sequential)
  output      - Default output format (json, ndjson, yaml, table, text, csv)
  color       - Default color mode (auto, always, never)
  log_format  - Log format (text, json)

Examples:
  notion-normalize config set camelcase true
  notion-normalize config set output csv
  notion-normalize config set collision error`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			key := strings.ToLower(strings.TrimSpace(args[0]))

			path, err := config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}
			cfg, err := config.LoadFromPath(path)
			if err != nil {
				return clierrors.WrapUserError(err, "failed to load config",
					fmt.Sprintf("Fix or remove %s, then try again", path))
			}

			value, err := cfg.Set(key, args[1])
			if err != nil {
				return clierrors.WrapUserError(err, "invalid config value", "Run 'notion-normalize config set --help' for supported keys")
			}

			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Set %s = %s in %s\n", key, value, path)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdoutFromContext(cmd.Context())
			path, err := config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("failed to determine config path: %w", err)
			}

			_, _ = fmt.Fprintln(out, path)

			// Show if file exists
			if _, err := os.Stat(path); err == nil {
				_, _ = fmt.Fprintln(out, "(file exists)")
			} else if os.IsNotExist(err) {
				_, _ = fmt.Fprintln(out, "(file does not exist)")
			}

			return nil
		},
	}
}
