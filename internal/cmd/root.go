package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/notion-normalize/internal/config"
	clierrors "github.com/salmonumbrella/notion-normalize/internal/errors"
	"github.com/salmonumbrella/notion-normalize/internal/logging"
	"github.com/salmonumbrella/notion-normalize/internal/ui"
)

const rootLong = `Flatten the property values of Notion pages into plain records.

Input is the raw JSON of a database query (the list envelope with "results"),
a JSON array of pages, a single page, or NDJSON with one page per line.
Each page becomes one record mapping property names to plain values, in the
order the properties appear. Records keep the order of the pages.`

func newRootCmd(app *App) *cobra.Command {
	// Global flags
	var (
		debugMode    bool
		outputFlag   string
		queryFlag    string
		jqFlag       string
		jsonPathFlag string
		errorFormat  string
		logFormat    string
		colorFlag    string
		quietFlag    bool
		compactJSON  bool
	)

	rootCmd := &cobra.Command{
		Use:   "notion-normalize",
		Short: "Flatten Notion database query results into plain records",
		Long:  rootLong,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Ensure Cobra doesn't emit its own error/usage text; we handle error output centrally.
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			cfg, err := loadConfigFor(cmd)
			if err != nil {
				return err
			}

			opts, err := parseGlobalOptions(cmd, cfg, app.stdout(), globalFlagInput{
				outputFlag:   outputFlag,
				queryFlag:    queryFlag,
				jqFlag:       jqFlag,
				jsonPathFlag: jsonPathFlag,
				errorFormat:  errorFormat,
				logFormat:    logFormat,
				colorFlag:    colorFlag,
				quietFlag:    quietFlag,
				compactJSON:  compactJSON,
			})
			if err != nil {
				return err
			}
			if err := validateGlobalOptions(&opts); err != nil {
				return err
			}

			// Inject parsed global options into context so subcommands can access them.
			ctx := buildRootContext(cmd.Context(), app, cfg, opts)
			u := ui.FromContext(ctx)

			// Logs share stderr with UI messages and follow the same color decision.
			slog.SetDefault(logging.New(app.stderr(), logging.Options{
				Debug:      debugMode,
				Format:     opts.logFormat,
				NoColor:    !u.Colored(),
				ForceColor: opts.color == ui.ColorAlways,
			}))

			if opts.queryNormalized {
				u.Warning("Normalized --query by removing \\! (shell escape); use ! without backslash.")
			}

			cmd.SetContext(ctx)
			// The root keeps the same context so a failing command prints its
			// error in the resolved format.
			cmd.Root().SetContext(ctx)

			slog.Debug("command start", "command", cmd.CommandPath(), "output", opts.format)
			return nil
		},
	}

	// Argument and flag errors happen before the pre-run; keep Cobra quiet
	// for those too.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.SetIn(app.stdin())
	rootCmd.SetOut(app.stdout())
	rootCmd.SetErr(app.stderr())

	// Set version info
	rootCmd.Version = app.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("notion-normalize %s (commit: %s, built: %s)\n", app.Version, app.Commit, app.BuildTime))

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&outputFlag, "output", "o", "", "Output format: json|ndjson|yaml|table|text|csv (default json)")
	pf.StringVarP(&queryFlag, "query", "q", "", "JQ expression applied to the records before printing")
	// Alias --jq to --query for discoverability
	pf.StringVar(&jqFlag, "jq", "", "Alias for --query")
	_ = pf.MarkHidden("jq")
	pf.StringVar(&jsonPathFlag, "jsonpath", "", "Extract a value using JSONPath (e.g. $[0].Name), applied before --query")
	pf.BoolVar(&compactJSON, "compact-json", false, "Output compact JSON (single-line) instead of pretty JSON")
	pf.BoolVar(&debugMode, "debug", false, "Enable debug logging")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text|json (default text)")
	pf.StringVar(&colorFlag, "color", "", "Color mode for messages and logs: auto|always|never")
	pf.StringVar(&errorFormat, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	pf.BoolVar(&quietFlag, "quiet", false, "Suppress non-essential output")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "compact-json", "cj")

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return clierrors.WrapUserError(err, "invalid flag", fmt.Sprintf("Run '%s --help' for usage", c.CommandPath()))
	})

	rootCmd.AddCommand(newNormalizeCmd())
	rootCmd.AddCommand(newTypesCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMCPCmd(app))

	return rootCmd
}

// loadConfigFor reads the config file. The config commands start even when
// the file is broken so "config path" still works; "show" and "set" report
// the problem themselves.
func loadConfigFor(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err == nil {
		return cfg, nil
	}
	if isConfigCommand(cmd) {
		slog.Debug("ignoring unreadable config file", "error", err)
		return &config.Config{}, nil
	}
	return nil, clierrors.WrapUserError(err, "failed to load config",
		"Fix the file shown by 'notion-normalize config path' or set NOTION_NORMALIZE_CONFIG")
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}
