package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/notion-normalize/internal/config"
	clierrors "github.com/salmonumbrella/notion-normalize/internal/errors"
	"github.com/salmonumbrella/notion-normalize/internal/iocontext"
	"github.com/salmonumbrella/notion-normalize/internal/logging"
	"github.com/salmonumbrella/notion-normalize/internal/output"
	"github.com/salmonumbrella/notion-normalize/internal/ui"
)

// EnvOutput sets the output format when --output is not given.
const EnvOutput = "NOTION_NORMALIZE_OUTPUT"

type globalFlagInput struct {
	outputFlag   string
	queryFlag    string
	jqFlag       string
	jsonPathFlag string
	errorFormat  string
	logFormat    string
	colorFlag    string
	quietFlag    bool
	compactJSON  bool
}

type globalOptions struct {
	format          output.Format
	query           string
	queryNormalized bool
	jsonPath        string
	compactJSON     bool
	quiet           bool
	errorFormat     string
	logFormat       logging.Format
	color           ui.ColorMode

	queryFlagSet bool
	jqFlagSet    bool
}

func parseGlobalOptions(cmd *cobra.Command, cfg *config.Config, stdout io.Writer, flags globalFlagInput) (globalOptions, error) {
	opts := globalOptions{
		jsonPath:    strings.TrimSpace(flags.jsonPathFlag),
		compactJSON: flags.compactJSON,
		quiet:       flags.quietFlag,
		errorFormat: flags.errorFormat,

		queryFlagSet: strings.TrimSpace(flags.queryFlag) != "",
		jqFlagSet:    strings.TrimSpace(flags.jqFlag) != "",
	}

	// Output format: flag, then environment, then config file, then json.
	formatStr := flags.outputFlag
	outputFlagSet := commandFlagChanged(cmd, "output") || commandFlagChanged(cmd, "out")
	if !outputFlagSet {
		if env := strings.TrimSpace(os.Getenv(EnvOutput)); env != "" {
			formatStr = env
		} else {
			formatStr = cfg.GetOutput()
		}
	}
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return globalOptions{}, err
	}
	opts.format = format

	// Piped machine-readable output needs no chatter on stderr.
	if !commandFlagChanged(cmd, "quiet") && !isTerminal(stdout) {
		switch opts.format {
		case output.FormatJSON, output.FormatNDJSON, output.FormatYAML:
			opts.quiet = true
		}
	}

	opts.query = flags.queryFlag
	if opts.query == "" {
		opts.query = flags.jqFlag
	}
	opts.query, opts.queryNormalized = output.NormalizeQuery(strings.TrimSpace(opts.query))

	logFormatStr := flags.logFormat
	if logFormatStr == "" {
		logFormatStr = cfg.LogFormat
	}
	opts.logFormat, err = logging.ParseFormat(strings.ToLower(strings.TrimSpace(logFormatStr)))
	if err != nil {
		return globalOptions{}, clierrors.WrapUserError(err, "invalid --log-format", "Use one of: text, json")
	}

	colorStr := flags.colorFlag
	if colorStr == "" {
		colorStr = cfg.GetColor()
	}
	opts.color, err = ui.ParseColorMode(strings.ToLower(strings.TrimSpace(colorStr)))
	if err != nil {
		return globalOptions{}, clierrors.WrapUserError(err, "invalid --color", "Use one of: auto, always, never")
	}

	return opts, nil
}

func validateGlobalOptions(opts *globalOptions) error {
	if opts.queryFlagSet && opts.jqFlagSet {
		return errOnlyOne("--query", "--jq")
	}
	if opts.query != "" {
		if _, err := output.CompileQuery(opts.query); err != nil {
			return err
		}
	}
	if err := validateErrorFormat(opts.errorFormat); err != nil {
		return err
	}
	return nil
}

func buildRootContext(ctx context.Context, app *App, cfg *config.Config, opts globalOptions) context.Context {
	ctx = iocontext.WithIO(ctx, app.stdout(), app.stderr())
	ctx = iocontext.WithStdin(ctx, app.stdin())
	ctx = output.WithFormat(ctx, opts.format)
	ctx = output.WithQuery(ctx, opts.query)
	ctx = output.WithJSONPath(ctx, opts.jsonPath)
	ctx = output.WithCompactJSON(ctx, opts.compactJSON)
	ctx = WithConfig(ctx, cfg)
	ctx = WithErrorFormat(ctx, opts.errorFormat)

	u := ui.New(app.stderr(), opts.color)
	u.SetQuiet(opts.quiet)
	ctx = ui.WithUI(ctx, u)
	return ctx
}

func errOnlyOne(left, right string) error {
	return clierrors.NewUserError(fmt.Sprintf("use only one of %s or %s", left, right), "")
}

func commandFlagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}

	for current := cmd; current != nil; current = current.Parent() {
		if flag := current.Flags().Lookup(name); flag != nil && flag.Changed {
			return true
		}
		if flag := current.PersistentFlags().Lookup(name); flag != nil && flag.Changed {
			return true
		}
	}
	return false
}
