package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/notion-normalize/internal/batch"
	"github.com/salmonumbrella/notion-normalize/internal/config"
	clierrors "github.com/salmonumbrella/notion-normalize/internal/errors"
	"github.com/salmonumbrella/notion-normalize/internal/normalize"
	"github.com/salmonumbrella/notion-normalize/internal/ui"
)

// maxCollisionWarnings caps the per-collision warnings printed for one run.
const maxCollisionWarnings = 5

// normalizeFlags are shared by the normalize and mcp commands.
type normalizeFlags struct {
	camelCase bool
	collision string
	strict    bool
	workers   int
}

func (f *normalizeFlags) register(cmd *cobra.Command) {
	flagSet := cmd.Flags()
	flagSet.BoolVar(&f.camelCase, "camelcase", false, "Rename property keys to camelCase")
	flagSet.StringVar(&f.collision, "collision", "", "When two properties map to one key: last|first|error (default last)")
	flagSet.BoolVar(&f.strict, "strict", false, "Fail on properties that carry no type instead of emitting null")
	flagSet.IntVarP(&f.workers, "workers", "w", 0, "Pages normalized in parallel (0 or 1 = sequential)")

	flagAlias(flagSet, "camelcase", "cc")
}

// resolve merges flags over the config file. Flags left unset keep the
// configured value.
func (f *normalizeFlags) resolve(cmd *cobra.Command, cfg *config.Config) (normalize.Config, int, error) {
	out := normalize.Config{
		CamelCase: cfg.CamelCase,
		Strict:    cfg.Strict,
	}
	workers := cfg.Workers
	collision := cfg.Collision

	if commandFlagChanged(cmd, "camelcase") || commandFlagChanged(cmd, "cc") {
		out.CamelCase = f.camelCase
	}
	if commandFlagChanged(cmd, "strict") {
		out.Strict = f.strict
	}
	if commandFlagChanged(cmd, "collision") {
		collision = f.collision
	}
	if commandFlagChanged(cmd, "workers") {
		workers = f.workers
	}

	policy, err := normalize.ParseCollisionPolicy(collision)
	if err != nil {
		return normalize.Config{}, 0, err
	}
	out.Collision = policy

	if workers < 0 {
		return normalize.Config{}, 0, clierrors.NewUserError(
			fmt.Sprintf("invalid --workers %d", workers),
			"Use 0 or 1 for sequential, or a positive worker count",
		)
	}
	return out, workers, nil
}

func newNormalizeCmd() *cobra.Command {
	var flags normalizeFlags

	cmd := &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Flatten pages from a query response into records",
		Long: `Read the raw JSON of a Notion database query and print one record per page.

Without a file argument (or with "-") input is read from stdin.`,
		Example: `  notion-normalize normalize response.json
  curl -s ... | notion-normalize normalize --camelcase -o csv
  notion-normalize normalize pages.ndjson -q '.[] | select(.done) | .name'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, workers, err := flags.resolve(cmd, ConfigFromContext(ctx))
			if err != nil {
				return err
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runNormalize(ctx, path, cfg, workers)
		},
	}
	flags.register(cmd)
	return cmd
}

func runNormalize(ctx context.Context, path string, cfg normalize.Config, workers int) error {
	stdin := stdinFromContext(ctx)
	if path == "-" && isTerminal(stdin) {
		return clierrors.NewUserError(
			"no input: stdin is a terminal",
			"Pass a file path, or pipe a query response: notion-normalize normalize < response.json",
		)
	}

	start := time.Now()
	in, err := batch.ReadFile(path, stdin)
	if errors.Is(err, fs.ErrNotExist) {
		return clierrors.WrapUserError(err, "cannot read input", "Check the file path, or use - to read stdin")
	}
	if err != nil {
		return err
	}
	slog.Debug("read input", "source", path, "shape", in.Shape, "pages", len(in.Pages))

	var (
		mu         sync.Mutex
		collisions []normalize.Collision
	)
	cfg.OnCollision = func(c normalize.Collision) {
		mu.Lock()
		collisions = append(collisions, c)
		mu.Unlock()
	}

	records, err := normalize.NormalizeConcurrent(ctx, in.Pages, cfg, workers)
	if err != nil {
		return err
	}
	slog.Debug("normalized pages", "records", len(records), "workers", workers, "elapsed", time.Since(start))

	u := ui.FromContext(ctx)
	reportCollisions(u, collisions, cfg.Collision)
	if !cfg.Strict {
		var untyped *clierrors.ValidationError
		if errors.As(normalize.Validate(in.Pages), &untyped) {
			u.Warning("%s: %s; emitted null (use --strict to fail instead)", untyped.Field, untyped.Message)
		}
	}
	if in.HasMore {
		cursor := ""
		if in.NextCursor != nil {
			cursor = *in.NextCursor
		}
		slog.Debug("input has more results", "next_cursor", cursor)
		u.Warning("The query response has more pages (next_cursor %s); only this batch was normalized.", cursor)
	}

	return printerForContext(ctx).PrintRecords(ctx, records)
}

func reportCollisions(u *ui.UI, collisions []normalize.Collision, policy normalize.CollisionPolicy) {
	// Workers report out of order.
	sort.SliceStable(collisions, func(i, j int) bool { return collisions[i].Page < collisions[j].Page })

	kept := "later"
	if policy == normalize.CollisionFirst {
		kept = "first"
	}
	for i, c := range collisions {
		slog.Debug("key collision", "page", c.Page, "key", c.Key, "first", c.First, "second", c.Second, "policy", policy)
		if i < maxCollisionWarnings {
			u.Warning("page %d: %q and %q both map to %q; kept the %s value", c.Page, c.First, c.Second, c.Key, kept)
		}
	}
	if extra := len(collisions) - maxCollisionWarnings; extra > 0 {
		u.Warning("%d more key collisions not shown (use --debug to log them all)", extra)
	}
}
