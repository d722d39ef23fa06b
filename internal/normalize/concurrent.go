package normalize

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/salmonumbrella/notion-normalize/internal/notion"
)

// NormalizeConcurrent is Normalize spread over up to workers goroutines.
// The result keeps page order. When several pages fail, which error is
// returned is unspecified.
func NormalizeConcurrent(ctx context.Context, pages []notion.Page, cfg Config, workers int) ([]*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if workers <= 1 || len(pages) < 2 {
		return Normalize(pages, cfg)
	}
	if cfg.Strict {
		if err := Validate(pages); err != nil {
			return nil, err
		}
	}

	out := make([]*Record, len(pages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := normalizePage(i, pages[i].Properties, cfg)
			if err != nil {
				return err
			}
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
