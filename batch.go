package recmap

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EncodeAll encodes independent documents against one shared record.
// Results keep the order of roots. The first failure cancels the remaining
// work and is returned wrapped with the document index; Issues survive the
// wrapping and can be extracted with AsIssues.
func EncodeAll(ctx context.Context, rec *Record, roots []*Node, opts ...Options) ([]*EncodedRecord, error) {
	o := lastOpt(opts)
	limit := o.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	out := make([]*EncodedRecord, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, root := range roots {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			er, err := Transcode(rec, root, o)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			out[i] = er
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
