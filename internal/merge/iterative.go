package merge

import (
	"context"
	"fmt"
	"time"

	"github.com/LRFreeborn/transabyss/internal/align"
	"github.com/LRFreeborn/transabyss/internal/logging"
	"github.com/LRFreeborn/transabyss/internal/resolve"
)

// Iterative admits one source at a time. Each source is aligned against the
// representatives of the sources admitted before it, its edges are folded
// into the graph, and the classes are resolved before the next source.
//
// With StrandSpecific set the source is also aligned against itself, so
// same-source antisense pairs can still be found.
type Iterative struct {
	Aligner        align.Aligner
	Workspace      *align.Workspace
	StrandSpecific bool
}

func (it *Iterative) Name() string { return "iterative" }

func (it *Iterative) Merge(ctx context.Context, r *Run) (*resolve.Result, error) {
	var (
		res  = &resolve.Result{}
		reps []int
	)
	for i, src := range r.Store.Sources() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		lo, hi := r.Store.SourceRange(i)
		query := span(lo, hi)
		target := append([]int(nil), reps...)
		if it.StrandSpecific {
			target = append(target, query...)
		}
		tag := fmt.Sprintf("step%d", i)
		if err := alignAll(ctx, r, it.Aligner, it.Workspace, tag, target, query); err != nil {
			return nil, err
		}
		res = resolve.Resolve(r.Store, r.Graph.Sets(), hi)
		reps = res.Representatives()
		r.Logger.Info("source folded",
			"source", src.Label, "contigs", hi-lo, "classes", len(res.Classes),
			"edges", r.Graph.Edges(), "duration_ms", logging.Since(start))
	}
	return res, nil
}
