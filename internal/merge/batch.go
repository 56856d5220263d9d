package merge

import (
	"context"
	"fmt"
	"time"

	"github.com/LRFreeborn/transabyss/internal/align"
	"github.com/LRFreeborn/transabyss/internal/evidence"
	"github.com/LRFreeborn/transabyss/internal/logging"
	"github.com/LRFreeborn/transabyss/internal/resolve"
	"github.com/LRFreeborn/transabyss/internal/seqstore"
)

// Batch aligns every loaded contig against every other in one pass. The
// query side is split across workers; the target is the whole store.
type Batch struct {
	Aligner   align.Aligner
	Workspace *align.Workspace
}

func (b *Batch) Name() string { return "batch" }

func (b *Batch) Merge(ctx context.Context, r *Run) (*resolve.Result, error) {
	start := time.Now()
	all := span(0, r.Store.Len())
	if err := alignAll(ctx, r, b.Aligner, b.Workspace, "batch", all, all); err != nil {
		return nil, err
	}
	r.Logger.Info("all-pairs alignment done",
		"contigs", len(all), "edges", r.Graph.Edges(), "merges", r.Graph.Merges(),
		"duration_ms", logging.Since(start))
	return resolve.Resolve(r.Store, r.Graph.Sets(), r.Store.Len()), nil
}

// alignAll writes target once and query in one part per worker, then runs
// the aligner over every part.
func alignAll(ctx context.Context, r *Run, al align.Aligner, ws *align.Workspace, tag string, target, query []int) error {
	if len(target) == 0 || len(query) == 0 {
		return nil
	}
	tpath, err := writeSubset(ws, tag+".target.fa", r.Store, target)
	if err != nil {
		return err
	}
	parts := chunks(query, r.Workers)
	jobs := make([]job, len(parts))
	for i, part := range parts {
		qpath, err := writeSubset(ws, fmt.Sprintf("%s.query.%d.fa", tag, i), r.Store, part)
		if err != nil {
			return err
		}
		jobs[i] = func(ctx context.Context, emit func(evidence.Record) error) (evidence.ScanStats, error) {
			return al.Align(ctx, tpath, qpath, emit)
		}
	}
	if err := r.produce(ctx, jobs); err != nil {
		return fmt.Errorf("align %s: %w", tag, err)
	}
	return nil
}

func writeSubset(ws *align.Workspace, name string, store *seqstore.Store, idx []int) (string, error) {
	f, err := ws.Create(name)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := store.WriteFASTA(f, idx); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return f.Name(), nil
}
