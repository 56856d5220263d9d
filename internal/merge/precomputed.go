package merge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LRFreeborn/transabyss/internal/evidence"
	"github.com/LRFreeborn/transabyss/internal/fasta"
	"github.com/LRFreeborn/transabyss/internal/logging"
	"github.com/LRFreeborn/transabyss/internal/resolve"
)

// Precomputed reads evidence that was produced outside the run. Files may be
// gzip-compressed; "-" reads stdin.
type Precomputed struct {
	Files   []string
	Decoder evidence.Decoder
}

func (p *Precomputed) Name() string { return "precomputed" }

func (p *Precomputed) Merge(ctx context.Context, r *Run) (*resolve.Result, error) {
	if len(p.Files) == 0 {
		return nil, errors.New("precomputed strategy needs at least one evidence file")
	}
	start := time.Now()
	jobs := make([]job, len(p.Files))
	for i, path := range p.Files {
		jobs[i] = func(ctx context.Context, emit func(evidence.Record) error) (evidence.ScanStats, error) {
			rc, err := fasta.Open(path)
			if err != nil {
				return evidence.ScanStats{}, &evidence.ProducerError{Producer: path, Err: err}
			}
			defer rc.Close()
			st, err := evidence.Scan(ctx, rc, p.Decoder, r.Logger.With("file", path), emit)
			if err != nil && ctx.Err() == nil {
				err = &evidence.ProducerError{Producer: path, Err: err}
			}
			return st, err
		}
	}
	if err := r.produce(ctx, jobs); err != nil {
		return nil, fmt.Errorf("read evidence: %w", err)
	}
	r.Logger.Info("evidence ingested",
		"files", len(p.Files), "edges", r.Graph.Edges(), "merges", r.Graph.Merges(),
		"duration_ms", logging.Since(start))
	return resolve.Resolve(r.Store, r.Graph.Sets(), r.Store.Len()), nil
}
