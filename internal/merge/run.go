// internal/merge/run.go
package merge

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/LRFreeborn/transabyss/internal/evidence"
	"github.com/LRFreeborn/transabyss/internal/graph"
	"github.com/LRFreeborn/transabyss/internal/ingest"
	"github.com/LRFreeborn/transabyss/internal/resolve"
	"github.com/LRFreeborn/transabyss/internal/seqstore"
)

// Strategy produces overlap evidence for a run and resolves it.
type Strategy interface {
	Name() string
	Merge(ctx context.Context, r *Run) (*resolve.Result, error)
}

// Run is the state shared by the stages of one merge: the loaded contigs,
// the overlap graph and the ingestion counters. It is owned by a single
// Strategy.Merge call.
type Run struct {
	Store    *seqstore.Store
	Graph    *graph.Graph
	Ingester *ingest.Ingester
	Workers  int
	Logger   *log.Logger

	records   atomic.Int64
	malformed atomic.Int64
}

// NewRun prepares an empty graph over store.
func NewRun(store *seqstore.Store, f ingest.Filter, workers int, logger *log.Logger) *Run {
	if workers < 1 {
		workers = 1
	}
	return &Run{
		Store:    store,
		Graph:    graph.New(store.Len()),
		Ingester: ingest.New(store, f, logger),
		Workers:  workers,
		Logger:   logger,
	}
}

// Evidence returns the number of decoded and skipped records so far.
func (r *Run) Evidence() evidence.ScanStats {
	return evidence.ScanStats{
		Records:   int(r.records.Load()),
		Malformed: int(r.malformed.Load()),
	}
}

// job produces the evidence for one unit of work.
type job func(ctx context.Context, emit func(evidence.Record) error) (evidence.ScanStats, error)

// produce runs jobs on at most r.Workers goroutines. Each job unions into
// its own partial graph; the partials are folded into r.Graph in job order
// once every job has returned. On error nothing is folded.
func (r *Run) produce(ctx context.Context, jobs []job) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	partials := make([]*graph.Graph, len(jobs))
	for i, j := range jobs {
		p := r.Graph.Partial()
		partials[i] = p
		g.Go(func() error {
			st, err := j(gctx, func(rec evidence.Record) error {
				if e, why := r.Ingester.Edge(rec); why == ingest.Accepted {
					p.Add(e)
				}
				return nil
			})
			r.records.Add(int64(st.Records))
			r.malformed.Add(int64(st.Malformed))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, p := range partials {
		r.Graph.Fold(p)
	}
	return nil
}

// chunks splits idx into at most n contiguous, non-empty parts.
func chunks(idx []int, n int) [][]int {
	if len(idx) == 0 {
		return nil
	}
	if n > len(idx) {
		n = len(idx)
	}
	out := make([][]int, 0, n)
	size, rem := len(idx)/n, len(idx)%n
	for start := 0; start < len(idx); {
		end := start + size
		if rem > 0 {
			end++
			rem--
		}
		out = append(out, idx[start:end])
		start = end
	}
	return out
}

func span(start, end int) []int {
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}
