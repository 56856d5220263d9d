// Package ingest qualifies evidence records into overlap edges.
package ingest

import (
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/LRFreeborn/transabyss/internal/evidence"
	"github.com/LRFreeborn/transabyss/internal/graph"
	"github.com/LRFreeborn/transabyss/internal/seqstore"
)

// Defaults for Filter.
const (
	DefaultMinIdentity   = 0.95
	MinPermittedIdentity = 0.90
	DefaultMaxIndels     = 1
)

// Filter holds the qualification thresholds.
type Filter struct {
	MinIdentity    float64
	MaxIndels      int
	MinOverlap     int // smallest assembly k
	StrandSpecific bool
}

// Reason says why a record did or did not become an edge.
type Reason int

const (
	Accepted Reason = iota
	UnknownEndpoint
	SelfHit
	SameSource
	LowIdentity
	TooManyIndels
	ShortOverlap
	numReasons
)

var reasonNames = [...]string{
	Accepted:        "accepted",
	UnknownEndpoint: "unknown_endpoint",
	SelfHit:         "self_hit",
	SameSource:      "same_source",
	LowIdentity:     "low_identity",
	TooManyIndels:   "too_many_indels",
	ShortOverlap:    "short_overlap",
}

func (r Reason) String() string {
	if r < 0 || r >= numReasons {
		return "unknown"
	}
	return reasonNames[r]
}

// Ingester is safe for concurrent use: the store is read-only and the
// counters are atomic.
type Ingester struct {
	store  *seqstore.Store
	filter Filter
	logger *log.Logger
	counts [numReasons]atomic.Int64
}

// New returns an Ingester over store. Rejected records are logged at debug
// level; a nil logger discards them.
func New(store *seqstore.Store, f Filter, logger *log.Logger) *Ingester {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Ingester{store: store, filter: f, logger: logger}
}

// Edge qualifies rec. The edge is valid only when the reason is Accepted.
func (in *Ingester) Edge(rec evidence.Record) (graph.Edge, Reason) {
	r, e := in.qualify(rec)
	in.counts[r].Add(1)
	if r != Accepted {
		in.logger.Debug("evidence record rejected",
			"reason", r.String(), "a", rec.A, "b", rec.B, "identity", rec.Identity,
			"indels", rec.Indels, "length", rec.Length, "line", rec.Line)
	}
	return e, r
}

func (in *Ingester) qualify(rec evidence.Record) (Reason, graph.Edge) {
	ia, okA := in.store.Index(rec.A)
	ib, okB := in.store.Index(rec.B)
	if !okA || !okB {
		return UnknownEndpoint, graph.Edge{}
	}
	if ia == ib {
		return SelfHit, graph.Edge{}
	}
	a, b := in.store.At(ia), in.store.At(ib)
	same := a.Prefix == b.Prefix
	if same {
		// Strand-specific runs keep same-source antisense pairs.
		if !in.filter.StrandSpecific || rec.Strand != '-' {
			return SameSource, graph.Edge{}
		}
	}
	if rec.Identity < in.filter.MinIdentity {
		return LowIdentity, graph.Edge{}
	}
	if rec.Indels > in.filter.MaxIndels {
		return TooManyIndels, graph.Edge{}
	}
	if rec.Length < in.filter.MinOverlap {
		return ShortOverlap, graph.Edge{}
	}
	return Accepted, graph.Edge{
		A:             ia,
		B:             ib,
		Identity:      rec.Identity,
		Indels:        rec.Indels,
		OverlapLength: rec.Length,
		SameSource:    same,
	}
}

// Stats returns a snapshot of the per-reason counters.
func (in *Ingester) Stats() map[string]int64 {
	out := make(map[string]int64, numReasons)
	for r := Reason(0); r < numReasons; r++ {
		out[r.String()] = in.counts[r].Load()
	}
	return out
}

// Count returns the counter for one reason.
func (in *Ingester) Count(r Reason) int64 { return in.counts[r].Load() }
