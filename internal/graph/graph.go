package graph

import "sync/atomic"

// Edge is a qualifying overlap between two contig indices.
type Edge struct {
	A, B          int
	Identity      float64
	Indels        int
	OverlapLength int
	SameSource    bool
}

// Graph is the overlap graph of one merge run: a disjoint-set forest plus
// edge counters.
type Graph struct {
	ds     *DisjointSet
	edges  atomic.Int64
	merges atomic.Int64
}

// New returns a graph with n isolated nodes.
func New(n int) *Graph { return &Graph{ds: NewDisjointSet(n)} }

// Add folds e into the graph. Self-loops are ignored.
func (g *Graph) Add(e Edge) {
	if e.A == e.B {
		return
	}
	g.edges.Add(1)
	if g.ds.Union(e.A, e.B) {
		g.merges.Add(1)
	}
}

// Fold merges a partial graph built by a worker into g.
func (g *Graph) Fold(p *Graph) {
	g.edges.Add(p.edges.Load())
	before := g.ds.Sets()
	g.ds.Merge(p.ds)
	g.merges.Add(int64(before - g.ds.Sets()))
}

// Partial returns an empty graph over the same node set, for one worker.
func (g *Graph) Partial() *Graph { return New(g.ds.Len()) }

// Sets exposes the underlying forest.
func (g *Graph) Sets() *DisjointSet { return g.ds }

// Edges is the number of edges added (including redundant ones).
func (g *Graph) Edges() int64 { return g.edges.Load() }

// Merges is the number of edges that joined two previously distinct sets.
func (g *Graph) Merges() int64 { return g.merges.Load() }
