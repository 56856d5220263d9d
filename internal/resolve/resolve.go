// Package resolve turns the overlap forest into equivalence classes and picks
// one representative per class.
package resolve

import (
	"github.com/LRFreeborn/transabyss/internal/graph"
	"github.com/LRFreeborn/transabyss/internal/seqstore"
)

// Class is one equivalence class. Members are contig indices in store order.
type Class struct {
	Members        []int
	Representative int
}

// Result is the outcome of one resolution pass.
type Result struct {
	Classes []Class // ordered by first member
	reps    []int
}

// Representatives returns the representative indices in store order.
func (r *Result) Representatives() []int { return r.reps }

// Resolve materializes classes over indices [0, limit) of store. Pass
// store.Len() to resolve everything; iterative merges pass the end of the
// last admitted source.
func Resolve(store *seqstore.Store, ds *graph.DisjointSet, limit int) *Result {
	if limit > store.Len() {
		limit = store.Len()
	}
	slot := make(map[int]int, limit/2+1)
	res := &Result{}
	for i := 0; i < limit; i++ {
		root := ds.Find(i)
		k, ok := slot[root]
		if !ok {
			k = len(res.Classes)
			slot[root] = k
			res.Classes = append(res.Classes, Class{Representative: i})
		}
		c := &res.Classes[k]
		c.Members = append(c.Members, i)
		if Better(store, i, c.Representative) {
			c.Representative = i
		}
	}
	res.reps = make([]int, 0, len(res.Classes))
	for i := 0; i < limit; i++ {
		if k := slot[ds.Find(i)]; res.Classes[k].Representative == i {
			res.reps = append(res.reps, i)
		}
	}
	return res
}

// Better reports whether contig a beats contig b as a representative:
// longer wins, then the earlier source, then the smaller identifier.
func Better(store *seqstore.Store, a, b int) bool {
	sa, sb := store.At(a), store.At(b)
	if sa.Length != sb.Length {
		return sa.Length > sb.Length
	}
	ra, rb := store.SourceRank(sa.Prefix), store.SourceRank(sb.Prefix)
	if ra != rb {
		return ra < rb
	}
	return sa.ID < sb.ID
}
