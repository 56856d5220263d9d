// Package graph holds the overlap graph as a disjoint-set forest over dense
// contig indices.
//
// Edges are folded into the forest as they arrive and are not kept. Unions
// are commutative, associative and idempotent, so partial forests built by
// independent workers can be merged in any order into the same partition.
// A DisjointSet is not safe for concurrent use; give each worker its own and
// Merge them after the workers finish.
package graph

// DisjointSet is an index-addressed union-find with union by size and path
// halving.
type DisjointSet struct {
	parent []int32
	size   []int32
	sets   int
}

// NewDisjointSet returns n singleton sets.
func NewDisjointSet(n int) *DisjointSet {
	d := &DisjointSet{parent: make([]int32, n), size: make([]int32, n), sets: n}
	for i := range d.parent {
		d.parent[i] = int32(i)
		d.size[i] = 1
	}
	return d
}

// Len is the number of elements.
func (d *DisjointSet) Len() int { return len(d.parent) }

// Sets is the current number of disjoint sets.
func (d *DisjointSet) Sets() int { return d.sets }

// Find returns the root of i.
func (d *DisjointSet) Find(i int) int {
	x := int32(i)
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return int(x)
}

// Union joins the sets of a and b; it reports whether they were distinct.
func (d *DisjointSet) Union(a, b int) bool {
	ra, rb := int32(d.Find(a)), int32(d.Find(b))
	if ra == rb {
		return false
	}
	if d.size[ra] < d.size[rb] || (d.size[ra] == d.size[rb] && rb < ra) {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
	d.sets--
	return true
}

// Same reports whether a and b share a set.
func (d *DisjointSet) Same(a, b int) bool { return d.Find(a) == d.Find(b) }

// Size returns the size of the set containing i.
func (d *DisjointSet) Size(i int) int { return int(d.size[d.Find(i)]) }

// Merge folds every union recorded in other into d. Both must cover the same
// index space.
func (d *DisjointSet) Merge(other *DisjointSet) {
	if other.Len() != d.Len() {
		panic("graph: Merge of disjoint sets with different lengths")
	}
	for i := range other.parent {
		if int(other.parent[i]) != i {
			d.Union(i, other.Find(i))
		}
	}
}
