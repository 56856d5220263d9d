package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LRFreeborn/transabyss/internal/graph"
	"github.com/LRFreeborn/transabyss/internal/seqstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contig struct {
	id  string
	len int
}

func buildStore(t *testing.T, sources map[string][]contig, order ...string) *seqstore.Store {
	t.Helper()
	dir := t.TempDir()
	var srcs []seqstore.Source
	for _, label := range order {
		var b strings.Builder
		for _, c := range sources[label] {
			fmt.Fprintf(&b, ">%s\n%s\n", c.id, strings.Repeat("A", c.len))
		}
		fn := filepath.Join(dir, label+"fa")
		require.NoError(t, os.WriteFile(fn, []byte(b.String()), 0o644))
		srcs = append(srcs, seqstore.Source{Label: label, Path: fn})
	}
	st, err := seqstore.Load(context.Background(), srcs)
	require.NoError(t, err)
	return st
}

func ids(st *seqstore.Store, idx []int) []string {
	out := make([]string, len(idx))
	for i, x := range idx {
		out[i] = st.At(x).ID
	}
	return out
}

func union(t *testing.T, st *seqstore.Store, ds *graph.DisjointSet, a, b string) {
	t.Helper()
	ia, ok := st.Index(a)
	require.True(t, ok, a)
	ib, ok := st.Index(b)
	require.True(t, ok, b)
	ds.Union(ia, ib)
}

func TestThreeSourceScenario(t *testing.T) {
	st := buildStore(t, map[string][]contig{
		"A.": {{"a1", 500}, {"a2", 200}},
		"B.": {{"b1", 480}, {"b2", 210}},
		"C.": {{"c1", 150}},
	}, "A.", "B.", "C.")
	ds := graph.NewDisjointSet(st.Len())
	union(t, st, ds, "A.a1", "B.b1")
	union(t, st, ds, "A.a2", "B.b2")

	res := Resolve(st, ds, st.Len())
	require.Len(t, res.Classes, 3)
	assert.Equal(t, []string{"A.a1", "B.b1"}, ids(st, res.Classes[0].Members))
	assert.Equal(t, "A.a1", st.At(res.Classes[0].Representative).ID)
	assert.Equal(t, []string{"A.a2", "B.b2"}, ids(st, res.Classes[1].Members))
	assert.Equal(t, "B.b2", st.At(res.Classes[1].Representative).ID)
	assert.Equal(t, []string{"C.c1"}, ids(st, res.Classes[2].Members))
	assert.Equal(t, []string{"A.a1", "B.b2", "C.c1"}, ids(st, res.Representatives()))
}

func TestPartition(t *testing.T) {
	st := buildStore(t, map[string][]contig{
		"x.": {{"1", 10}, {"2", 11}, {"3", 12}},
		"y.": {{"1", 10}, {"2", 9}},
	}, "x.", "y.")
	ds := graph.NewDisjointSet(st.Len())
	union(t, st, ds, "x.1", "y.1")
	union(t, st, ds, "y.1", "x.3")

	res := Resolve(st, ds, st.Len())
	seen := map[int]int{}
	for _, c := range res.Classes {
		for _, m := range c.Members {
			seen[m]++
		}
		assert.Contains(t, c.Members, c.Representative)
	}
	require.Len(t, seen, st.Len())
	for i, n := range seen {
		assert.Equal(t, 1, n, "index %d in %d classes", i, n)
	}
}

func TestTransitivity(t *testing.T) {
	st := buildStore(t, map[string][]contig{
		"a.": {{"x", 100}},
		"b.": {{"x", 120}},
		"c.": {{"x", 90}},
	}, "a.", "b.", "c.")
	ds := graph.NewDisjointSet(st.Len())
	union(t, st, ds, "a.x", "b.x")
	union(t, st, ds, "b.x", "c.x")

	res := Resolve(st, ds, st.Len())
	require.Len(t, res.Classes, 1)
	assert.Len(t, res.Classes[0].Members, 3)
	assert.Equal(t, "b.x", st.At(res.Classes[0].Representative).ID)
}

func TestTieBreaks(t *testing.T) {
	// equal lengths: the earlier source wins even though its id sorts later
	st := buildStore(t, map[string][]contig{
		"z.": {{"q", 50}},
		"a.": {{"q", 50}, {"b", 50}},
	}, "z.", "a.")
	ds := graph.NewDisjointSet(st.Len())
	union(t, st, ds, "a.q", "z.q")
	res := Resolve(st, ds, st.Len())
	assert.Equal(t, "z.q", st.At(res.Classes[0].Representative).ID)

	// same source and length: the smaller id wins regardless of order
	ds = graph.NewDisjointSet(st.Len())
	union(t, st, ds, "a.q", "a.b")
	res = Resolve(st, ds, st.Len())
	for _, c := range res.Classes {
		if len(c.Members) == 2 {
			assert.Equal(t, "a.b", st.At(c.Representative).ID)
		}
	}
}

func TestLimitRestrictsToAdmittedSources(t *testing.T) {
	st := buildStore(t, map[string][]contig{
		"k1.": {{"a", 10}},
		"k2.": {{"a", 30}},
	}, "k1.", "k2.")
	ds := graph.NewDisjointSet(st.Len())
	_, end := st.SourceRange(0)
	res := Resolve(st, ds, end)
	assert.Equal(t, []string{"k1.a"}, ids(st, res.Representatives()))

	res = Resolve(st, ds, 99)
	assert.Len(t, res.Representatives(), 2)
}

func TestDeterministic(t *testing.T) {
	st := buildStore(t, map[string][]contig{
		"p.": {{"1", 5}, {"2", 5}, {"3", 7}},
		"q.": {{"1", 7}, {"2", 5}},
	}, "p.", "q.")
	run := func(order [][2]string) []string {
		ds := graph.NewDisjointSet(st.Len())
		for _, e := range order {
			union(t, st, ds, e[0], e[1])
		}
		return ids(st, Resolve(st, ds, st.Len()).Representatives())
	}
	fwd := run([][2]string{{"p.1", "q.2"}, {"p.3", "q.1"}, {"q.2", "p.2"}})
	rev := run([][2]string{{"p.2", "q.2"}, {"q.1", "p.3"}, {"q.2", "p.1"}})
	assert.Equal(t, fwd, rev)
	assert.Equal(t, []string{"p.1", "p.3"}, fwd)
}
