package merge

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LRFreeborn/transabyss/internal/align"
	"github.com/LRFreeborn/transabyss/internal/evidence"
	"github.com/LRFreeborn/transabyss/internal/fasta"
	"github.com/LRFreeborn/transabyss/internal/ingest"
	"github.com/LRFreeborn/transabyss/internal/logging"
	"github.com/LRFreeborn/transabyss/internal/seqstore"
	"github.com/LRFreeborn/transabyss/internal/writers"
)

// tableAligner answers from a fixed record list, emitting a record when one
// endpoint is in the query file and the other in the target file.
type tableAligner struct {
	recs  []evidence.Record
	fail  error
	calls atomic.Int32
}

func (a *tableAligner) Align(ctx context.Context, target, query string, emit func(evidence.Record) error) (evidence.ScanStats, error) {
	a.calls.Add(1)
	var st evidence.ScanStats
	if a.fail != nil {
		return st, a.fail
	}
	tids, err := readIDs(ctx, target)
	if err != nil {
		return st, err
	}
	qids, err := readIDs(ctx, query)
	if err != nil {
		return st, err
	}
	for _, r := range a.recs {
		if (qids[r.A] && tids[r.B]) || (qids[r.B] && tids[r.A]) {
			st.Records++
			if err := emit(r); err != nil {
				return st, err
			}
		}
	}
	return st, nil
}

func readIDs(ctx context.Context, path string) (map[string]bool, error) {
	ids := map[string]bool{}
	err := fasta.ScanPath(ctx, path, func(r fasta.Record) error {
		ids[r.ID] = true
		return nil
	})
	return ids, err
}

func rec(a, b string, id float64, indels int) evidence.Record {
	return evidence.Record{A: a, B: b, Identity: id, Length: 150, Indels: indels, Strand: '+'}
}

var scenarioEdges = []evidence.Record{
	rec("A.a1", "B.b1", 0.97, 0),
	rec("A.a2", "B.b2", 0.96, 1),
}

func loadScenario(t *testing.T, extra ...string) *seqstore.Store {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"A.": ">a1\n" + strings.Repeat("A", 500) + "\n>a2\n" + strings.Repeat("C", 200) + "\n",
		"B.": ">b1\n" + strings.Repeat("G", 480) + "\n>b2\n" + strings.Repeat("T", 210) + "\n",
		"C.": ">c1\n" + strings.Repeat("A", 150) + "\n",
	}
	for i := 0; i+1 < len(extra); i += 2 {
		files[extra[i]] += extra[i+1]
	}
	var srcs []seqstore.Source
	for _, label := range []string{"A.", "B.", "C."} {
		fn := filepath.Join(dir, label+"fa")
		require.NoError(t, os.WriteFile(fn, []byte(files[label]), 0o644))
		srcs = append(srcs, seqstore.Source{Label: label, Path: fn})
	}
	st, err := seqstore.Load(context.Background(), srcs)
	require.NoError(t, err)
	return st
}

func filter() ingest.Filter {
	return ingest.Filter{MinIdentity: 0.95, MaxIndels: 1, MinOverlap: 32}
}

func workspace(t *testing.T) *align.Workspace {
	t.Helper()
	ws, err := align.NewWorkspace(t.TempDir(), "test", false, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func repIDs(st *seqstore.Store, reps []int) []string {
	out := make([]string, len(reps))
	for i, x := range reps {
		out[i] = st.At(x).ID
	}
	return out
}

func merged(t *testing.T, st *seqstore.Store, reps []int, floor int) string {
	t.Helper()
	var b bytes.Buffer
	_, err := writers.WriteMerged(&b, st, reps, floor)
	require.NoError(t, err)
	var ids []string
	for _, line := range strings.Split(b.String(), "\n") {
		if strings.HasPrefix(line, ">") {
			ids = append(ids, line[1:])
		}
	}
	return strings.Join(ids, ",")
}

func TestStrategiesAgreeOnScenario(t *testing.T) {
	st := loadScenario(t)

	evFile := filepath.Join(t.TempDir(), "ev.tsv")
	var b strings.Builder
	for _, r := range scenarioEdges {
		fmt.Fprintf(&b, "%s\t%s\t%.2f\t%d\t%d\t+\n", r.A, r.B, r.Identity*100, r.Length, r.Indels)
	}
	require.NoError(t, os.WriteFile(evFile, []byte(b.String()), 0o644))

	strategies := []Strategy{
		&Batch{Aligner: &tableAligner{recs: scenarioEdges}, Workspace: workspace(t)},
		&Iterative{Aligner: &tableAligner{recs: scenarioEdges}, Workspace: workspace(t)},
		&Precomputed{Files: []string{evFile}, Decoder: evidence.DecodeTSV},
	}
	for _, s := range strategies {
		t.Run(s.Name(), func(t *testing.T) {
			r := NewRun(st, filter(), 2, logging.Discard())
			res, err := s.Merge(context.Background(), r)
			require.NoError(t, err)
			require.Len(t, res.Classes, 3)
			assert.Equal(t, []string{"A.a1", "B.b2", "C.c1"}, repIDs(st, res.Representatives()))

			assert.Equal(t, "A.a1,B.b2,C.c1", merged(t, st, res.Representatives(), 0))
			assert.Equal(t, "A.a1", merged(t, st, res.Representatives(), 300))
			assert.Equal(t, "A.a1,B.b2", merged(t, st, res.Representatives(), 200))
		})
	}
}

func TestBatchWorkerCountDoesNotChangeResult(t *testing.T) {
	// a chain across sources plus a few isolated pairs
	extra := []string{
		"A.", ">a3\nACGTACGT\n>a4\nAAAA\n",
		"B.", ">b3\nACGTACGTAC\n>b4\nAA\n",
		"C.", ">c2\nACGTACGTACGT\n>c3\nAAAAA\n",
	}
	recs := append([]evidence.Record{
		rec("A.a3", "B.b3", 0.99, 0),
		rec("B.b3", "C.c2", 0.99, 0),
		rec("A.a4", "C.c3", 0.99, 1),
		rec("B.b4", "C.c3", 0.91, 0),
	}, scenarioEdges...)

	var want []string
	for _, workers := range []int{1, 2, 3, 8} {
		st := loadScenario(t, extra...)
		r := NewRun(st, filter(), workers, logging.Discard())
		res, err := (&Batch{Aligner: &tableAligner{recs: recs}, Workspace: workspace(t)}).Merge(context.Background(), r)
		require.NoError(t, err)
		got := repIDs(st, res.Representatives())
		if want == nil {
			want = got
			continue
		}
		assert.Equal(t, want, got, "workers=%d", workers)
	}
	assert.Contains(t, want, "C.c2")
	assert.Contains(t, want, "C.c3")
	assert.NotContains(t, want, "A.a3")
	assert.Contains(t, want, "B.b4", "low identity edge is not merged")
}

func TestIterativeAlignsOnlyAgainstRepresentatives(t *testing.T) {
	// C.c2 overlaps A.a2, which lost its class to B.b2 before C was admitted.
	extra := []string{"C.", ">c2\n" + strings.Repeat("C", 190) + "\n"}
	recs := append([]evidence.Record{rec("C.c2", "A.a2", 0.99, 0)}, scenarioEdges...)

	st := loadScenario(t, extra...)
	res, err := (&Iterative{Aligner: &tableAligner{recs: recs}, Workspace: workspace(t)}).
		Merge(context.Background(), NewRun(st, filter(), 2, logging.Discard()))
	require.NoError(t, err)
	assert.Equal(t, []string{"A.a1", "B.b2", "C.c1", "C.c2"}, repIDs(st, res.Representatives()))

	st = loadScenario(t, extra...)
	res, err = (&Batch{Aligner: &tableAligner{recs: recs}, Workspace: workspace(t)}).
		Merge(context.Background(), NewRun(st, filter(), 2, logging.Discard()))
	require.NoError(t, err)
	assert.Equal(t, []string{"A.a1", "B.b2", "C.c1"}, repIDs(st, res.Representatives()))
}

func TestIterativeSkipsFirstSourceWithoutStrandSpecific(t *testing.T) {
	st := loadScenario(t)
	al := &tableAligner{recs: scenarioEdges}
	_, err := (&Iterative{Aligner: al, Workspace: workspace(t)}).
		Merge(context.Background(), NewRun(st, filter(), 1, logging.Discard()))
	require.NoError(t, err)
	assert.EqualValues(t, 2, al.calls.Load(), "sources B and C only")

	al = &tableAligner{recs: scenarioEdges}
	_, err = (&Iterative{Aligner: al, Workspace: workspace(t), StrandSpecific: true}).
		Merge(context.Background(), NewRun(st, filter(), 1, logging.Discard()))
	require.NoError(t, err)
	assert.EqualValues(t, 3, al.calls.Load())
}

func TestStrandSpecificKeepsSameSourceAntisense(t *testing.T) {
	extra := []string{"A.", ">a3\n" + strings.Repeat("G", 100) + "\n"}
	anti := rec("A.a2", "A.a3", 0.99, 0)
	anti.Strand = '-'
	recs := append([]evidence.Record{anti}, scenarioEdges...)

	f := filter()
	f.StrandSpecific = true
	st := loadScenario(t, extra...)
	res, err := (&Iterative{Aligner: &tableAligner{recs: recs}, Workspace: workspace(t), StrandSpecific: true}).
		Merge(context.Background(), NewRun(st, f, 1, logging.Discard()))
	require.NoError(t, err)
	assert.Equal(t, []string{"A.a1", "B.b2", "C.c1"}, repIDs(st, res.Representatives()))

	st = loadScenario(t, extra...)
	r := NewRun(st, filter(), 1, logging.Discard())
	res, err = (&Batch{Aligner: &tableAligner{recs: recs}, Workspace: workspace(t)}).Merge(context.Background(), r)
	require.NoError(t, err)
	assert.Contains(t, repIDs(st, res.Representatives()), "A.a3")
	assert.Positive(t, r.Ingester.Count(ingest.SameSource))
}

func TestProducerFailureAborts(t *testing.T) {
	st := loadScenario(t)
	boom := &evidence.ProducerError{Producer: "blat", Err: errors.New("exit status 1")}
	r := NewRun(st, filter(), 3, logging.Discard())
	res, err := (&Batch{Aligner: &tableAligner{fail: boom}, Workspace: workspace(t)}).Merge(context.Background(), r)
	require.Error(t, err)
	assert.Nil(t, res)
	var pe *evidence.ProducerError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "blat", pe.Producer)
	assert.Zero(t, r.Graph.Merges(), "nothing folded after a failure")
}

func TestPrecomputedReadsGzipAndSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "one.tsv")
	require.NoError(t, os.WriteFile(plain, []byte("# a b id len indels strand\nA.a1 B.b1 97 400 0 +\nbroken line\n"), 0o644))

	gz := filepath.Join(dir, "two.tsv.gz")
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("A.a2\tB.b2\t0.96\t150\t1\t+\nA.a2\tC.c1\t0.80\t150\t0\t+\nX.x\tC.c1\t0.99\t150\t0\t+\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(gz, buf.Bytes(), 0o644))

	st := loadScenario(t)
	r := NewRun(st, filter(), 2, logging.Discard())
	p := &Precomputed{Files: []string{plain, gz}, Decoder: evidence.DecodeTSV}
	res, err := p.Merge(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.a1", "B.b2", "C.c1"}, repIDs(st, res.Representatives()))
	assert.Equal(t, evidence.ScanStats{Records: 4, Malformed: 1}, r.Evidence())
	assert.EqualValues(t, 1, r.Ingester.Count(ingest.LowIdentity))
	assert.EqualValues(t, 1, r.Ingester.Count(ingest.UnknownEndpoint))
	assert.EqualValues(t, 2, r.Graph.Merges())

	rep := Report("2.0.0", "run-1", p, r, res, writers.MergedStats{Written: 1, Dropped: 2}, 300)
	assert.Equal(t, "precomputed", rep.Strategy)
	assert.Equal(t, 5, rep.Contigs)
	require.Len(t, rep.Sources, 3)
	assert.Equal(t, 2, rep.Sources[1].Contigs)
	require.Len(t, rep.Classes, 3)
	assert.Equal(t, "B.b2", rep.Classes[1].Representative)
	assert.Equal(t, []string{"A.a2", "B.b2"}, rep.Classes[1].Members)
	assert.False(t, rep.Classes[1].Written)
	assert.True(t, rep.Classes[0].Written)
	assert.EqualValues(t, 2, rep.Evidence.Outcomes["accepted"])
}

func TestPrecomputedMissingFile(t *testing.T) {
	st := loadScenario(t)
	_, err := (&Precomputed{Files: []string{filepath.Join(t.TempDir(), "nope.tsv")}, Decoder: evidence.DecodeTSV}).
		Merge(context.Background(), NewRun(st, filter(), 1, logging.Discard()))
	var pe *evidence.ProducerError
	require.ErrorAs(t, err, &pe)
}

func TestChunks(t *testing.T) {
	assert.Nil(t, chunks(nil, 4))
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4}}, chunks(span(0, 5), 3))
	assert.Equal(t, [][]int{{0}, {1}}, chunks(span(0, 2), 8))
	assert.Equal(t, [][]int{{0, 1, 2}}, chunks(span(0, 3), 1))
}

func TestReportCarriesRepresentativeStrand(t *testing.T) {
	st := loadScenario(t, "C.", ">c2 strand=- len=40\n"+strings.Repeat("G", 40)+"\n")
	ev := filepath.Join(t.TempDir(), "ev.tsv")
	require.NoError(t, os.WriteFile(ev, []byte("A.a1 B.b1 0.97 400 0 +\n"), 0o644))

	p := &Precomputed{Files: []string{ev}, Decoder: evidence.DecodeTSV}
	r := NewRun(st, filter(), 1, logging.Discard())
	res, err := p.Merge(context.Background(), r)
	require.NoError(t, err)

	rep := Report("2.0.1", "run-2", p, r, res, writers.MergedStats{}, 0)
	byRep := map[string]string{}
	for _, c := range rep.Classes {
		byRep[c.Representative] = c.Strand
	}
	assert.Equal(t, "-", byRep["C.c2"])
	assert.Equal(t, "", byRep["A.a1"], "unannotated contigs carry no strand")
}
