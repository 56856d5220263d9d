package merge

import (
	"github.com/LRFreeborn/transabyss/internal/resolve"
	"github.com/LRFreeborn/transabyss/internal/seqstore"
	"github.com/LRFreeborn/transabyss/internal/writers"
	"github.com/LRFreeborn/transabyss/pkg/api"
)

// Report describes a finished run in the class report schema.
func Report(version, runID string, s Strategy, r *Run, res *resolve.Result, ms writers.MergedStats, minLength int) api.ReportV1 {
	ev := r.Evidence()
	rep := api.ReportV1{
		Version:  version,
		RunID:    runID,
		Strategy: s.Name(),
		Contigs:  r.Store.Len(),
		Written:  ms.Written,
		Dropped:  ms.Dropped,
		Evidence: api.EvidenceV1{
			Records:   ev.Records,
			Malformed: ev.Malformed,
			Edges:     r.Graph.Edges(),
			Merges:    r.Graph.Merges(),
			Outcomes:  r.Ingester.Stats(),
		},
		Classes: make([]api.ClassV1, 0, len(res.Classes)),
	}
	for i, src := range r.Store.Sources() {
		lo, hi := r.Store.SourceRange(i)
		rep.Sources = append(rep.Sources, api.SourceV1{Prefix: src.Label, Path: src.Path, Contigs: hi - lo})
	}
	for _, c := range res.Classes {
		head := r.Store.At(c.Representative)
		cv := api.ClassV1{
			Representative: head.ID,
			Length:         head.Length,
			Written:        minLength <= 0 || head.Length >= minLength,
			Members:        make([]string, len(c.Members)),
		}
		if head.Strand != seqstore.StrandUnknown {
			cv.Strand = head.Strand.String()
		}
		for k, m := range c.Members {
			cv.Members[k] = r.Store.At(m).ID
		}
		rep.Classes = append(rep.Classes, cv)
	}
	return rep
}
