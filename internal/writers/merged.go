package writers

import (
	"bufio"
	"io"

	"github.com/LRFreeborn/transabyss/internal/fasta"
	"github.com/LRFreeborn/transabyss/internal/seqstore"
)

// MergedStats summarizes one WriteMerged call.
type MergedStats struct {
	Written int
	Dropped int // representatives below the length floor
}

// WriteMerged writes the representatives reps (store indices, store order) as
// FASTA. Representatives shorter than minLength are dropped; minLength <= 0
// disables the floor. Class membership is never revisited here.
func WriteMerged(w io.Writer, store *seqstore.Store, reps []int, minLength int) (MergedStats, error) {
	var st MergedStats
	bw := bufio.NewWriterSize(w, 64<<10)
	for _, i := range reps {
		seq := store.At(i)
		if minLength > 0 && seq.Length < minLength {
			st.Dropped++
			continue
		}
		if err := fasta.Write(bw, seq.ID, seq.Residues); err != nil {
			return st, err
		}
		st.Written++
	}
	return st, bw.Flush()
}
