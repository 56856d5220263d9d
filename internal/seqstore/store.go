// Package seqstore loads contigs from labeled FASTA sources and owns them for
// the duration of a merge run.
//
// Every contig gets the identifier label+original_id and a dense index in
// first-seen order. Sources occupy contiguous index ranges, so "all contigs
// of the first n sources" is the index prefix [0, SourceRange(n-1).End).
package seqstore

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/LRFreeborn/transabyss/internal/fasta"
)

// Strand is the optional orientation annotation of a contig.
type Strand byte

const (
	StrandUnknown Strand = 0
	StrandPlus    Strand = '+'
	StrandMinus   Strand = '-'
)

func (s Strand) String() string {
	if s == StrandUnknown {
		return "."
	}
	return string(s)
}

// Source is one labeled input collection.
type Source struct {
	Label string
	Path  string
}

// Sequence is an immutable loaded contig.
type Sequence struct {
	ID         string
	Prefix     string
	OriginalID string
	Length     int
	Strand     Strand
	Source     int // position in the source list
	Residues   []byte
}

type span struct{ start, end int }

// Store holds all loaded contigs.
type Store struct {
	sources []Source
	seqs    []Sequence
	byID    map[string]int
	rank    map[string]int
	ranges  []span
}

// Load reads every source in order. It fails on an empty source list and on
// duplicate composed identifiers.
func Load(ctx context.Context, sources []Source) (*Store, error) {
	if len(sources) == 0 {
		return nil, ErrEmptySourceSet
	}
	s := &Store{
		sources: append([]Source(nil), sources...),
		byID:    make(map[string]int, 1<<12),
		rank:    make(map[string]int, len(sources)),
		ranges:  make([]span, len(sources)),
	}
	for i, src := range sources {
		if _, ok := s.rank[src.Label]; !ok {
			s.rank[src.Label] = i
		}
		start := len(s.seqs)
		err := fasta.ScanPath(ctx, src.Path, func(r fasta.Record) error {
			return s.add(i, r)
		})
		if err != nil {
			return nil, err
		}
		s.ranges[i] = span{start: start, end: len(s.seqs)}
	}
	return s, nil
}

func (s *Store) add(src int, r fasta.Record) error {
	label := s.sources[src].Label
	id := label + r.ID
	if prev, dup := s.byID[id]; dup {
		return &DuplicateIdentifierError{
			ID:          id,
			FirstSource: s.sources[s.seqs[prev].Source].Path,
			Source:      s.sources[src].Path,
		}
	}
	s.byID[id] = len(s.seqs)
	s.seqs = append(s.seqs, Sequence{
		ID:         id,
		Prefix:     label,
		OriginalID: r.ID,
		Length:     len(r.Seq),
		Strand:     parseStrand(r.Desc),
		Source:     src,
		Residues:   r.Seq,
	})
	return nil
}

// parseStrand reads an optional "strand=+" or "strand=-" token.
func parseStrand(desc string) Strand {
	for _, f := range strings.Fields(desc) {
		switch f {
		case "strand=+":
			return StrandPlus
		case "strand=-":
			return StrandMinus
		}
	}
	return StrandUnknown
}

// Len returns the number of loaded contigs.
func (s *Store) Len() int { return len(s.seqs) }

// At returns the contig at index i.
func (s *Store) At(i int) *Sequence { return &s.seqs[i] }

// Lookup finds a contig by composed identifier.
func (s *Store) Lookup(id string) (*Sequence, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.seqs[i], true
}

// Index returns the dense index of id.
func (s *Store) Index(id string) (int, bool) {
	i, ok := s.byID[id]
	return i, ok
}

// Each visits contigs in first-seen order until fn returns false.
func (s *Store) Each(fn func(i int, seq *Sequence) bool) {
	for i := range s.seqs {
		if !fn(i, &s.seqs[i]) {
			return
		}
	}
}

// Sources returns the source list in load order.
func (s *Store) Sources() []Source { return s.sources }

// SourceRank is the position of the first source carrying prefix, or
// len(sources) for an unknown prefix.
func (s *Store) SourceRank(prefix string) int {
	if r, ok := s.rank[prefix]; ok {
		return r
	}
	return len(s.sources)
}

// SourceRange returns the half-open index range of source i.
func (s *Store) SourceRange(i int) (start, end int) {
	r := s.ranges[i]
	return r.start, r.end
}

// WriteFASTA writes the contigs at indices, in the order given, under their
// composed identifiers.
func (s *Store) WriteFASTA(w io.Writer, indices []int) error {
	bw := bufio.NewWriterSize(w, 64<<10)
	for _, i := range indices {
		seq := &s.seqs[i]
		if err := fasta.Write(bw, seq.ID, seq.Residues); err != nil {
			return err
		}
	}
	return bw.Flush()
}
