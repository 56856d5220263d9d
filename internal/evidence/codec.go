package evidence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Decoder turns one input line into a Record. skip reports header or comment
// lines that carry no record.
type Decoder func(line string, n int) (rec Record, skip bool, err error)

// Format names.
const (
	FormatPSL = "psl"
	FormatTSV = "tsv"
)

var decoders = map[string]Decoder{}

func init() {
	Register(FormatPSL, DecodePSL)
	Register(FormatTSV, DecodeTSV)
}

// Register installs a decoder under name (last wins).
func Register(name string, d Decoder) { decoders[name] = d }

// Lookup returns the decoder registered under name.
func Lookup(name string) (Decoder, error) {
	d, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown evidence format %q (have %s)", name, strings.Join(Formats(), ", "))
	}
	return d, nil
}

// Formats lists registered format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(decoders))
	for k := range decoders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DecodePSL reads one BLAT PSL row (21 tab-separated columns). The psLayout
// header block and blank lines are skipped.
func DecodePSL(line string, n int) (Record, bool, error) {
	if isBlankOrComment(line) || isPSLHeader(line) {
		return Record{}, true, nil
	}
	f := strings.Split(line, "\t")
	if len(f) < 21 {
		return Record{}, false, malformed(n, "psl: want 21 columns, got %d", len(f))
	}
	ints, err := atoiAll(n, f, 0, 1, 2, 4, 6, 11, 12)
	if err != nil {
		return Record{}, false, err
	}
	matches, misMatches, repMatches := ints[0], ints[1], ints[2]
	qNumInsert, tNumInsert := ints[3], ints[4]
	qStart, qEnd := ints[5], ints[6]

	aligned := matches + repMatches + misMatches
	if aligned <= 0 {
		return Record{}, false, malformed(n, "psl: no aligned bases")
	}
	if qEnd < qStart {
		return Record{}, false, malformed(n, "psl: qEnd %d < qStart %d", qEnd, qStart)
	}
	strand, err := parseStrand(n, f[8])
	if err != nil {
		return Record{}, false, err
	}
	if f[9] == "" || f[13] == "" {
		return Record{}, false, malformed(n, "psl: empty sequence name")
	}
	return Record{
		A:        f[9],
		B:        f[13],
		Identity: float64(matches+repMatches) / float64(aligned),
		Length:   qEnd - qStart,
		Indels:   qNumInsert + tNumInsert,
		Strand:   strand,
		Line:     n,
	}, false, nil
}

// DecodeTSV reads "a b identity length indels strand". Identity above 1 is
// taken as a percentage.
func DecodeTSV(line string, n int) (Record, bool, error) {
	if isBlankOrComment(line) {
		return Record{}, true, nil
	}
	f := strings.Fields(line)
	if len(f) != 6 {
		return Record{}, false, malformed(n, "tsv: want 6 fields, got %d", len(f))
	}
	id, err := strconv.ParseFloat(f[2], 64)
	if err != nil || id < 0 {
		return Record{}, false, malformed(n, "tsv: bad identity %q", f[2])
	}
	if id > 1 {
		id /= 100
	}
	if id > 1 {
		return Record{}, false, malformed(n, "tsv: identity %q out of range", f[2])
	}
	ints, err := atoiAll(n, f, 3, 4)
	if err != nil {
		return Record{}, false, err
	}
	strand, err := parseStrand(n, f[5])
	if err != nil {
		return Record{}, false, err
	}
	return Record{A: f[0], B: f[1], Identity: id, Length: ints[0], Indels: ints[1], Strand: strand, Line: n}, false, nil
}

func isBlankOrComment(line string) bool {
	s := strings.TrimSpace(line)
	return s == "" || s[0] == '#'
}

func isPSLHeader(line string) bool {
	return strings.HasPrefix(line, "psLayout") ||
		strings.HasPrefix(line, "match") ||
		strings.HasPrefix(line, "     ") ||
		strings.HasPrefix(line, "---")
}

func parseStrand(n int, s string) (byte, error) {
	// PSL translated searches write two chars ("+-"); the first is the query.
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[0], nil
	}
	return 0, malformed(n, "bad strand %q", s)
}

func atoiAll(n int, f []string, cols ...int) ([]int, error) {
	out := make([]int, len(cols))
	for i, c := range cols {
		v, err := strconv.Atoi(f[c])
		if err != nil || v < 0 {
			return nil, malformed(n, "column %d: bad integer %q", c+1, f[c])
		}
		out[i] = v
	}
	return out, nil
}
