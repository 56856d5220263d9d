package evidence

import (
	"errors"
	"fmt"
)

// Record is one pairwise overlap reported by an aligner.
type Record struct {
	A        string  // query contig id
	B        string  // target contig id
	Identity float64 // fraction in [0,1]
	Length   int     // aligned span
	Indels   int     // gap openings on either side
	Strand   byte    // '+' or '-' (relative orientation of A to B)
	Line     int     // 1-based input line, 0 when unknown
}

// MalformedRecordError reports one undecodable evidence line.
type MalformedRecordError struct {
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed evidence record at line %d: %s", e.Line, e.Reason)
}

// ProducerError reports an evidence producer that failed as a whole.
type ProducerError struct {
	Producer string
	Err      error
	Stderr   string
}

func (e *ProducerError) Error() string {
	msg := fmt.Sprintf("evidence producer %s failed: %v", e.Producer, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ProducerError) Unwrap() error { return e.Err }

// IsMalformed reports whether err is a per-record decode failure.
func IsMalformed(err error) bool {
	var m *MalformedRecordError
	return errors.As(err, &m)
}

func malformed(line int, format string, a ...any) error {
	return &MalformedRecordError{Line: line, Reason: fmt.Sprintf(format, a...)}
}
