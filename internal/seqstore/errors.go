package seqstore

import (
	"errors"
	"fmt"
)

// ErrEmptySourceSet is returned when no usable source was supplied.
var ErrEmptySourceSet = errors.New("no input sources")

// DuplicateIdentifierError reports two records resolving to the same
// composed identifier.
type DuplicateIdentifierError struct {
	ID          string
	FirstSource string
	Source      string
}

func (e *DuplicateIdentifierError) Error() string {
	if e.FirstSource == e.Source {
		return fmt.Sprintf("duplicate sequence identifier %q in %s", e.ID, e.Source)
	}
	return fmt.Sprintf("duplicate sequence identifier %q (first in %s, again in %s)", e.ID, e.FirstSource, e.Source)
}
