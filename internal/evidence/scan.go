package evidence

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// ScanStats counts what Scan saw.
type ScanStats struct {
	Records   int
	Malformed int
}

// Scan decodes r line by line and calls emit for every record. Malformed
// lines are logged and skipped; read errors and emit errors are returned.
func Scan(ctx context.Context, r io.Reader, dec Decoder, logger *log.Logger, emit func(Record) error) (ScanStats, error) {
	var st ScanStats
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		if n&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
		}
		rec, skip, err := dec(sc.Text(), n)
		if err != nil {
			if IsMalformed(err) {
				st.Malformed++
				logger.Warn("skipping evidence record", "err", err)
				continue
			}
			return st, err
		}
		if skip {
			continue
		}
		st.Records++
		if err := emit(rec); err != nil {
			return st, err
		}
	}
	if err := sc.Err(); err != nil {
		return st, fmt.Errorf("evidence scan: %w", err)
	}
	return st, ctx.Err()
}
