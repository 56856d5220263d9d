package writers

import (
	"encoding/json"
	"io"

	"github.com/LRFreeborn/transabyss/pkg/api"
)

// WriteReport writes r as indented JSON.
func WriteReport(w io.Writer, r api.ReportV1) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
