// pkg/api/report_v1.go
package api

// ReportV1 is the stable JSON schema of the class report (--report).
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type ReportV1 struct {
	Version  string     `json:"version"`
	RunID    string     `json:"run_id"`
	Strategy string     `json:"strategy"`
	Sources  []SourceV1 `json:"sources"`
	Contigs  int        `json:"contigs"`
	Written  int        `json:"written"`
	Dropped  int        `json:"dropped_below_length,omitempty"`
	Evidence EvidenceV1 `json:"evidence"`
	Classes  []ClassV1  `json:"classes"`
}

// SourceV1 is one labeled input.
type SourceV1 struct {
	Prefix  string `json:"prefix"`
	Path    string `json:"path"`
	Contigs int    `json:"contigs"`
}

// EvidenceV1 counts evidence records by outcome.
type EvidenceV1 struct {
	Records   int              `json:"records"`
	Malformed int              `json:"malformed"`
	Edges     int64            `json:"edges"`
	Merges    int64            `json:"merges"`
	Outcomes  map[string]int64 `json:"outcomes"`
}

// ClassV1 is one equivalence class. Members are listed in input order.
// Strand is the representative's "strand=" header annotation, if any.
type ClassV1 struct {
	Representative string   `json:"representative"`
	Length         int      `json:"length"`
	Strand         string   `json:"strand,omitempty"`
	Written        bool     `json:"written"`
	Members        []string `json:"members"`
}
