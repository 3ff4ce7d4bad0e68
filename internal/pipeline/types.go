package pipeline

import (
	"github.com/MeKo-Tech/rf4catch/internal/catch"
	"github.com/MeKo-Tech/rf4catch/internal/region"
	"github.com/MeKo-Tech/rf4catch/internal/textline"
)

// Result is the output of one extraction.
type Result struct {
	RunID       string                   `json:"run_id"`
	ImageWidth  float64                  `json:"image_width"`
	ImageHeight float64                  `json:"image_height"`
	Regions     []region.DetectionRegion `json:"regions"`
	Lines       []textline.Line          `json:"lines"`
	Records     []catch.Record           `json:"fishes"`
	Rejected    []region.Rejection       `json:"rejected,omitempty"`

	// Timing
	Processing struct {
		NormalizeNs int64 `json:"normalize_ns"`
		MergeNs     int64 `json:"merge_ns"`
		AssembleNs  int64 `json:"assemble_ns"`
		TotalNs     int64 `json:"total_ns"`
	} `json:"processing"`
}

// Tuples returns the records in their four-string form.
func (r *Result) Tuples() [][4]string {
	out := make([][4]string, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Tuple()
	}
	return out
}
