// Package textline groups OCR fragments into logical text lines.
//
// Merging is a single pass over the fragments in OCR order. A fragment can
// only join the line directly before it, never an earlier one, so lines are
// correct only when the OCR engine returns the fragments of one line
// consecutively. Interleaved layouts produce split lines; this is a known
// limitation of the fold and is kept as-is.
package textline

import (
	"log/slog"

	"github.com/MeKo-Tech/rf4catch/internal/geometry"
	"github.com/MeKo-Tech/rf4catch/internal/region"
)

// DefaultROI is the acceptance rectangle for the 1920x1080 catch screen.
var DefaultROI = geometry.FromCorner(410, 126, 1510, 954)

// Line is a merged text line. RegionIndex is nil until the line is bound to
// a detection region.
type Line struct {
	region.TextFragment `yaml:",inline"`
	RegionIndex         *int `json:"region_index,omitempty" yaml:"region_index,omitempty"`
}

// Bound reports whether the line has been associated with a region.
func (l Line) Bound() bool { return l.RegionIndex != nil }

// Merger folds fragments into lines. The zero value accepts every fragment
// and merges without horizontal tolerance; use NewMerger for the defaults.
// A Merger holds no state between calls and is safe for concurrent use.
type Merger struct {
	// ROI filters fragments before merging when UseROI is set.
	ROI    geometry.Rect
	UseROI bool
	// MarginX is the horizontal overlap tolerance.
	MarginX float64
	Logger  *slog.Logger
}

// NewMerger returns a Merger with the default ROI and margin.
func NewMerger() *Merger {
	return &Merger{ROI: DefaultROI, UseROI: true, MarginX: geometry.DefaultMarginX}
}

// Accepts reports whether a fragment passes the ROI filter.
func (m *Merger) Accepts(frag region.TextFragment) bool {
	if !m.UseROI {
		return true
	}
	return geometry.Overlaps(m.ROI, frag.Rect, m.MarginX)
}

// Merge folds frags, in the given order, into lines.
func (m *Merger) Merge(frags []region.TextFragment) []Line {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lines := make([]Line, 0, len(frags))
	dropped := 0
	for _, frag := range frags {
		if !m.Accepts(frag) {
			dropped++
			continue
		}
		if n := len(lines); n > 0 && geometry.Overlaps(lines[n-1].Rect, frag.Rect, m.MarginX) {
			lines[n-1].TextFragment = lines[n-1].Combine(frag)
			continue
		}
		lines = append(lines, Line{TextFragment: frag})
	}

	logger.Debug("merged text fragments",
		"fragments", len(frags), "outside_roi", dropped, "lines", len(lines))
	return lines
}
