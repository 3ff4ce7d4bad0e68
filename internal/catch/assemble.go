package catch

import (
	"log/slog"
	"unicode/utf8"

	"github.com/MeKo-Tech/rf4catch/internal/field"
	"github.com/MeKo-Tech/rf4catch/internal/geometry"
	"github.com/MeKo-Tech/rf4catch/internal/region"
	"github.com/MeKo-Tech/rf4catch/internal/textline"
	"github.com/tidwall/rtree"
)

// DefaultMinTextRunes is the shortest line text that is classified. Shorter
// lines are OCR noise such as check marks.
const DefaultMinTextRunes = 2

// searchSlack widens index queries so float rounding in the query box never
// hides a candidate; every hit is re-checked with geometry.Overlaps.
const searchSlack = 1e-6

// Index is a spatial index over detection regions.
type Index struct {
	tree    rtree.RTreeG[region.DetectionRegion]
	marginX float64
}

// NewIndex indexes regions for overlap lookups with the given horizontal
// tolerance.
func NewIndex(regions []region.DetectionRegion, marginX float64) *Index {
	idx := &Index{marginX: marginX}
	for _, r := range regions {
		idx.tree.Insert(r.Rect.Min(), r.Rect.Max(), r)
	}
	return idx
}

// Len returns the number of indexed regions.
func (idx *Index) Len() int { return idx.tree.Len() }

// Lookup returns the lowest-indexed region overlapping rect.
func (idx *Index) Lookup(rect geometry.Rect) (int, bool) {
	q := geometry.ExpandX(rect, idx.marginX+searchSlack)
	minPt := [2]float64{q.Left, q.Top - searchSlack}
	maxPt := [2]float64{q.Right(), q.Bottom() + searchSlack}

	best, found := 0, false
	idx.tree.Search(minPt, maxPt, func(_, _ [2]float64, r region.DetectionRegion) bool {
		if !geometry.Overlaps(rect, r.Rect, idx.marginX) {
			return true
		}
		if !found || r.Index < best {
			best, found = r.Index, true
		}
		return true
	})
	return best, found
}

// Bind returns a copy of lines with RegionIndex set to the lowest-indexed
// overlapping region. Lines that overlap no region stay unbound.
func Bind(lines []textline.Line, idx *Index) []textline.Line {
	out := make([]textline.Line, len(lines))
	for i, l := range lines {
		out[i] = textline.Line{TextFragment: l.TextFragment}
		if ri, ok := idx.Lookup(l.Rect); ok {
			out[i].RegionIndex = &ri
		}
	}
	return out
}

// Assembler folds bound lines into catch records. A nil Classifier uses the
// default fish name whitelist.
type Assembler struct {
	Classifier   *field.Classifier
	MinTextRunes int
	Logger       *slog.Logger
}

// Assemble emits one record per region, in region order, for every region
// that received at least one classified line. Lines are classified in their
// merged order; a later line overwrites an earlier value for the same field.
func (a *Assembler) Assemble(lines []textline.Line, regions []region.DetectionRegion) []Record {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	classifier := a.Classifier
	if classifier == nil {
		classifier = field.NewClassifier(nil)
	}

	byRegion := make(map[int][]textline.Line, len(regions))
	for _, l := range lines {
		if !l.Bound() {
			continue
		}
		if utf8.RuneCountInString(l.Text) < a.MinTextRunes {
			logger.Debug("skipping short line", "text", l.Text, "region", *l.RegionIndex)
			continue
		}
		byRegion[*l.RegionIndex] = append(byRegion[*l.RegionIndex], l)
	}

	records := make([]Record, 0, len(regions))
	for _, r := range regions {
		bound := byRegion[r.Index]
		if len(bound) == 0 {
			continue
		}
		rec := Record{RegionIndex: r.Index}
		for _, l := range bound {
			name, value := classifier.Classify(l.Text)
			rec.Set(name, value)
		}
		records = append(records, rec)
	}
	return records
}
