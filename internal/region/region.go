// Package region converts detector and OCR output into canonical rectangles.
//
// Detector boxes arrive in center+size form and are truncated and clamped to
// the source image; OCR words arrive in corner+size form and pass through
// unclamped. Malformed elements are rejected one at a time and never abort
// the conversion of the rest.
package region

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/MeKo-Tech/rf4catch/internal/geometry"
	"golang.org/x/text/width"
)

// Stage names used in rejections and stage errors.
const (
	StageDetector = "detector"
	StageOCR      = "ocr"
)

// Detection is one box as returned by the object detector.
// Pointer coordinates distinguish "missing" from zero.
type Detection struct {
	XCenter    *float64 `json:"x"`
	YCenter    *float64 `json:"y"`
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	Confidence float64  `json:"confidence"`
	Class      string   `json:"class"`

	// Malformed, when set, is why the element could not be decoded. The
	// element keeps its position so later indexes stay stable.
	Malformed string `json:"-"`
}

// Word is one OCR fragment as returned by the OCR engine.
type Word struct {
	Left   *float64 `json:"left"`
	Top    *float64 `json:"top"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Text   string   `json:"words"`

	Malformed string `json:"-"`
}

// DetectionRegion is a normalized detector box ("fish card").
// Index is the position in the detector's own output order.
type DetectionRegion struct {
	Index int           `json:"index"`
	Rect  geometry.Rect `json:"rect"`
	Label string        `json:"label,omitempty"`
}

// TextFragment is a rectangle with recognized text.
type TextFragment struct {
	Rect geometry.Rect `json:"rect"`
	Text string        `json:"text"`
}

// Combine returns a new fragment covering f and g whose text is f's text
// followed by g's. Neither input is modified.
func (f TextFragment) Combine(g TextFragment) TextFragment {
	return TextFragment{Rect: geometry.Union(f.Rect, g.Rect), Text: f.Text + g.Text}
}

// Rejection records one input element that was skipped.
type Rejection struct {
	Stage  string `json:"stage"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s[%d]: %s", r.Stage, r.Index, r.Reason)
}

// Options tune NormalizeWords.
type Options struct {
	// FoldWidth maps full-width characters (e.g. "２．５９") to their narrow
	// forms before the text reaches the classifier.
	FoldWidth bool
	Logger    *slog.Logger
}

// NormalizeDetections converts detector boxes into regions, preserving the
// detector order. Coordinates are truncated toward zero and clamped to the
// image bounds. Indexes of the returned regions refer to the position in
// dets, so a rejected element leaves a gap in the sequence.
func NormalizeDetections(dets []Detection, imageWidth, imageHeight float64, logger *slog.Logger) ([]DetectionRegion, []Rejection) {
	if logger == nil {
		logger = slog.Default()
	}
	regions := make([]DetectionRegion, 0, len(dets))
	var rejected []Rejection

	for i, d := range dets {
		rect, err := detectionRect(d, imageWidth, imageHeight)
		if err != nil {
			rej := Rejection{Stage: StageDetector, Index: i, Reason: err.Error()}
			logger.Warn("skipping detection", "stage", rej.Stage, "index", i, "reason", rej.Reason)
			rejected = append(rejected, rej)
			continue
		}
		regions = append(regions, DetectionRegion{
			Index: i,
			Rect:  rect,
			Label: fmt.Sprintf("%s-%.0f%%", d.Class, d.Confidence*100),
		})
	}

	return regions, rejected
}

func detectionRect(d Detection, imageWidth, imageHeight float64) (geometry.Rect, error) {
	if d.Malformed != "" {
		return geometry.Rect{}, errors.New(d.Malformed)
	}
	if d.XCenter == nil || d.YCenter == nil || d.Width == nil || d.Height == nil {
		return geometry.Rect{}, errors.New("missing coordinate")
	}
	cx, cy, w, h := *d.XCenter, *d.YCenter, *d.Width, *d.Height
	if !finite(cx, cy, w, h) {
		return geometry.Rect{}, errors.New("non-finite coordinate")
	}
	if w < 0 || h < 0 {
		return geometry.Rect{}, fmt.Errorf("negative size %gx%g", w, h)
	}

	raw := geometry.FromBounds(
		math.Trunc(cx-w/2),
		math.Trunc(cy-h/2),
		math.Trunc(cx+w/2),
		math.Trunc(cy+h/2),
	)
	rect := geometry.Clamp(raw, imageWidth, imageHeight)
	if !rect.Valid() {
		return geometry.Rect{}, fmt.Errorf("outside image %gx%g", imageWidth, imageHeight)
	}
	return rect, nil
}

// NormalizeWords converts OCR words into fragments in OCR order.
func NormalizeWords(words []Word, opts Options) ([]TextFragment, []Rejection) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	frags := make([]TextFragment, 0, len(words))
	var rejected []Rejection

	for i, w := range words {
		rect, err := wordRect(w)
		if err != nil {
			rej := Rejection{Stage: StageOCR, Index: i, Reason: err.Error()}
			logger.Warn("skipping OCR fragment", "stage", rej.Stage, "index", i, "reason", rej.Reason)
			rejected = append(rejected, rej)
			continue
		}
		text := w.Text
		if opts.FoldWidth {
			text = width.Narrow.String(text)
		}
		frags = append(frags, TextFragment{Rect: rect, Text: text})
	}

	return frags, rejected
}

func wordRect(w Word) (geometry.Rect, error) {
	if w.Malformed != "" {
		return geometry.Rect{}, errors.New(w.Malformed)
	}
	if w.Left == nil || w.Top == nil || w.Width == nil || w.Height == nil {
		return geometry.Rect{}, errors.New("missing location")
	}
	rect := geometry.FromCorner(*w.Left, *w.Top, *w.Width, *w.Height)
	if !rect.Finite() {
		return geometry.Rect{}, errors.New("non-finite coordinate")
	}
	if !rect.Valid() {
		return geometry.Rect{}, fmt.Errorf("negative size %gx%g", rect.Width, rect.Height)
	}
	return rect, nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
