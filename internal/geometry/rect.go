// Package geometry provides the axis-aligned rectangle model shared by the
// detector and OCR sides of the extraction pipeline.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// DefaultMarginX is the horizontal tolerance, in pixels, used when testing
// whether two rectangles overlap.
const DefaultMarginX = 10.0

// Rect is an axis-aligned rectangle in source-image pixel units.
// Rect values are never modified in place; every transform returns a new Rect.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FromCorner builds a Rect from its top-left corner and size
// (the OCR convention).
func FromCorner(left, top, width, height float64) Rect {
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

// FromCenter builds a Rect from its center point and size
// (the YOLO detector convention).
func FromCenter(cx, cy, width, height float64) Rect {
	return Rect{Left: cx - width/2, Top: cy - height/2, Width: width, Height: height}
}

// FromBounds builds a Rect from its left/top/right/bottom edges.
func FromBounds(left, top, right, bottom float64) Rect {
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Area returns width*height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Finite reports whether every coordinate is a finite number.
func (r Rect) Finite() bool {
	for _, v := range [...]float64{r.Left, r.Top, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Valid reports whether the rectangle is finite and has non-negative size.
func (r Rect) Valid() bool {
	return r.Finite() && r.Width >= 0 && r.Height >= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect(left=%.1f, top=%.1f, width=%.1f, height=%.1f)", r.Left, r.Top, r.Width, r.Height)
}

// Overlaps reports whether a and b overlap. Vertical extents must intersect
// exactly; horizontal extents may be up to marginX apart on either side.
func Overlaps(a, b Rect, marginX float64) bool {
	if a.Right()+marginX < b.Left || a.Left-marginX > b.Right() {
		return false
	}
	if a.Bottom() < b.Top || a.Top > b.Bottom() {
		return false
	}
	return true
}

// OverlapArea returns the area of the true geometric intersection of a and b,
// or 0 when they do not intersect. No margin is applied.
func OverlapArea(a, b Rect) float64 {
	w := math.Min(a.Right(), b.Right()) - math.Max(a.Left, b.Left)
	h := math.Min(a.Bottom(), b.Bottom()) - math.Max(a.Top, b.Top)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IoU returns the intersection over union of a and b in [0,1].
func IoU(a, b Rect) float64 {
	inter := OverlapArea(a, b)
	if inter == 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Union returns the smallest Rect containing both a and b.
func Union(a, b Rect) Rect {
	return FromBounds(
		math.Min(a.Left, b.Left),
		math.Min(a.Top, b.Top),
		math.Max(a.Right(), b.Right()),
		math.Max(a.Bottom(), b.Bottom()),
	)
}

// Clamp limits r to the image area [0,width]x[0,height]. The result may have
// zero size when r lies entirely outside the image; callers check Valid.
func Clamp(r Rect, width, height float64) Rect {
	left := math.Max(0, r.Left)
	top := math.Max(0, r.Top)
	right := math.Min(width, r.Right())
	bottom := math.Min(height, r.Bottom())
	return FromBounds(left, top, right, bottom)
}

// ExpandX grows r horizontally by margin on both sides.
func ExpandX(r Rect, margin float64) Rect {
	return Rect{Left: r.Left - margin, Top: r.Top, Width: r.Width + 2*margin, Height: r.Height}
}

// Min returns the top-left corner as a point pair, as used by spatial indexes.
func (r Rect) Min() [2]float64 { return [2]float64{r.Left, r.Top} }

// Max returns the bottom-right corner as a point pair.
func (r Rect) Max() [2]float64 { return [2]float64{r.Right(), r.Bottom()} }

// ToImageRect converts r to an image.Rectangle clamped to bounds.
func (r Rect) ToImageRect(bounds image.Rectangle) image.Rectangle {
	x1 := clampInt(int(math.Floor(r.Left)), bounds.Min.X, bounds.Max.X)
	y1 := clampInt(int(math.Floor(r.Top)), bounds.Min.Y, bounds.Max.Y)
	x2 := clampInt(int(math.Ceil(r.Right())), bounds.Min.X, bounds.Max.X)
	y2 := clampInt(int(math.Ceil(r.Bottom())), bounds.Min.Y, bounds.Max.Y)
	if x2 < x1 {
		x2 = x1
	}
	if y2 < y1 {
		y2 = y1
	}
	return image.Rect(x1, y1, x2, y2)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
