package geometry

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genRect generates rectangles on an integer pixel grid so that edge
// arithmetic is exact.
func genRect() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 500),
		gen.IntRange(0, 500),
		gen.IntRange(0, 200),
		gen.IntRange(0, 200),
	).Map(func(vals []interface{}) Rect {
		left, ok := vals[0].(int)
		if !ok {
			panic("expected int")
		}
		top, ok := vals[1].(int)
		if !ok {
			panic("expected int")
		}
		w, ok := vals[2].(int)
		if !ok {
			panic("expected int")
		}
		h, ok := vals[3].(int)
		if !ok {
			panic("expected int")
		}
		return FromCorner(float64(left), float64(top), float64(w), float64(h))
	})
}

// genPositiveRect generates rectangles with strictly positive area.
func genPositiveRect() gopter.Gen {
	return genRect().SuchThat(func(r Rect) bool { return r.Area() > 0 })
}

func TestOverlaps_Symmetric(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("overlaps without margin is symmetric", prop.ForAll(
		func(a, b Rect) bool {
			return Overlaps(a, b, 0) == Overlaps(b, a, 0)
		},
		genRect(), genRect(),
	))

	properties.TestingRun(t)
}

func TestOverlapArea_Bounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("area is zero when rectangles do not overlap", prop.ForAll(
		func(a, b Rect) bool {
			if Overlaps(a, b, 0) {
				return true
			}
			return OverlapArea(a, b) == 0
		},
		genRect(), genRect(),
	))

	properties.Property("area never exceeds the smaller rectangle", prop.ForAll(
		func(a, b Rect) bool {
			area := OverlapArea(a, b)
			return area >= 0 && area <= math.Min(a.Area(), b.Area())
		},
		genRect(), genRect(),
	))

	properties.Property("margin never creates phantom area", prop.ForAll(
		func(a Rect, gap int) bool {
			b := FromCorner(a.Right()+float64(gap), a.Top, 10, a.Height)
			return OverlapArea(a, b) == 0
		},
		genRect(), gen.IntRange(1, 9),
	))

	properties.TestingRun(t)
}

func TestIoU_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("iou of a rectangle with itself is one", prop.ForAll(
		func(a Rect) bool {
			return math.Abs(IoU(a, a)-1) < 1e-12
		},
		genPositiveRect(),
	))

	properties.Property("iou stays within [0,1] and is symmetric", prop.ForAll(
		func(a, b Rect) bool {
			v := IoU(a, b)
			return v >= 0 && v <= 1 && v == IoU(b, a)
		},
		genRect(), genRect(),
	))

	properties.TestingRun(t)
}

func TestUnion_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("union contains both inputs", prop.ForAll(
		func(a, b Rect) bool {
			u := Union(a, b)
			return u.Left <= a.Left && u.Left <= b.Left &&
				u.Top <= a.Top && u.Top <= b.Top &&
				u.Right() >= a.Right() && u.Right() >= b.Right() &&
				u.Bottom() >= a.Bottom() && u.Bottom() >= b.Bottom()
		},
		genRect(), genRect(),
	))

	properties.Property("union is associative", prop.ForAll(
		func(a, b, c Rect) bool {
			return Union(Union(a, b), c) == Union(a, Union(b, c))
		},
		genRect(), genRect(), genRect(),
	))

	properties.TestingRun(t)
}
