package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/MeKo-Tech/rf4catch/internal/payload"
	"github.com/MeKo-Tech/rf4catch/internal/region"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var vocabulary = []string{"42分-97%", "7分", "镜鲤", "鲤鲫鱼", "3705克", "1.2公斤", "2.59", "13.5", "√", "草鱼"}

func f64(v float64) *float64 { return &v }

// genWord places a vocabulary word somewhere on the catch screen.
func genWord() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, len(vocabulary)-1),
		gen.Float64Range(300, 1600),
		gen.Float64Range(100, 900),
		gen.Float64Range(10, 120),
	).Map(func(v []interface{}) region.Word {
		return region.Word{
			Text:   vocabulary[v[0].(int)],
			Left:   f64(v[1].(float64)),
			Top:    f64(v[2].(float64)),
			Width:  f64(v[3].(float64)),
			Height: f64(30),
		}
	})
}

func genCard() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(400, 1500),
		gen.Float64Range(150, 900),
		gen.Float64Range(0, 1),
	).Map(func(v []interface{}) region.Detection {
		return region.Detection{
			XCenter:    f64(v[0].(float64)),
			YCenter:    f64(v[1].(float64)),
			Width:      f64(800),
			Height:     f64(90),
			Confidence: v[2].(float64),
			Class:      "fish_card",
		}
	})
}

func TestProperty_ExtractIsIdempotent(t *testing.T) {
	ex, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	render := func(det *payload.Detections, ocr *payload.OCR) (string, error) {
		res, err := ex.Extract(context.Background(), det, ocr)
		if err != nil {
			return "", err
		}
		return ToJSON(res, false)
	}

	properties := gopter.NewProperties(nil)

	properties.Property("same input renders byte-identical output", prop.ForAll(
		func(cards []region.Detection, words []region.Word) string {
			det := &payload.Detections{ImageWidth: 1920, ImageHeight: 1080, Items: cards}
			ocr := &payload.OCR{Words: words}

			first, err := render(det, ocr)
			if err != nil {
				return err.Error()
			}
			second, err := render(det, ocr)
			if err != nil {
				return err.Error()
			}
			if first != second {
				return fmt.Sprintf("outputs differ:\n%s\n%s", first, second)
			}
			return ""
		},
		gen.SliceOfN(5, genCard()),
		gen.SliceOfN(25, genWord()),
	))

	properties.Property("at most one record per region", prop.ForAll(
		func(cards []region.Detection, words []region.Word) bool {
			det := &payload.Detections{ImageWidth: 1920, ImageHeight: 1080, Items: cards}
			res, err := ex.Extract(context.Background(), det, &payload.OCR{Words: words})
			if err != nil {
				return false
			}
			seen := map[int]bool{}
			for _, r := range res.Records {
				if seen[r.RegionIndex] {
					return false
				}
				seen[r.RegionIndex] = true
			}
			return len(res.Records) <= len(res.Regions)
		},
		gen.SliceOfN(5, genCard()),
		gen.SliceOfN(25, genWord()),
	))

	properties.TestingRun(t)
}
