package testutil

import (
	"encoding/json"
	"image"
	"image/color"
	"testing"
)

// Prediction is one detector box in center+size form.
type Prediction struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	Class      string  `json:"class"`
}

// Card returns a fish_card prediction.
func Card(x, y, w, h, conf float64) Prediction {
	return Prediction{X: x, Y: y, Width: w, Height: h, Confidence: conf, Class: "fish_card"}
}

// Word is one OCR fragment in corner+size form.
type Word struct {
	Text   string
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Screen is a synthetic catch screen: detector boxes, OCR words and the
// records they should produce.
type Screen struct {
	Width       float64
	Height      float64
	Predictions []Prediction
	Words       []Word
	Expected    [][4]string
}

// SampleScreen returns a 1920x1080 screen with three fish cards, two of
// which carry text. The first word lies outside the ROI.
func SampleScreen() Screen {
	return Screen{
		Width:  1920,
		Height: 1080,
		Predictions: []Prediction{
			Card(960, 300, 1000, 80, 0.97),
			Card(960, 420, 1000, 80, 0.951),
			Card(960, 540, 1000, 80, 0.42),
		},
		Words: []Word{
			{"鱼市", 100, 50, 80, 30},
			{"42", 500, 285, 40, 30},
			{"分-97%", 538, 285, 60, 30},
			{"镜鲤", 700, 285, 60, 30},
			{"3705克", 900, 285, 80, 30},
			{"2.59", 1100, 285, 50, 30},
			{"√", 1300, 285, 20, 30},
			{"7分-12%", 500, 405, 90, 30},
			{"鲤鲫鱼", 700, 405, 80, 30},
			{"1.2", 900, 405, 40, 30},
			{"公斤", 945, 405, 40, 30},
			{"13.5", 1100, 405, 50, 30},
		},
		Expected: [][4]string{
			{"42分", "镜鲤", "3.705", "2.59"},
			{"7分", "鲤鲫鱼", "1.2", "13.5"},
		},
	}
}

// DetectorJSON encodes the predictions as a detection workflow response.
func (s Screen) DetectorJSON() []byte {
	return DetectorJSON(s.Width, s.Height, s.Predictions...)
}

// OCRJSON encodes the words as an OCR service response.
func (s Screen) OCRJSON() []byte {
	return OCRJSON(s.Words...)
}

// WritePair writes <name>.det.json and <name>.ocr.json into dir.
func (s Screen) WritePair(t *testing.T, dir, name string) (detPath, ocrPath string) {
	t.Helper()
	return WriteFile(t, dir, name+".det.json", s.DetectorJSON()),
		WriteFile(t, dir, name+".ocr.json", s.OCRJSON())
}

// DetectorJSON builds {"outputs":[{"predictions":{"image":...,"predictions":[...]}}]}.
func DetectorJSON(width, height float64, preds ...Prediction) []byte {
	if preds == nil {
		preds = []Prediction{}
	}
	doc := map[string]interface{}{
		"outputs": []interface{}{
			map[string]interface{}{
				"count_objects": len(preds),
				"predictions": map[string]interface{}{
					"image":       map[string]float64{"width": width, "height": height},
					"predictions": preds,
				},
			},
		},
	}
	return mustJSON(doc)
}

// OCRJSON builds {"words_result":[...],"words_result_num":n}.
func OCRJSON(words ...Word) []byte {
	type location struct {
		Top    float64 `json:"top"`
		Left   float64 `json:"left"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	type entry struct {
		Words    string   `json:"words"`
		Location location `json:"location"`
	}
	entries := make([]entry, len(words))
	for i, w := range words {
		entries[i] = entry{Words: w.Text, Location: location{Top: w.Top, Left: w.Left, Width: w.Width, Height: w.Height}}
	}
	return mustJSON(map[string]interface{}{
		"words_result":     entries,
		"words_result_num": len(entries),
		"log_id":           1,
	})
}

func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// CreateTestImage returns a solid image of the given size.
func CreateTestImage(width, height int, background color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, background)
		}
	}
	return img
}
