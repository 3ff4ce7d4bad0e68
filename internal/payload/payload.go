// Package payload decodes detector and OCR service responses.
//
// A document that cannot be parsed at all fails with a *StageError naming the
// stage. Individual elements that fail to decode are kept in place, marked
// malformed, so the region normalizer rejects them without shifting the
// indexes of the elements that follow.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MeKo-Tech/rf4catch/internal/region"
)

// StageError reports that an upstream stage's output could not be used.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, format string, args ...interface{}) error {
	return &StageError{Stage: stage, Err: fmt.Errorf(format, args...)}
}

// Detections is a decoded detector response.
type Detections struct {
	ImageWidth  float64            `json:"image_width"`
	ImageHeight float64            `json:"image_height"`
	Items       []region.Detection `json:"predictions"`
}

// OCR is a decoded OCR response.
type OCR struct {
	Words []region.Word `json:"words"`
}

type imageInfo struct {
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

type predictionSet struct {
	Image       *imageInfo        `json:"image"`
	Predictions []json.RawMessage `json:"predictions"`
}

type workflowResponse struct {
	Outputs []struct {
		Predictions *predictionSet `json:"predictions"`
	} `json:"outputs"`
	predictionSet
}

// DecodeDetections reads a detector response. Both the workflow form
// ({"outputs":[{"predictions":{...}}]}) and the bare model form
// ({"image":{...},"predictions":[...]}) are accepted.
func DecodeDetections(r io.Reader) (*Detections, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, stageErr(region.StageDetector, "failed to read response: %w", err)
	}

	var doc workflowResponse
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, stageErr(region.StageDetector, "failed to parse response: %w", err)
	}

	set := &doc.predictionSet
	if len(doc.Outputs) > 0 {
		if doc.Outputs[0].Predictions == nil {
			return nil, stageErr(region.StageDetector, "outputs[0] has no predictions")
		}
		set = doc.Outputs[0].Predictions
	}
	if set.Image == nil || set.Image.Width == nil || set.Image.Height == nil {
		return nil, stageErr(region.StageDetector, "missing image size")
	}
	if *set.Image.Width <= 0 || *set.Image.Height <= 0 {
		return nil, stageErr(region.StageDetector, "invalid image size %gx%g", *set.Image.Width, *set.Image.Height)
	}

	out := &Detections{
		ImageWidth:  *set.Image.Width,
		ImageHeight: *set.Image.Height,
		Items:       make([]region.Detection, len(set.Predictions)),
	}
	for i, raw := range set.Predictions {
		if err := json.Unmarshal(raw, &out.Items[i]); err != nil {
			out.Items[i] = region.Detection{Malformed: fmt.Sprintf("undecodable prediction: %v", err)}
		}
	}
	return out, nil
}

type ocrLocation struct {
	Left   *float64 `json:"left"`
	Top    *float64 `json:"top"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

type ocrWord struct {
	Words    string       `json:"words"`
	Location *ocrLocation `json:"location"`
}

type ocrResponse struct {
	ErrorCode   *json.Number      `json:"error_code"`
	ErrorMsg    string            `json:"error_msg"`
	WordsResult []json.RawMessage `json:"words_result"`
}

// ErrNoWordsResult is wrapped when an OCR response carries neither words
// nor an error code.
var ErrNoWordsResult = errors.New("missing words_result")

// DecodeOCR reads an OCR response of the form
// {"words_result":[{"words":"...","location":{...}}]}.
func DecodeOCR(r io.Reader) (*OCR, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, stageErr(region.StageOCR, "failed to read response: %w", err)
	}

	var doc ocrResponse
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, stageErr(region.StageOCR, "failed to parse response: %w", err)
	}
	if doc.ErrorCode != nil {
		return nil, stageErr(region.StageOCR, "service error %s: %s", doc.ErrorCode.String(), doc.ErrorMsg)
	}
	if doc.WordsResult == nil {
		return nil, &StageError{Stage: region.StageOCR, Err: ErrNoWordsResult}
	}

	out := &OCR{Words: make([]region.Word, len(doc.WordsResult))}
	for i, raw := range doc.WordsResult {
		var w ocrWord
		if err := json.Unmarshal(raw, &w); err != nil {
			out.Words[i] = region.Word{Malformed: fmt.Sprintf("undecodable word: %v", err)}
			continue
		}
		out.Words[i] = region.Word{Text: w.Words}
		if w.Location != nil {
			out.Words[i].Left = w.Location.Left
			out.Words[i].Top = w.Location.Top
			out.Words[i].Width = w.Location.Width
			out.Words[i].Height = w.Location.Height
		}
	}
	return out, nil
}

// LoadDetections decodes a detector response file.
func LoadDetections(path string) (*Detections, error) {
	f, err := os.Open(path) //nolint:gosec // G304: payload path is user-provided
	if err != nil {
		return nil, &StageError{Stage: region.StageDetector, Err: err}
	}
	defer func() { _ = f.Close() }()
	return DecodeDetections(f)
}

// LoadOCR decodes an OCR response file.
func LoadOCR(path string) (*OCR, error) {
	f, err := os.Open(path) //nolint:gosec // G304: payload path is user-provided
	if err != nil {
		return nil, &StageError{Stage: region.StageOCR, Err: err}
	}
	defer func() { _ = f.Close() }()
	return DecodeOCR(f)
}
