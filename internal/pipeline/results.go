package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/rf4catch/internal/catch"
	"github.com/MeKo-Tech/rf4catch/internal/field"
	"github.com/MeKo-Tech/rf4catch/internal/region"
	"github.com/MeKo-Tech/rf4catch/internal/textline"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatText, FormatCSV, FormatYAML}

// IsSupportedFormat reports whether f is a known output format.
func IsSupportedFormat(f string) bool {
	for _, s := range Formats {
		if s == f {
			return true
		}
	}
	return false
}

// Document is the serialized form of a Result. Only Fishes is present unless
// verbose output is requested.
type Document struct {
	RunID    string                   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Fishes   []catch.Record           `json:"fishes" yaml:"fishes"`
	Regions  []region.DetectionRegion `json:"regions,omitempty" yaml:"regions,omitempty"`
	Lines    []textline.Line          `json:"lines,omitempty" yaml:"lines,omitempty"`
	Rejected []region.Rejection       `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

// NewDocument builds the document for res.
func NewDocument(res *Result, verbose bool) Document {
	doc := Document{Fishes: res.Records}
	if doc.Fishes == nil {
		doc.Fishes = []catch.Record{}
	}
	if verbose {
		doc.RunID = res.RunID
		doc.Regions = res.Regions
		doc.Lines = res.Lines
		doc.Rejected = res.Rejected
	}
	return doc
}

// Format renders res in the given format.
func Format(res *Result, format string, verbose bool) (string, error) {
	switch format {
	case FormatJSON, "":
		return ToJSON(res, verbose)
	case FormatText:
		return ToText(res)
	case FormatCSV:
		return ToCSV(res)
	case FormatYAML:
		return ToYAML(res, verbose)
	default:
		return "", fmt.Errorf("unsupported output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// ToJSON serializes res to pretty JSON.
func ToJSON(res *Result, verbose bool) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(NewDocument(res, verbose), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

// ToYAML serializes res to YAML.
func ToYAML(res *Result, verbose bool) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := yaml.Marshal(NewDocument(res, verbose))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToText renders one "#n tp | name | weight | price" line per record.
func ToText(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var sb strings.Builder
	for i, rec := range res.Records {
		t := rec.Tuple()
		fmt.Fprintf(&sb, "#%d %s\n", i+1, strings.Join(t[:], " | "))
	}
	return sb.String(), nil
}

// CSVHeader is the header row of CSV output.
func CSVHeader() []string {
	h := make([]string, len(field.Names))
	for i, n := range field.Names {
		h[i] = string(n)
	}
	return h
}

// ToCSV exports the records as CSV with header.
func ToCSV(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(CSVHeader()); err != nil {
		return "", err
	}
	for _, rec := range res.Records {
		t := rec.Tuple()
		if err := w.Write(t[:]); err != nil {
			return "", err
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}
