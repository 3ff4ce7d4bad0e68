package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/rf4catch/internal/pipeline"
	"gopkg.in/yaml.v3"
)

type fileEntry struct {
	File              string `json:"file" yaml:"file"`
	pipeline.Document `yaml:",inline"`
	Error             string `json:"error,omitempty" yaml:"error,omitempty"`
}

type batchDocument struct {
	Files      []fileEntry `json:"files" yaml:"files"`
	Incomplete []string    `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`
}

func buildDocument(r *Result) batchDocument {
	doc := batchDocument{Files: make([]fileEntry, len(r.Pairs)), Incomplete: r.Incomplete}
	for i, p := range r.Pairs {
		entry := fileEntry{File: p.Name, Document: pipeline.NewDocument(&pipeline.Result{}, false)}
		if res := r.Results[i]; res != nil {
			entry.Document = pipeline.NewDocument(res, r.Verbose)
		} else if r.Errors[i] != nil {
			entry.Error = r.Errors[i].Error()
		}
		doc.Files[i] = entry
	}
	return doc
}

// formatBatchResults formats the batch processing results in the specified format.
func formatBatchResults(r *Result, format string) (string, error) {
	switch format {
	case pipeline.FormatJSON, "":
		return formatJSON(r)
	case pipeline.FormatYAML:
		return formatYAML(r)
	case pipeline.FormatCSV:
		return formatCSV(r)
	case pipeline.FormatText:
		return formatText(r)
	default:
		return "", fmt.Errorf("unsupported output format %q (want one of %s)", format, strings.Join(pipeline.Formats, ", "))
	}
}

func formatJSON(r *Result) (string, error) {
	bts, err := json.MarshalIndent(buildDocument(r), "", "  ")
	if err != nil {
		return "", err
	}
	return string(bts) + "\n", nil
}

func formatYAML(r *Result) (string, error) {
	bts, err := yaml.Marshal(buildDocument(r))
	return string(bts), err
}

// formatCSV writes one row per record, prefixed with the pair name. Failed
// pairs produce no rows.
func formatCSV(r *Result) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	if err := writer.Write(append([]string{"file"}, pipeline.CSVHeader()...)); err != nil {
		return "", err
	}
	for i, res := range r.Results {
		if res == nil {
			continue
		}
		for _, t := range res.Tuples() {
			if err := writer.Write(append([]string{r.Pairs[i].Name}, t[:]...)); err != nil {
				return "", err
			}
		}
	}
	writer.Flush()
	return output.String(), writer.Error()
}

func formatText(r *Result) (string, error) {
	var output strings.Builder
	for i, res := range r.Results {
		if i > 0 {
			output.WriteString("\n")
		}
		fmt.Fprintf(&output, "# %s\n", r.Pairs[i].Name)
		if res == nil {
			if r.Errors[i] != nil {
				fmt.Fprintf(&output, "error: %v\n", r.Errors[i])
			}
			continue
		}
		text, err := pipeline.ToText(res)
		if err != nil {
			return "", err
		}
		output.WriteString(text)
	}
	return output.String(), nil
}
