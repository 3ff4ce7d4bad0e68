package pipeline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/rf4catch/internal/catch"
	"github.com/MeKo-Tech/rf4catch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult(t *testing.T) *Result {
	t.Helper()
	det, ocr := decodeScreen(t, testutil.SampleScreen())
	res, err := newExtractor(t, NewBuilder()).Extract(context.Background(), det, ocr)
	require.NoError(t, err)
	return res
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(sampleResult(t), false)
	require.NoError(t, err)

	var doc struct {
		Fishes [][]string `json:"fishes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, [][]string{
		{"42分", "镜鲤", "3.705", "2.59"},
		{"7分", "鲤鲫鱼", "1.2", "13.5"},
	}, doc.Fishes)
	assert.NotContains(t, out, "run_id")
	assert.NotContains(t, out, "regions")
}

func TestToJSON_EmptyResult(t *testing.T) {
	out, err := ToJSON(&Result{}, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fishes": []}`, out)
}

func TestToJSON_Verbose(t *testing.T) {
	res := sampleResult(t)
	out, err := ToJSON(res, true)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "run_id")
	assert.Contains(t, doc, "regions")
	assert.Contains(t, doc, "lines")
	assert.NotContains(t, doc, "rejected", "nothing was rejected")

	var lines []struct {
		Text        string `json:"text"`
		RegionIndex *int   `json:"region_index"`
	}
	require.NoError(t, json.Unmarshal(doc["lines"], &lines))
	require.Len(t, lines, len(res.Lines))
	assert.Equal(t, "42分-97%", lines[0].Text)
	require.NotNil(t, lines[0].RegionIndex)
	assert.Equal(t, 0, *lines[0].RegionIndex)
}

func TestToYAML(t *testing.T) {
	out, err := ToYAML(sampleResult(t), false)
	require.NoError(t, err)

	var doc struct {
		Fishes [][]string `yaml:"fishes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Fishes, 2)
	assert.Equal(t, []string{"7分", "鲤鲫鱼", "1.2", "13.5"}, doc.Fishes[1])
}

func TestToText(t *testing.T) {
	out, err := ToText(sampleResult(t))
	require.NoError(t, err)
	assert.Equal(t, "#1 42分 | 镜鲤 | 3.705 | 2.59\n#2 7分 | 鲤鲫鱼 | 1.2 | 13.5\n", out)

	out, err = ToText(&Result{Records: []catch.Record{{Price: "2.59"}}})
	require.NoError(t, err)
	assert.Equal(t, "#1  |  |  | 2.59\n", out)
}

func TestToCSV(t *testing.T) {
	out, err := ToCSV(sampleResult(t))
	require.NoError(t, err)
	assert.Equal(t,
		"time_percentage,fish_name,weight,price\n42分,镜鲤,3.705,2.59\n7分,鲤鲫鱼,1.2,13.5\n",
		out)
}

func TestFormat(t *testing.T) {
	res := sampleResult(t)

	for _, f := range append([]string{""}, Formats...) {
		t.Run("format_"+f, func(t *testing.T) {
			out, err := Format(res, f, false)
			require.NoError(t, err)
			assert.Contains(t, out, "镜鲤")
		})
	}

	_, err := Format(res, "xml", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")

	assert.True(t, IsSupportedFormat("csv"))
	assert.False(t, IsSupportedFormat("xml"))
}

func TestFormat_NilResult(t *testing.T) {
	for _, f := range Formats {
		_, err := Format(nil, f, false)
		assert.Error(t, err, f)
	}
}
