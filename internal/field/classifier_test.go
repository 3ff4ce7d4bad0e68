package field

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		text      string
		wantField Name
		wantValue string
	}{
		{"42分-97%", TimePercentage, "42分"},
		{"分", TimePercentage, "分"},
		{"12分30克", TimePercentage, "12分"},
		{"3705克", Weight, "3.705"},
		{"3.705公斤", Weight, "3.705"},
		{"1000克", Weight, "1.0"},
		{" 250 克", Weight, "0.25"},
		{"12公斤345克", Weight, "12345克"},
		{"约克", Weight, "约"},
		{"镜鲤", FishName, "镜鲤"},
		{"鲤鲫鱼", FishName, "鲤鲫鱼"},
		{"2.59", Price, "2.59"},
		{"259", Price, "259"},
		{"2.", FishName, "2."},
		{".59", FishName, ".59"},
		{"2.5.9", FishName, "2.5.9"},
		{"２.５９", FishName, "２.５９"},
		{"欧鳊", FishName, "欧鳊"},
		{"", FishName, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			field, value := c.Classify(tt.text)
			assert.Equal(t, tt.wantField, field)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestClassify_CustomWhitelist(t *testing.T) {
	c := NewClassifier([]string{"123"})

	field, value := c.Classify("123")
	assert.Equal(t, FishName, field, "whitelist runs before the price rule")
	assert.Equal(t, "123", value)

	field, _ = c.Classify("镜鲤")
	assert.Equal(t, FishName, field, "unknown names still fall back to fish_name")
}

func TestRulesOrder(t *testing.T) {
	rules := NewClassifier(nil).Rules()
	require.Len(t, rules, 4)

	got := make([]Name, len(rules))
	for i, r := range rules {
		got[i] = r.Field
	}
	assert.Equal(t, []Name{TimePercentage, Weight, FishName, Price}, got)
}

func TestClassify_Deterministic(t *testing.T) {
	properties := gopter.NewProperties(nil)
	c := NewClassifier(nil)

	markers := gen.OneConstOf("", "分", "克", "公斤", ".", "镜鲤")
	text := gopter.CombineGens(gen.NumString(), markers, gen.AlphaString()).Map(func(vals []interface{}) string {
		a, _ := vals[0].(string)
		b, _ := vals[1].(string)
		tail, _ := vals[2].(string)
		return a + b + tail
	})

	properties.Property("classify is a pure function", prop.ForAll(
		func(s string) bool {
			f1, v1 := c.Classify(s)
			f2, v2 := c.Classify(s)
			return f1 == f2 && v1 == v2
		},
		text,
	))

	properties.Property("every text gets one of the four fields", prop.ForAll(
		func(s string) bool {
			f, _ := c.Classify(s)
			for _, n := range Names {
				if f == n {
					return true
				}
			}
			return false
		},
		text,
	))

	properties.TestingRun(t)
}

func TestParseCatalog(t *testing.T) {
	data := []byte(`[
  {"name": "镜鲤", "description": "common", "img": "carp.png", "fish_class": "普通", "rare_weight": "8", "super_rare_weight": "15"},
  {"name": "  "},
  {"name": "欧鳊", "rare_weight": 3.5},
  {"name": "镜鲤"}
]`)

	cat, err := ParseCatalog(data)
	require.NoError(t, err)
	require.Len(t, cat, 3)
	assert.Equal(t, "carp.png", cat[0].Image)
	assert.Equal(t, "3.5", cat[1].RareWeight)
	assert.Equal(t, []string{"镜鲤", "欧鳊"}, cat.Names())
}

func TestLoadCatalog_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fish.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: 欧鳊\n  fish_class: 稀有\n- name: 鲤鲫鱼\n"), 0o600))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"欧鳊", "鲤鲫鱼"}, cat.Names())

	c := NewClassifier(MergeNames(DefaultFishNames, cat.Names()))
	field, _ := c.Classify("欧鳊")
	assert.Equal(t, FishName, field)
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = ParseCatalog([]byte(`{"name": "not a list"}`))
	require.Error(t, err)
}

func TestMergeNames(t *testing.T) {
	got := MergeNames([]string{"镜鲤", " "}, nil, []string{"欧鳊", "镜鲤"})
	assert.Equal(t, []string{"镜鲤", "欧鳊"}, got)
}
