// Package field classifies merged text lines into catch record fields.
package field

import (
	"regexp"
	"strconv"
	"strings"
)

// Name identifies one of the four catch record fields.
type Name string

// Field names, in record order.
const (
	TimePercentage Name = "time_percentage"
	FishName       Name = "fish_name"
	Weight         Name = "weight"
	Price          Name = "price"
)

// Names lists the fields in the order they appear in a record.
var Names = [...]Name{TimePercentage, FishName, Weight, Price}

const (
	minutesMarker   = "分"
	gramsMarker     = "克"
	kilogramsMarker = "公斤"
)

// DefaultFishNames is the built-in fish name whitelist.
var DefaultFishNames = []string{"镜鲤", "鲤鲫鱼"}

var pricePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Rule is one step of the classification chain. Match decides whether the
// rule applies; Value derives the field value from the text.
type Rule struct {
	Field Name
	Match func(text string) bool
	Value func(text string) string
}

// Classifier applies its rules in order; the first matching rule wins and
// text no rule matches is treated as a fish name.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds the standard rule chain with the given fish name
// whitelist. A nil or empty whitelist falls back to DefaultFishNames.
func NewClassifier(fishNames []string) *Classifier {
	if len(fishNames) == 0 {
		fishNames = DefaultFishNames
	}
	known := make(map[string]struct{}, len(fishNames))
	for _, n := range fishNames {
		known[n] = struct{}{}
	}

	return &Classifier{rules: []Rule{
		{
			Field: TimePercentage,
			Match: func(s string) bool { return strings.Contains(s, minutesMarker) },
			Value: throughMinutes,
		},
		{
			Field: Weight,
			Match: func(s string) bool {
				return strings.Contains(s, gramsMarker) || strings.Contains(s, kilogramsMarker)
			},
			Value: kilograms,
		},
		{
			Field: FishName,
			Match: func(s string) bool { _, ok := known[s]; return ok },
			Value: identity,
		},
		{
			Field: Price,
			Match: pricePattern.MatchString,
			Value: identity,
		},
	}}
}

// Rules returns a copy of the rule chain in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify returns the field and value for text.
func (c *Classifier) Classify(text string) (Name, string) {
	for _, r := range c.rules {
		if r.Match(text) {
			return r.Field, r.Value(text)
		}
	}
	return FishName, text
}

func identity(s string) string { return s }

// throughMinutes keeps everything up to and including the minutes marker,
// so "42分-97%" becomes "42分".
func throughMinutes(s string) string {
	i := strings.Index(s, minutesMarker)
	return s[:i+len(minutesMarker)]
}

// kilograms normalizes a weight to kilograms. A kilogram reading is kept as
// written without its unit; a gram reading is divided by 1000. Unparseable
// gram readings are returned without their unit.
func kilograms(s string) string {
	if strings.Contains(s, kilogramsMarker) {
		return strings.ReplaceAll(s, kilogramsMarker, "")
	}
	raw := strings.TrimSpace(strings.ReplaceAll(s, gramsMarker, ""))
	grams, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return formatDecimal(grams / 1000)
}

// formatDecimal renders v with the shortest exact representation and at
// least one fractional digit ("1.0", "3.705").
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
