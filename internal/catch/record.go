// Package catch binds merged text lines to detection regions and assembles
// one catch record per region.
package catch

import (
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/rf4catch/internal/field"
)

// Record is the catch assembled for one detection region. It serializes as
// the four-string array [time_percentage, fish_name, weight, price].
type Record struct {
	TimePercentage string
	FishName       string
	Weight         string
	Price          string

	// RegionIndex is the detection region the record was assembled from.
	// It is not part of the serialized form.
	RegionIndex int
}

// Set stores value under name, replacing any earlier value.
func (r *Record) Set(name field.Name, value string) {
	switch name {
	case field.TimePercentage:
		r.TimePercentage = value
	case field.FishName:
		r.FishName = value
	case field.Weight:
		r.Weight = value
	case field.Price:
		r.Price = value
	}
}

// Get returns the value stored under name.
func (r Record) Get(name field.Name) string {
	switch name {
	case field.TimePercentage:
		return r.TimePercentage
	case field.FishName:
		return r.FishName
	case field.Weight:
		return r.Weight
	case field.Price:
		return r.Price
	}
	return ""
}

// Tuple returns the record in field order.
func (r Record) Tuple() [4]string {
	return [4]string{r.TimePercentage, r.FishName, r.Weight, r.Price}
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Tuple())
}

// UnmarshalJSON implements json.Unmarshaler. Short arrays leave the missing
// trailing fields empty.
func (r *Record) UnmarshalJSON(data []byte) error {
	var vals []string
	if err := json.Unmarshal(data, &vals); err != nil {
		return fmt.Errorf("catch record must be an array of strings: %w", err)
	}
	if len(vals) > len(field.Names) {
		return fmt.Errorf("catch record has %d fields, want at most %d", len(vals), len(field.Names))
	}
	*r = Record{}
	for i, v := range vals {
		r.Set(field.Names[i], v)
	}
	return nil
}

// MarshalYAML renders the record as a four-item sequence.
func (r Record) MarshalYAML() (interface{}, error) {
	t := r.Tuple()
	return t[:], nil
}
