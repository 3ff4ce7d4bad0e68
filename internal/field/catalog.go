package field

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fish is one entry of a fish catalog file.
type Fish struct {
	Name            string `yaml:"name" json:"name"`
	Description     string `yaml:"description,omitempty" json:"description,omitempty"`
	Image           string `yaml:"img,omitempty" json:"img,omitempty"`
	Class           string `yaml:"fish_class,omitempty" json:"fish_class,omitempty"`
	RareWeight      string `yaml:"rare_weight,omitempty" json:"rare_weight,omitempty"`
	SuperRareWeight string `yaml:"super_rare_weight,omitempty" json:"super_rare_weight,omitempty"`
}

// Catalog is a list of known fish.
type Catalog []Fish

// ParseCatalog decodes a catalog from JSON or YAML. Entries with an empty
// name are dropped.
func ParseCatalog(data []byte) (Catalog, error) {
	var raw Catalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse fish catalog: %w", err)
	}
	out := raw[:0]
	for _, f := range raw {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: catalog path is user-provided
	if err != nil {
		return nil, fmt.Errorf("failed to read fish catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// Names returns the catalog's fish names without duplicates, in file order.
func (c Catalog) Names() []string {
	seen := make(map[string]struct{}, len(c))
	names := make([]string, 0, len(c))
	for _, f := range c {
		if _, ok := seen[f.Name]; ok {
			continue
		}
		seen[f.Name] = struct{}{}
		names = append(names, f.Name)
	}
	return names
}

// MergeNames joins name lists, dropping duplicates and blanks and keeping
// first-seen order.
func MergeNames(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, n := range list {
			n = strings.TrimSpace(n)
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}
