// Package catalog holds the static destination dataset: one entry per
// city, with the clues shown to players and the fun facts revealed after
// an answer. The catalog is loaded once at startup and never mutated.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed data.json
var defaultData []byte

// Destination is a single catalog entry. The JSON field names match the
// upstream dataset format.
type Destination struct {
	City     string   `json:"city"`
	Clues    []string `json:"clues"`
	FunFacts []string `json:"fun_fact"`
}

// Catalog is an immutable, ordered list of destinations. The position of
// a destination in the list is its question ID.
type Catalog struct {
	destinations []Destination
}

// Load reads the destination dataset from path, or from the embedded
// default dataset when path is empty. Every entry must have a city name,
// at least one clue, and at least one fun fact.
func Load(path string) (*Catalog, error) {
	data := defaultData
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}
	}

	var destinations []Destination
	if err := json.Unmarshal(data, &destinations); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	for i, d := range destinations {
		if d.City == "" {
			return nil, fmt.Errorf("catalog entry %d: missing city", i)
		}
		if len(d.Clues) == 0 {
			return nil, fmt.Errorf("catalog entry %d (%s): no clues", i, d.City)
		}
		if len(d.FunFacts) == 0 {
			return nil, fmt.Errorf("catalog entry %d (%s): no fun facts", i, d.City)
		}
	}

	return &Catalog{destinations: destinations}, nil
}

// New wraps a destination slice directly. Intended for tests.
func New(destinations []Destination) *Catalog {
	return &Catalog{destinations: destinations}
}

// Len returns the number of destinations.
func (c *Catalog) Len() int {
	return len(c.destinations)
}

// At returns the destination at index i and whether i is in range.
func (c *Catalog) At(i int) (Destination, bool) {
	if i < 0 || i >= len(c.destinations) {
		return Destination{}, false
	}
	return c.destinations[i], true
}
