// Package devseed produces the initial items loaded into the in-memory store,
// either generated or read from JSON/YAML seed files.
package devseed

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/tabula/internal/core/item"
)

// Generate returns n items titled "Item 1" through "Item n" with random
// agreed flags and types. A nil rng uses the global source.
func Generate(n int, rng *rand.Rand) []item.Item {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}

	items := make([]item.Item, n)
	for i := range items {
		items[i] = item.Item{
			Title:  fmt.Sprintf("Item %d", i+1),
			Agreed: intN(2) == 1,
			Type:   item.Types[intN(len(item.Types))],
		}
	}
	return items
}

// NewRand returns a deterministic source for the given seed, or nil when seed
// is zero so Generate falls back to the global source.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// Load reads seed items from a file. Files ending in .yaml or .yml are decoded
// as YAML, everything else as JSON. The file must contain a list of items.
func Load(path string) ([]item.Item, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devseed: read %s: %w", path, err)
	}

	var items []item.Item
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &items)
	default:
		err = json.Unmarshal(data, &items)
	}
	if err != nil {
		return nil, fmt.Errorf("devseed: decode %s: %w", path, err)
	}

	for i, it := range items {
		it = it.Normalize()
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("devseed: %s entry %d: %w", path, i, err)
		}
		items[i] = it
	}
	return items, nil
}

// LoadGlob expands each pattern (doublestar syntax, e.g. "seeds/**/*.json")
// and loads the matching files in sorted order.
func LoadGlob(patterns ...string) ([]item.Item, error) {
	var items []item.Item
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("devseed: bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("devseed: pattern %q matched no files", pattern)
		}
		for _, path := range matches {
			loaded, err := Load(path)
			if err != nil {
				return nil, err
			}
			items = append(items, loaded...)
		}
	}
	return items, nil
}
