package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"zooguide/pkg/models"
)

var ErrNotFound = errors.New("animal not found")

// Catalog is the read-only tag -> animal table. It is built once at startup
// and shared by every request without locking.
type Catalog struct {
	records map[string]models.AnimalRecord
	keys    []string // sorted, so a seeded rng always sees the same order
}

func New(records map[string]models.AnimalRecord) *Catalog {
	c := &Catalog{records: make(map[string]models.AnimalRecord, len(records))}
	for tag, rec := range records {
		c.records[tag] = rec
		c.keys = append(c.keys, tag)
	}
	sort.Strings(c.keys)
	return c
}

// Load reads a JSON or YAML catalog file. The format follows the extension;
// anything that is not .yaml/.yml is parsed as JSON.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	records := map[string]models.AnimalRecord{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &records)
	default:
		err = json.Unmarshal(b, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	for tag, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			return nil, fmt.Errorf("parse catalog %s: entry %q has no name", path, tag)
		}
	}
	return New(records), nil
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the catalog tags in sorted order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func (c *Catalog) Get(tag string) (models.AnimalRecord, bool) {
	rec, ok := c.records[tag]
	return rec, ok
}
