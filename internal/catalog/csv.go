package catalog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"zooguide/pkg/models"
)

// FunFactSep separates fun facts inside the single fun_facts CSV column.
const FunFactSep = "|"

// ReadCSV parses a curator spreadsheet export. Columns are matched by header
// name in any order; rows without a tag or name are skipped. Tags are
// lowercased to match the classifier's tag names.
func ReadCSV(src io.Reader) (map[string]models.AnimalRecord, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if _, ok := header["tag"]; !ok {
		return nil, errors.New("read csv header: missing tag column")
	}

	out := map[string]models.AnimalRecord{}
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		tag := strings.ToLower(valueAt(header, row, "tag"))
		name := valueAt(header, row, "name")
		if tag == "" || name == "" {
			continue
		}
		if _, dup := out[tag]; dup {
			return nil, fmt.Errorf("read csv line %d: duplicate tag %q", line, tag)
		}

		out[tag] = models.AnimalRecord{
			Name:       name,
			Habitat:    valueAt(header, row, "habitat"),
			Diet:       valueAt(header, row, "diet"),
			Endangered: valueAt(header, row, "endangered"),
			Summary:    valueAt(header, row, "summary"),
			FunFacts:   splitFacts(valueAt(header, row, "fun_facts")),
			Image:      valueAt(header, row, "image"),
		}
	}
	return out, nil
}

// Save writes records in the format Load expects for path's extension.
func Save(path string, records map[string]models.AnimalRecord) error {
	var (
		b   []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err = yaml.Marshal(records)
	default:
		b, err = json.MarshalIndent(records, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func splitFacts(raw string) []string {
	if raw == "" {
		return nil
	}
	var facts []string
	for _, f := range strings.Split(raw, FunFactSep) {
		if f = strings.TrimSpace(f); f != "" {
			facts = append(facts, f)
		}
	}
	return facts
}
