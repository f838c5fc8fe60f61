package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LegacyEntry is one row of a legacy JSON export. Older exports omit the
// branch.
type LegacyEntry struct {
	Date      string  `json:"date"`
	Project   string  `json:"project"`
	TimeSpent float64 `json:"timeSpent"`
	Branch    *string `json:"branch,omitempty"`
}

// LoadFile reads and parses a legacy export file.
func LoadFile(path string) ([]LegacyEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a legacy export. The document must be a JSON array.
func Parse(r io.Reader) ([]LegacyEntry, error) {
	var rows []LegacyEntry
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return rows, nil
}
