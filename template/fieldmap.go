// Package template stamps claim record values onto a rendered form template
// page and can produce a blank template PDF when none is installed.
package template

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// Field kinds.
const (
	KindText     = "text"
	KindCheckbox = "checkbox"
)

// Field places one record value on the template page.
type Field struct {
	Name     string  `toml:"name"`
	Page     int     `toml:"page"`
	X        float64 `toml:"x"`
	Y        float64 `toml:"y"`
	Size     float64 `toml:"size"` // font points, 0 uses the map default
	Kind     string  `toml:"kind"` // defaults to text
	MaxWidth float64 `toml:"max_width"`
}

// FieldMap is the parsed TOML mapping of record fields to page coordinates.
type FieldMap struct {
	DefaultSize float64 `toml:"default_size"`
	FontName    string  `toml:"font"`
	Fields      []Field `toml:"field"`
}

// LoadFieldMap parses a TOML field map from path.
func LoadFieldMap(path string) (*FieldMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read field map %s: %w", path, err)
	}
	var fm FieldMap
	if err := toml.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("unable to parse field map %s: %w", path, err)
	}
	if fm.DefaultSize <= 0 {
		fm.DefaultSize = 10
	}
	if len(fm.Fields) == 0 {
		return nil, fmt.Errorf("field map %s defines no fields", path)
	}
	for i, f := range fm.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field map %s: field %d has no name", path, i)
		}
		switch f.Kind {
		case "", KindText, KindCheckbox:
		default:
			return nil, fmt.Errorf("field map %s: field %q has unknown kind %q", path, f.Name, f.Kind)
		}
	}
	return &fm, nil
}
