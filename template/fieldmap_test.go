package template

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/scanforge/scanforge/records"
)

func TestMain(m *testing.M) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	Logger = logger
	records.Logger = logger
	os.Exit(m.Run())
}

func writeFieldMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "field_map.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write field map: %v", err)
	}
	return path
}

func TestLoadFieldMap_Valid(t *testing.T) {
	path := writeFieldMap(t, `
default_size = 9.0
font = "DejaVuSans.ttf"

[[field]]
name = "patient_name"
page = 0
x = 30.0
y = 120.0
max_width = 180.0

[[field]]
name = "patient_sex_m"
page = 0
x = 310.0
y = 120.0
kind = "checkbox"

[[field]]
name = "total_charge"
page = 0
x = 400.0
y = 700.0
size = 11.0
`)

	fm, err := LoadFieldMap(path)
	if err != nil {
		t.Fatalf("LoadFieldMap failed: %v", err)
	}
	if len(fm.Fields) != 3 {
		t.Fatalf("Expected 3 fields, got %d", len(fm.Fields))
	}
	if fm.DefaultSize != 9.0 {
		t.Errorf("Expected default size 9.0, got %v", fm.DefaultSize)
	}
	if fm.Fields[1].Kind != KindCheckbox {
		t.Errorf("Expected checkbox kind, got %q", fm.Fields[1].Kind)
	}
	if fm.Fields[2].Size != 11.0 {
		t.Errorf("Expected per-field size 11.0, got %v", fm.Fields[2].Size)
	}
}

func TestLoadFieldMap_EmptyFails(t *testing.T) {
	path := writeFieldMap(t, `default_size = 9.0`)
	if _, err := LoadFieldMap(path); err == nil {
		t.Error("Expected error for field map without fields")
	}
}

func TestLoadFieldMap_UnknownKindFails(t *testing.T) {
	path := writeFieldMap(t, `
[[field]]
name = "patient_name"
kind = "barcode"
`)
	if _, err := LoadFieldMap(path); err == nil {
		t.Error("Expected error for unknown field kind")
	}
}

func TestLoadFieldMap_MissingNameFails(t *testing.T) {
	path := writeFieldMap(t, `
[[field]]
page = 0
x = 1.0
y = 1.0
`)
	if _, err := LoadFieldMap(path); err == nil {
		t.Error("Expected error for unnamed field")
	}
}

func TestFieldValues_FlattensRecord(t *testing.T) {
	g, err := records.NewGenerator(1)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	rec, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	values := FieldValues(rec)

	if values["insured_id"] != rec.InsuredID {
		t.Errorf("insured_id %q, expected %q", values["insured_id"], rec.InsuredID)
	}
	if values["patient_sex_m"] != "true" && values["patient_sex_f"] != "true" {
		t.Error("Exactly one sex checkbox should read true")
	}
	if values["patient_sex_m"] == "true" && values["patient_sex_f"] == "true" {
		t.Error("Both sex checkboxes read true")
	}

	// Every service line must surface its per-row fields.
	for i, line := range rec.ServiceLines {
		key := fmt.Sprintf("svc%d_cpt", i+1)
		if values[key] != line.CPTCode {
			t.Errorf("%s %q, expected %q", key, values[key], line.CPTCode)
		}
	}
}

func TestIsChecked(t *testing.T) {
	for _, yes := range []string{"true", "X", "x", "yes", "1"} {
		if !isChecked(yes) {
			t.Errorf("Expected %q to read checked", yes)
		}
	}
	for _, no := range []string{"false", "", "0", "no"} {
		if isChecked(no) {
			t.Errorf("Expected %q to read unchecked", no)
		}
	}
}
