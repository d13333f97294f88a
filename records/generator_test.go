package records

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestMain(m *testing.M) {
	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	os.Exit(m.Run())
}

func TestGenerate_IdentifierFormats(t *testing.T) {
	g, err := NewGenerator(1)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	rec, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	checks := []struct {
		name    string
		value   string
		pattern string
	}{
		{"member ID", rec.InsuredID, `^[A-Z]{3}[0-9]{9}$`},
		{"group number", rec.GroupNumber, `^[0-9]{5}-[0-9]{3}$`},
		{"NPI", rec.ProviderNPI, `^1[0-9]{9}$`},
		{"tax ID", rec.ProviderTaxID, `^[0-9]{2}-[0-9]{7}$`},
		{"phone", rec.PatientPhone, `^\([2-9][0-9]{2}\) [2-9][0-9]{2}-[0-9]{4}$`},
	}
	for _, check := range checks {
		matched, err := regexp.MatchString(check.pattern, check.value)
		if err != nil {
			t.Fatalf("Bad test pattern for %s: %v", check.name, err)
		}
		if !matched {
			t.Errorf("%s %q does not match %s", check.name, check.value, check.pattern)
		}
	}
}

func TestGenerate_SelfRelationshipMirrorsPatient(t *testing.T) {
	g, err := NewGenerator(2)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	// Draw until we see a self relationship; it has a 50% weight so 100
	// draws without one would mean the weighting is broken.
	for i := 0; i < 100; i++ {
		rec, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if rec.Relationship != "self" {
			continue
		}
		if rec.InsuredFirstName != rec.PatientFirstName || rec.InsuredLastName != rec.PatientLastName {
			t.Errorf("Self relationship must mirror patient identity: got %s %s vs %s %s",
				rec.InsuredFirstName, rec.InsuredLastName, rec.PatientFirstName, rec.PatientLastName)
		}
		return
	}
	t.Error("No self relationship in 100 draws")
}

func TestGenerate_TotalsDeriveFromServiceLines(t *testing.T) {
	g, err := NewGenerator(3)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	for i := 0; i < 20; i++ {
		rec, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if len(rec.ServiceLines) < 1 || len(rec.ServiceLines) > 4 {
			t.Fatalf("Expected 1-4 service lines, got %d", len(rec.ServiceLines))
		}

		var sum float64
		for _, line := range rec.ServiceLines {
			if line.Charge <= 0 {
				t.Errorf("Service line charge must be positive, got %v", line.Charge)
			}
			sum += line.Charge
		}
		if diff := rec.TotalCharge - sum; diff > 0.011 || diff < -0.011 {
			t.Errorf("Total charge %v does not match line sum %v", rec.TotalCharge, sum)
		}
		if diff := rec.BalanceDue - (rec.TotalCharge - rec.AmountPaid); diff > 0.011 || diff < -0.011 {
			t.Errorf("Balance due %v does not match total %v minus paid %v", rec.BalanceDue, rec.TotalCharge, rec.AmountPaid)
		}
	}
}

func TestGenerate_FixedSeedIsDeterministic(t *testing.T) {
	first, err := NewGenerator(99)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	second, err := NewGenerator(99)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		a, err := first.Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		b, err := second.Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		// ULIDs embed the wall clock so they differ; every sampled field
		// must match.
		if a.PatientFirstName != b.PatientFirstName || a.PatientLastName != b.PatientLastName {
			t.Errorf("Record %d: patient identity differs under same seed", i)
		}
		if a.InsuredID != b.InsuredID || a.ProviderNPI != b.ProviderNPI {
			t.Errorf("Record %d: synthesized identifiers differ under same seed", i)
		}
		if a.TotalCharge != b.TotalCharge {
			t.Errorf("Record %d: totals differ under same seed: %v vs %v", i, a.TotalCharge, b.TotalCharge)
		}
	}
}

func TestGenerate_CityStateZipCoherent(t *testing.T) {
	g, err := NewGenerator(4)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	rec, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	found := false
	for _, loc := range cities {
		if loc.City == rec.PatientCity {
			found = true
			if loc.State != rec.PatientState {
				t.Errorf("City %s paired with state %s, expected %s", rec.PatientCity, rec.PatientState, loc.State)
			}
			if rec.PatientZip[:len(loc.ZipPrefix)] != loc.ZipPrefix {
				t.Errorf("Zip %s does not start with %s for %s", rec.PatientZip, loc.ZipPrefix, rec.PatientCity)
			}
		}
	}
	if !found {
		t.Errorf("City %s not in the feeder list", rec.PatientCity)
	}
}

func TestExportCSV_RowPerRecord(t *testing.T) {
	g, err := NewGenerator(5)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	batch, err := g.GenerateBatch(7)
	if err != nil {
		t.Fatalf("GenerateBatch failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "claims.csv")
	if err := ExportCSV(batch, path); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(rows) != 8 {
		t.Fatalf("Expected header plus 7 rows, got %d", len(rows))
	}
	if len(rows[0]) != len(csvHeader) {
		t.Errorf("Header has %d columns, expected %d", len(rows[0]), len(csvHeader))
	}
	for i, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			t.Errorf("Row %d has %d columns, expected %d", i, len(row), len(csvHeader))
		}
		if row[0] != batch[i].ULID.String() {
			t.Errorf("Row %d ULID mismatch", i)
		}
	}
}

func TestDocBase(t *testing.T) {
	g, err := NewGenerator(6)
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	rec, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := "claim_" + rec.ULID.String()
	if rec.DocBase() != want {
		t.Errorf("DocBase %q, expected %q", rec.DocBase(), want)
	}
}
