package config

import (
	"testing"
)

func TestGetEnvRange_Defaults(t *testing.T) {
	r := getEnvRange("SCANFORGE_TEST_UNSET", 2, 9)
	if r.Min != 2 || r.Max != 9 {
		t.Errorf("Expected default range [2,9], got [%v,%v]", r.Min, r.Max)
	}
}

func TestGetEnvRange_MinOnlyCollapses(t *testing.T) {
	t.Setenv("SCANFORGE_TEST_COLLAPSE_MIN", "7")

	r := getEnvRange("SCANFORGE_TEST_COLLAPSE", 1, 5)
	if r.Min != 7 || r.Max != 7 {
		t.Errorf("Expected fixed range [7,7], got [%v,%v]", r.Min, r.Max)
	}
}

func TestGetEnvRange_BothSet(t *testing.T) {
	t.Setenv("SCANFORGE_TEST_PAIR_MIN", "3")
	t.Setenv("SCANFORGE_TEST_PAIR_MAX", "11")

	r := getEnvRange("SCANFORGE_TEST_PAIR", 0, 0)
	if r.Min != 3 || r.Max != 11 {
		t.Errorf("Expected range [3,11], got [%v,%v]", r.Min, r.Max)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := ServerConfig{
		DocumentCount:    0,
		GenerateInterval: -1,
		DatabaseType:     "oracle",
		Pipeline:         loadPipelineConfig(),
	}

	errs := cfg.Validate()
	if len(errs) < 3 {
		t.Errorf("Expected at least 3 validation errors, got %d: %v", len(errs), errs)
	}
}

func TestValidate_CatchesBadProbability(t *testing.T) {
	cfg := ServerConfig{
		DocumentCount: 1,
		DatabaseType:  "sqlite",
		Pipeline:      loadPipelineConfig(),
	}
	cfg.Pipeline.WarpCfg.Probability = 1.5

	errs := cfg.Validate()
	if len(errs) == 0 {
		t.Fatal("Expected validation error for probability above 1, got none")
	}
}

func TestValidate_DefaultsAreClean(t *testing.T) {
	cfg := ServerConfig{
		DocumentCount: 10,
		DatabaseType:  "sqlite",
		Pipeline:      loadPipelineConfig(),
	}

	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Expected default configuration to validate cleanly, got: %v", errs)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" vertical, horizontal ,,both ")
	want := []string{"vertical", "horizontal", "both"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d items, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Item %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
