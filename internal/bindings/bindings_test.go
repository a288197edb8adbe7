package bindings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRulesResolve(t *testing.T) {
	rules := Rules{
		DefaultValue: "---",
		Bindings: []Binding{
			{Pattern: "station.lot", Value: "LOT-7"},
			{Pattern: "station.*", Value: "STATION"},
			{Pattern: "*", Value: "ANY"},
		},
	}

	tests := []struct {
		valueID string
		want    string
	}{
		{"station.lot", "LOT-7"}, // exact match wins over wildcard
		{"station.shift", "STATION"},
		{"line.speed", "ANY"},
	}
	for _, tt := range tests {
		if got := rules.Resolve(tt.valueID); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.valueID, got, tt.want)
		}
	}

	// No catch-all: unmatched keys fall back to the default
	rules.Bindings = rules.Bindings[:2]
	if got := rules.Resolve("line.speed"); got != "---" {
		t.Errorf("unmatched key resolved to %q, want default", got)
	}
}

func TestParseRulesFromReader(t *testing.T) {
	yamlDoc := `
default_value: "?"
bindings:
  - pattern: "station.lot"
    value: "LOT-7"
  - pattern: "station.*"
    value: "STATION"
`
	rules, err := ParseRulesFromReader(strings.NewReader(yamlDoc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if rules.DefaultValue != "?" {
		t.Errorf("default = %q", rules.DefaultValue)
	}
	if len(rules.Bindings) != 2 {
		t.Fatalf("bindings = %+v", rules.Bindings)
	}
	if rules.Resolve("station.lot") != "LOT-7" {
		t.Error("exact binding did not resolve")
	}
}

func TestStoreMissingFileIsEmpty(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing rules file must not be an error, got %v", err)
	}
	if got := s.Resolve("anything"); got != "" {
		t.Errorf("empty store resolved %q", got)
	}
}

func TestStoreUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.yaml")
	s, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}

	err = s.Update(Rules{
		DefaultValue: "n/a",
		Bindings:     []Binding{{Pattern: "part.*", Value: "P-1"}},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("rules file was not written: %v", err)
	}

	// A fresh store sees the persisted rules
	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.Resolve("part.abc"); got != "P-1" {
		t.Errorf("reloaded store resolved %q, want P-1", got)
	}
	if got := reloaded.Resolve("other"); got != "n/a" {
		t.Errorf("reloaded default = %q, want n/a", got)
	}
}
