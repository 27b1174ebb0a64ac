package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded catalog: %v", err)
	}
	if c.Len() < 4 {
		t.Fatalf("embedded catalog has %d destinations, want at least 4", c.Len())
	}

	seen := map[string]bool{}
	for i := 0; i < c.Len(); i++ {
		d, ok := c.At(i)
		if !ok {
			t.Fatalf("At(%d) out of range", i)
		}
		if seen[d.City] {
			t.Errorf("duplicate city %q in embedded catalog", d.City)
		}
		seen[d.City] = true
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `[{"city": "Lima", "clues": ["c1"], "fun_fact": ["f1"]}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
	d, _ := c.At(0)
	if d.City != "Lima" {
		t.Errorf("city = %q, want Lima", d.City)
	}
}

func TestLoadRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing city", `[{"city": "", "clues": ["c"], "fun_fact": ["f"]}]`},
		{"no clues", `[{"city": "Lima", "clues": [], "fun_fact": ["f"]}]`},
		{"no fun facts", `[{"city": "Lima", "clues": ["c"], "fun_fact": []}]`},
		{"not json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.json")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestAtOutOfRange(t *testing.T) {
	c := New([]Destination{{City: "Lima", Clues: []string{"c"}, FunFacts: []string{"f"}}})

	if _, ok := c.At(-1); ok {
		t.Error("At(-1) should be out of range")
	}
	if _, ok := c.At(1); ok {
		t.Error("At(1) should be out of range")
	}
}
