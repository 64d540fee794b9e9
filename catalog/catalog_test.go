package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tantrixfinder/palette"
)

func TestTantrixCatalog(t *testing.T) {
	c := Tantrix()
	if c.Len() != 56 {
		t.Fatalf("Catalog should have 56 tiles, has %d", c.Len())
	}
	if c.SequenceLength() != 6 {
		t.Errorf("Sequence length should be 6, is %d", c.SequenceLength())
	}

	families := make(map[Family]int)
	shapes := make(map[Shape]int)
	for _, e := range c.Entries() {
		families[e.Family]++
		shapes[e.Shape]++
	}
	if len(families) != 4 {
		t.Errorf("Catalog should have 4 families, has %d", len(families))
	}
	for f, n := range families {
		if n != 14 {
			t.Errorf("Family %s should have 14 tiles, has %d", f, n)
		}
	}

	wantShapes := map[Shape]int{ShapeCCC: 8, ShapeCLC: 12, ShapeCLH: 12, ShapeCXX: 24}
	for s, n := range wantShapes {
		if shapes[s] != n {
			t.Errorf("Shape %s should have %d tiles, has %d", s, n, shapes[s])
		}
	}
}

func TestTantrixDistinctUnderRotation(t *testing.T) {
	entries := Tantrix().Entries()
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			for r := 0; r < 6; r++ {
				if entries[i].Sequence.Rotate(r).Equal(entries[j].Sequence) {
					t.Errorf("Tile %d rotated by %d equals tile %d",
						entries[i].Index, r, entries[j].Index)
				}
			}
		}
	}
}

func TestEntryLookup(t *testing.T) {
	e, ok := Tantrix().Entry(8)
	if !ok {
		t.Fatalf("Tile 8 should exist")
	}
	if e.Sequence.String() != "112233" || e.Shape != ShapeCCC || e.Family != FamilyBYR {
		t.Errorf("Unexpected tile 8: %s %s %s", e.Sequence, e.Shape, e.Family)
	}

	// Mutating the copy must not reach the catalog.
	e.Sequence[0] = palette.Green
	again, _ := Tantrix().Entry(8)
	if again.Sequence.String() != "112233" {
		t.Errorf("Catalog was mutated through a returned entry: %s", again.Sequence)
	}

	if _, ok := Tantrix().Entry(57); ok {
		t.Errorf("Tile 57 should not exist")
	}
}

func TestNewRejectsRotations(t *testing.T) {
	_, err := New([]Entry{
		{Index: 1, Sequence: palette.MustParseSequence("112233")},
		{Index: 2, Sequence: palette.MustParseSequence("223311")},
	})
	if !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("Expected ErrInvalidCatalog for rotated duplicate, got %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty", nil},
		{"zero index", []Entry{{Index: 0, Sequence: palette.MustParseSequence("112233")}}},
		{"duplicate index", []Entry{
			{Index: 1, Sequence: palette.MustParseSequence("112233")},
			{Index: 1, Sequence: palette.MustParseSequence("113322")},
		}},
		{"length", []Entry{
			{Index: 1, Sequence: palette.MustParseSequence("112233")},
			{Index: 2, Sequence: palette.MustParseSequence("1122")},
		}},
		{"three of a colour", []Entry{{Index: 1, Sequence: palette.MustParseSequence("111233")}}},
		{"wrong family", []Entry{{Index: 1, Sequence: palette.MustParseSequence("112233"), Family: FamilyYRG}}},
		{"wrong shape", []Entry{{Index: 1, Sequence: palette.MustParseSequence("112233"), Shape: ShapeCXX}}},
	}
	for _, tt := range tests {
		if _, err := New(tt.entries); !errors.Is(err, ErrInvalidCatalog) {
			t.Errorf("%s: expected ErrInvalidCatalog, got %v", tt.name, err)
		}
	}
}

func TestShapeOf(t *testing.T) {
	tests := map[string]Shape{
		"112233": ShapeCCC,
		"112332": ShapeCLC,
		"212313": ShapeCLH,
		"112323": ShapeCXX,
	}
	for s, want := range tests {
		got, err := ShapeOf(palette.MustParseSequence(s))
		if err != nil {
			t.Errorf("ShapeOf(%s): unexpected error %v", s, err)
			continue
		}
		if got != want {
			t.Errorf("ShapeOf(%s) should be %s, is %s", s, want, got)
		}
	}

	if _, err := ParseShape("xyz"); err == nil {
		t.Errorf("Expected error for unknown shape")
	}
	if s, err := ParseShape(" CLH "); err != nil || s != ShapeCLH {
		t.Errorf("ParseShape(CLH) should be clh, is %q (%v)", s, err)
	}
}

func TestDominantFamily(t *testing.T) {
	f, ok := DominantFamily(palette.MustParseSequence("112232"))
	if !ok || f != FamilyBYR {
		t.Errorf("Dominant family should be %s, is %s (unique=%v)", FamilyBYR, f, ok)
	}
	if _, ok := DominantFamily(palette.MustParseSequence("123412")); ok {
		t.Errorf("Expected no unique dominant family for a four colour sequence")
	}
}

func TestCanonical(t *testing.T) {
	if got := Canonical(palette.MustParseSequence("331122")).String(); got != "112233" {
		t.Errorf("Canonical should be 112233, is %s", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `[{"index": 7, "sequence": "Red,Red,Blue,Blue,Yellow,Yellow"}, {"index": 9, "sequence": "121323"}]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Loaded catalog should have 2 tiles, has %d", c.Len())
	}
	e, ok := c.Entry(7)
	if !ok || e.Sequence.String() != "331122" {
		t.Errorf("Tile 7 should be 331122, is %v", e.Sequence)
	}

	if err := os.WriteFile(path, []byte(`{"bad"`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("Expected ErrInvalidCatalog for malformed JSON, got %v", err)
	}
}
