package activity

import (
	"strings"
	"testing"
)

// ============================================================
// Catalog
// ============================================================

func TestResolveKnown(t *testing.T) {
	a := Resolve("play")
	if a.ID != "play" || a.Name != "PLAY" || a.Icon != "🧸" {
		t.Fatalf("unexpected activity: %+v", a)
	}
	if !strings.Contains(a.Gradient, a.Color) {
		t.Fatalf("gradient %q should start from color %q", a.Gradient, a.Color)
	}
}

func TestResolveUnknownSynthesizes(t *testing.T) {
	a := Resolve("swimming")
	if a.ID != "swimming" || a.Name != "SWIMMING" {
		t.Fatalf("unexpected fallback: %+v", a)
	}
	if a.Icon != "❓" || a.Color != "#6b7280" {
		t.Fatalf("fallback should use neutral styling: %+v", a)
	}
}

func TestResolveEmptyID(t *testing.T) {
	a := Resolve("")
	if a.ID != "" || a.Name != "" {
		t.Fatalf("unexpected fallback for empty id: %+v", a)
	}
}

func TestLookupTagsFallback(t *testing.T) {
	if _, ok := Lookup("bath"); !ok {
		t.Fatal("bath should be a catalog hit")
	}
	if _, ok := Lookup("spaceship"); ok {
		t.Fatal("spaceship should be synthesized")
	}
}

func TestIDsCoverCatalog(t *testing.T) {
	ids := IDs()
	if len(ids) != len(catalog) {
		t.Fatalf("expected %d ids, got %d", len(catalog), len(ids))
	}
	for _, id := range ids {
		if _, ok := catalog[id]; !ok {
			t.Fatalf("id %q missing from catalog", id)
		}
	}
	ids[0] = "mutated"
	if IDs()[0] != "play" {
		t.Fatal("IDs should return a copy")
	}
}

// ============================================================
// Free text matching
// ============================================================

func TestMatchFreeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Bedtime Story", "story", true},
		{"  DINNER ", "dinner", true},
		{"tv", "tv", true},
		{"Supper with grandma", "dinner", true},
		{"Brush teeth", "teeth", true},
		{"Park trip", "outside", true},
		{"Quiet time", "quiet", true},
		{"Rest", "quiet", true},
		{"Read a book", "story", true},
		{"Bathroom", "bath", true},
		{"xyz", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := MatchFreeText(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MatchFreeText(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMatchFreeTextDeclarationOrder(t *testing.T) {
	// "rest" is listed for both quiet and nap; quiet is declared first.
	got, _ := MatchFreeText("rest and relax")
	if got != "quiet" {
		t.Fatalf("expected quiet, got %q", got)
	}
	got, _ = MatchFreeText("Nap")
	if got != "nap" {
		t.Fatalf("expected exact id nap, got %q", got)
	}
}

// ============================================================
// Routines
// ============================================================

func TestLookupRoutineNormal(t *testing.T) {
	r, ok := LookupRoutine("normal")
	if !ok {
		t.Fatal("normal routine missing")
	}
	if r.Name != "Normal Day" || len(r.Steps) != 6 {
		t.Fatalf("unexpected routine: %+v", r)
	}
	if r.Steps[0] != (Step{"play", 30}) || r.Steps[1].Activity != "dinner" {
		t.Fatalf("unexpected first steps: %+v", r.Steps[:2])
	}
}

func TestLookupRoutineReturnsCopy(t *testing.T) {
	r, _ := LookupRoutine("morning")
	r.Steps[0].Minutes = 999
	again, _ := LookupRoutine("morning")
	if again.Steps[0].Minutes == 999 {
		t.Fatal("routine steps should not be shared")
	}
}

func TestLookupRoutineUnknown(t *testing.T) {
	if _, ok := LookupRoutine("holiday"); ok {
		t.Fatal("unknown routine should not resolve")
	}
}

func TestRoutineStepsUseCatalog(t *testing.T) {
	for _, key := range RoutineKeys() {
		r, ok := LookupRoutine(key)
		if !ok {
			t.Fatalf("routine %q listed but missing", key)
		}
		for _, s := range r.Steps {
			if _, ok := Lookup(s.Activity); !ok {
				t.Fatalf("routine %q uses unknown activity %q", key, s.Activity)
			}
			if s.Minutes <= 0 {
				t.Fatalf("routine %q has non-positive step %+v", key, s)
			}
		}
	}
}
