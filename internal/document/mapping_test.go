package document

import (
	"strings"
	"testing"
)

func TestMapping_AddGet(t *testing.T) {
	m := NewMapping()
	m.Add("medication.name", "ibuprofen")
	m.Add("medication.dose", "600")

	if v, ok := m.Get("medication.name"); !ok || v != "ibuprofen" {
		t.Errorf("expected %q, got %q (ok=%v)", "ibuprofen", v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("expected missing key to report !ok")
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 pairs, got %d", m.Len())
	}
}

func TestMapping_DuplicateKeys(t *testing.T) {
	m := NewMapping()
	m.Add("fill.date", "2026-01-01")
	m.Add("fill.date", "2026-02-01")
	m.Add("fill.date", "2026-03-01")

	if m.Count("fill.date") != 3 {
		t.Fatalf("expected 3 occurrences, got %d", m.Count("fill.date"))
	}
	all := m.All("fill.date")
	want := []string{"2026-01-01", "2026-02-01", "2026-03-01"}
	for i, w := range want {
		if all[i] != w {
			t.Errorf("occurrence %d: expected %q, got %q", i, w, all[i])
		}
	}
	// Get returns the first occurrence.
	if v, _ := m.Get("fill.date"); v != "2026-01-01" {
		t.Errorf("expected first occurrence, got %q", v)
	}
}

func TestMapping_KeysDistinctInOrder(t *testing.T) {
	m := NewMapping()
	m.Add("b", "1")
	m.Add("a", "2")
	m.Add("b", "3")

	keys := m.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", len(keys))
	}
	if keys[0] != "b" || keys[1] != "a" {
		t.Errorf("expected first-insertion order [b a], got %v", keys)
	}
}

func TestMapping_Text(t *testing.T) {
	m := NewMapping()
	m.Add("a", "1")
	m.Add("b", "2")

	text := m.Text()
	if !strings.Contains(text, "a=1") || !strings.Contains(text, "b=2") {
		t.Errorf("unexpected text: %q", text)
	}

	// Same pairs produce same text (hash stability).
	m2 := NewMapping()
	m2.Add("a", "1")
	m2.Add("b", "2")
	if m2.Text() != text {
		t.Error("expected identical text for identical mappings")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Current Medications", "current-medications"},
		{"  spaced  ", "spaced"},
		{"Dose (mg)", "dose-mg"},
		{"---", ""},
		{strings.Repeat("a", 60), strings.Repeat("a", 50)},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestFlatten_Breadcrumbs(t *testing.T) {
	sections := []*Section{
		{
			Title: "History",
			Text:  "Patient history overview.",
			Children: []*Section{
				{Title: "Allergies", Text: "Penicillin."},
			},
		},
		{Text: "Untitled trailing note."},
	}

	m := NewMapping()
	Flatten(sections, m)

	if v, ok := m.Get("history"); !ok || v != "Patient history overview." {
		t.Errorf("expected history text, got %q (ok=%v)", v, ok)
	}
	if v, ok := m.Get("history/allergies"); !ok || v != "Penicillin." {
		t.Errorf("expected nested breadcrumb key, got %q (ok=%v)", v, ok)
	}
	if _, ok := m.Get("section-1"); !ok {
		t.Error("expected positional key for untitled section")
	}
}

func TestFlatten_SkipsEmptyText(t *testing.T) {
	sections := []*Section{
		{Title: "Empty", Text: "   "},
	}
	m := NewMapping()
	Flatten(sections, m)
	if m.Len() != 0 {
		t.Errorf("expected no pairs for whitespace-only section, got %d", m.Len())
	}
}
