package parser

import (
	"strings"
	"testing"
)

func TestJSONParser_DottedKeys(t *testing.T) {
	src := `{"patient": {"name": "Jane Doe", "age": 44}, "drug": "ibuprofen"}`

	p := &JSONParser{}
	m, err := p.Parse(strings.NewReader(src), "rx.json")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if v, ok := m.Get("patient.name"); !ok || v != "Jane Doe" {
		t.Errorf("expected patient.name, got %q (ok=%v)", v, ok)
	}
	if v, ok := m.Get("patient.age"); !ok || v != "44" {
		t.Errorf("expected patient.age 44, got %q (ok=%v)", v, ok)
	}
	if v, ok := m.Get("drug"); !ok || v != "ibuprofen" {
		t.Errorf("expected drug, got %q (ok=%v)", v, ok)
	}
}

func TestJSONParser_ArraysRepeatKeys(t *testing.T) {
	src := `{"fills": [{"date": "2026-01-01"}, {"date": "2026-02-01"}]}`

	p := &JSONParser{}
	m, err := p.Parse(strings.NewReader(src), "rx.json")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	dates := m.All("fills.date")
	if len(dates) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(dates))
	}
	if dates[0] != "2026-01-01" || dates[1] != "2026-02-01" {
		t.Errorf("expected dates in array order, got %v", dates)
	}
}

func TestJSONParser_ScalarArray(t *testing.T) {
	src := `{"allergies": ["penicillin", "sulfa"]}`

	p := &JSONParser{}
	m, err := p.Parse(strings.NewReader(src), "rx.json")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if m.Count("allergies") != 2 {
		t.Errorf("expected 2 allergy occurrences, got %d", m.Count("allergies"))
	}
}

func TestJSONParser_NullSkipped(t *testing.T) {
	src := `{"present": "yes", "absent": null}`

	p := &JSONParser{}
	m, err := p.Parse(strings.NewReader(src), "rx.json")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if m.Has("absent") {
		t.Error("expected null value to be skipped")
	}
	if !m.Has("present") {
		t.Error("expected present key")
	}
}

func TestJSONParser_BareScalar(t *testing.T) {
	p := &JSONParser{}
	m, err := p.Parse(strings.NewReader(`"just a string"`), "s.json")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if v, ok := m.Get("value"); !ok || v != "just a string" {
		t.Errorf("expected bare scalar under value key, got %q (ok=%v)", v, ok)
	}
}

func TestJSONParser_Invalid(t *testing.T) {
	p := &JSONParser{}
	if _, err := p.Parse(strings.NewReader("{not json"), "bad.json"); err == nil {
		t.Error("expected error for invalid json")
	}
}
