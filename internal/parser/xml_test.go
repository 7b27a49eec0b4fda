package parser

import (
	"strings"
	"testing"
)

func TestXMLParser_DottedKeys(t *testing.T) {
	src := `<?xml version="1.0"?>
<Prescription>
  <patient>
    <name>Jane Doe</name>
  </patient>
  <drug>ibuprofen</drug>
</Prescription>`

	p := &XMLParser{}
	m, err := p.Parse(strings.NewReader(src), "rx.xml")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// Root element is dropped from the key path.
	if v, ok := m.Get("patient.name"); !ok || v != "Jane Doe" {
		t.Errorf("expected patient.name, got %q (ok=%v)", v, ok)
	}
	if v, ok := m.Get("drug"); !ok || v != "ibuprofen" {
		t.Errorf("expected drug, got %q (ok=%v)", v, ok)
	}
}

func TestXMLParser_RepeatedSiblings(t *testing.T) {
	src := `<Prescription>
  <fill><date>2026-01-01</date></fill>
  <fill><date>2026-02-01</date></fill>
</Prescription>`

	p := &XMLParser{}
	m, err := p.Parse(strings.NewReader(src), "rx.xml")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	dates := m.All("fill.date")
	if len(dates) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(dates))
	}
	if dates[0] != "2026-01-01" || dates[1] != "2026-02-01" {
		t.Errorf("expected dates in document order, got %v", dates)
	}
}

func TestXMLParser_Attributes(t *testing.T) {
	src := `<Prescription><dose unit="mg">600</dose></Prescription>`

	p := &XMLParser{}
	m, err := p.Parse(strings.NewReader(src), "rx.xml")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if v, ok := m.Get("dose"); !ok || v != "600" {
		t.Errorf("expected dose 600, got %q (ok=%v)", v, ok)
	}
	if v, ok := m.Get("dose.@unit"); !ok || v != "mg" {
		t.Errorf("expected dose.@unit mg, got %q (ok=%v)", v, ok)
	}
}

func TestXMLParser_Malformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unclosed", "<a><b>text</a>"},
		{"truncated", "<a><b>"},
		{"garbage", "not xml at all <"},
	}
	p := &XMLParser{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := p.Parse(strings.NewReader(tc.src), "bad.xml"); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
