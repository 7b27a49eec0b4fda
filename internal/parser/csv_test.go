package parser

import (
	"strings"
	"testing"
)

func TestCSVParser_RowsAsRepeatedKeys(t *testing.T) {
	src := "Drug Name,Quantity\nibuprofen,30\namoxicillin,20\n"

	p := &CSVParser{}
	m, err := p.Parse(strings.NewReader(src), "meds.csv")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// Header cells become slugged keys, one occurrence per data row.
	drugs := m.All("drug-name")
	if len(drugs) != 2 {
		t.Fatalf("expected 2 drug occurrences, got %d", len(drugs))
	}
	if drugs[0] != "ibuprofen" || drugs[1] != "amoxicillin" {
		t.Errorf("expected rows in order, got %v", drugs)
	}
	if m.Count("quantity") != 2 {
		t.Errorf("expected 2 quantity occurrences, got %d", m.Count("quantity"))
	}
}

func TestCSVParser_TitleFromFilename(t *testing.T) {
	p := &CSVParser{}
	m, err := p.Parse(strings.NewReader("a,b\n1,2\n"), "report.csv")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if v, _ := m.Get("title"); v != "report" {
		t.Errorf("expected title report, got %q", v)
	}
}

func TestCSVParser_EmptyHeaderCell(t *testing.T) {
	src := "name,,dose\nx,y,z\n"

	p := &CSVParser{}
	m, err := p.Parse(strings.NewReader(src), "t.csv")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if v, ok := m.Get("column-1"); !ok || v != "y" {
		t.Errorf("expected positional key for empty header, got %q (ok=%v)", v, ok)
	}
}

func TestCSVParser_HeaderOnly(t *testing.T) {
	p := &CSVParser{}
	m, err := p.Parse(strings.NewReader("a,b,c\n"), "empty.csv")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	// Only the title pair.
	if m.Len() != 1 {
		t.Errorf("expected only title pair, got %d pairs", m.Len())
	}
}
