package sdm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFact_SetGet(t *testing.T) {
	f := Fact{Model: "Medication"}
	f.Set("name", "ibuprofen")
	f.Set("dose", "600")

	if v, ok := f.Get("name"); !ok || v != "ibuprofen" {
		t.Errorf("expected %q, got %q (ok=%v)", "ibuprofen", v, ok)
	}
	if _, ok := f.Get("missing"); ok {
		t.Error("expected missing field to report !ok")
	}
}

func TestFact_MarshalJSON_FieldOrder(t *testing.T) {
	f := Fact{Model: "Patient"}
	f.Set("zeta", "1")
	f.Set("alpha", "2")

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(data)

	// Insertion order must be preserved, not sorted.
	zi := strings.Index(s, `"zeta"`)
	ai := strings.Index(s, `"alpha"`)
	if zi < 0 || ai < 0 || zi > ai {
		t.Errorf("expected zeta before alpha, got %s", s)
	}

	// Round-trips as valid JSON.
	var check map[string]any
	if err := json.Unmarshal(data, &check); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if check["model"] != "Patient" {
		t.Errorf("expected model Patient, got %v", check["model"])
	}
}

func TestEncodeJSON_Discriminator(t *testing.T) {
	f := Fact{Model: "Medication"}
	f.Set("name", "ibuprofen")

	data, err := EncodeJSON([]Fact{f})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 object, got %d", len(out))
	}
	if out[0]["__modelname__"] != "Medication" {
		t.Errorf("expected discriminator Medication, got %v", out[0]["__modelname__"])
	}
	if out[0]["name"] != "ibuprofen" {
		t.Errorf("expected field name=ibuprofen, got %v", out[0]["name"])
	}
}

func TestEncodeJSON_Related(t *testing.T) {
	fill := Fact{Model: "Fill"}
	fill.Set("date", "2026-01-01")

	med := Fact{Model: "Medication"}
	med.Set("name", "ibuprofen")
	med.Relate("fills", fill)

	data, err := EncodeJSON([]Fact{med})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	fills, ok := out[0]["fills"].([]any)
	if !ok {
		t.Fatalf("expected fills to be an array, got %T", out[0]["fills"])
	}
	nested := fills[0].(map[string]any)
	if nested["__modelname__"] != "Fill" {
		t.Errorf("expected nested discriminator Fill, got %v", nested["__modelname__"])
	}
	if nested["date"] != "2026-01-01" {
		t.Errorf("expected nested date, got %v", nested["date"])
	}
}

func TestEncodeJSON_Empty(t *testing.T) {
	data, err := EncodeJSON(nil)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected empty array, got %s", data)
	}
}

func TestEncodeXML_Structure(t *testing.T) {
	f := Fact{Model: "Medication"}
	f.Set("name", "ibuprofen")
	f.Set("dose", "600")

	data, err := EncodeXML([]Fact{f})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	s := string(data)

	for _, want := range []string{
		"<Models>",
		`<Model name="Medication">`,
		`<Field name="name">ibuprofen</Field>`,
		`<Field name="dose">600</Field>`,
		"</Model>",
		"</Models>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, s)
		}
	}
}

func TestEncodeXML_Escaping(t *testing.T) {
	f := Fact{Model: "Note"}
	f.Set("text", "a < b & c")

	data, err := EncodeXML([]Fact{f})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "a < b & c") {
		t.Errorf("expected escaped value, got:\n%s", s)
	}
	if !strings.Contains(s, "a &lt; b &amp; c") {
		t.Errorf("expected entity-escaped value, got:\n%s", s)
	}
}

func TestEncodeXML_Related(t *testing.T) {
	fill := Fact{Model: "Fill"}
	fill.Set("date", "2026-01-01")

	med := Fact{Model: "Medication"}
	med.Set("name", "ibuprofen")
	med.Relate("fills", fill)

	data, err := EncodeXML([]Fact{med})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	s := string(data)

	// Relation renders as a Field wrapping an inner Models block.
	relIdx := strings.Index(s, `<Field name="fills">`)
	if relIdx < 0 {
		t.Fatalf("expected relation field, got:\n%s", s)
	}
	rest := s[relIdx:]
	if !strings.Contains(rest, "<Models>") || !strings.Contains(rest, `<Model name="Fill">`) {
		t.Errorf("expected nested Models block inside relation, got:\n%s", s)
	}
}

func TestRelate_DeterministicOrder(t *testing.T) {
	f := Fact{Model: "Root"}
	f.Relate("zeta", Fact{Model: "Z"})
	f.Relate("alpha", Fact{Model: "A"})

	data, err := EncodeJSON([]Fact{f})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	s := string(data)
	ai := strings.Index(s, `"alpha"`)
	zi := strings.Index(s, `"zeta"`)
	if ai < 0 || zi < 0 || ai > zi {
		t.Errorf("expected relations sorted by name, got %s", s)
	}
}
