package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/srosato/doctran/internal/document"
	"github.com/srosato/doctran/internal/sdm"
)

// Mapping interprets a declarative field-mapping definition. It supports all
// three conversion methods; the notations are rendered from the fact list.
type Mapping struct {
	def Definition
}

func NewMapping(def Definition) *Mapping {
	return &Mapping{def: def}
}

func (t *Mapping) Facts(ctx context.Context, doc *document.Document) ([]sdm.Fact, error) {
	m := doc.Mapping
	if m == nil {
		return nil, fmt.Errorf("document %s has no parsed mapping", doc.ID)
	}

	root := sdm.Fact{Model: t.def.Model}
	for _, rule := range t.def.Fields {
		value, ok := resolveField(rule, m, 0)
		if !ok {
			continue
		}
		root.Set(rule.Name, value)
	}

	facts := []sdm.Fact{root}

	for _, group := range t.def.Groups {
		instances := groupFacts(group, m)
		if group.Relation == "" {
			facts = append(facts, instances...)
			continue
		}
		for _, inst := range instances {
			facts[0].Relate(group.Relation, inst)
		}
	}

	return facts, nil
}

func (t *Mapping) SimpleJSON(ctx context.Context, doc *document.Document) ([]byte, error) {
	facts, err := t.Facts(ctx, doc)
	if err != nil {
		return nil, err
	}
	return sdm.EncodeJSON(facts)
}

func (t *Mapping) SimpleXML(ctx context.Context, doc *document.Document) ([]byte, error) {
	facts, err := t.Facts(ctx, doc)
	if err != nil {
		return nil, err
	}
	return sdm.EncodeXML(facts)
}

// groupFacts builds one fact per repeated-group occurrence. The instance
// count is the highest occurrence count among the group's source keys; the
// i-th instance takes the i-th occurrence of each key.
func groupFacts(group GroupRule, m *document.Mapping) []sdm.Fact {
	count := 0
	for _, rule := range group.Fields {
		if rule.From == "" {
			continue
		}
		if n := m.Count(rule.From); n > count {
			count = n
		}
	}

	facts := make([]sdm.Fact, 0, count)
	for i := 0; i < count; i++ {
		fact := sdm.Fact{Model: group.Model}
		for _, rule := range group.Fields {
			value, ok := resolveField(rule, m, i)
			if !ok {
				continue
			}
			fact.Set(rule.Name, value)
		}
		if len(fact.Fields) > 0 {
			facts = append(facts, fact)
		}
	}
	return facts
}

// resolveField produces the value for a field rule, using the idx-th
// occurrence of the source key. Missing sources are skipped.
func resolveField(rule FieldRule, m *document.Mapping, idx int) (string, bool) {
	if rule.Const != "" {
		return rule.Const, true
	}
	values := m.All(rule.From)
	if idx >= len(values) {
		return "", false
	}
	value := values[idx]
	if rule.Format == "date" {
		value = normalizeDate(value)
	}
	return value, true
}

// dateLayouts are accepted source date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// normalizeDate reformats a recognized date to ISO 8601 (2006-01-02).
// Unrecognized values pass through unchanged.
func normalizeDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
