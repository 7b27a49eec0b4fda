package transform

import (
	"context"

	"github.com/srosato/doctran/internal/document"
	"github.com/srosato/doctran/internal/sdm"
)

func init() {
	Register("keyvalue", func() Transform { return &KeyValue{} })
}

// KeyValue is the stock compiled-in transform: one Entry fact per mapping
// pair. It serves document types that want their raw key/value view persisted
// without a mapping file, and doubles as a reference for writing compiled-in
// transforms.
type KeyValue struct {
	Base
}

func (t *KeyValue) Facts(ctx context.Context, doc *document.Document) ([]sdm.Fact, error) {
	m := doc.Mapping
	if m == nil {
		return []sdm.Fact{}, nil
	}
	facts := make([]sdm.Fact, 0, m.Len())
	for _, p := range m.Pairs() {
		f := sdm.Fact{Model: "Entry"}
		f.Set("key", p.Key)
		f.Set("value", p.Value)
		facts = append(facts, f)
	}
	return facts, nil
}

func (t *KeyValue) SimpleJSON(ctx context.Context, doc *document.Document) ([]byte, error) {
	facts, err := t.Facts(ctx, doc)
	if err != nil {
		return nil, err
	}
	return sdm.EncodeJSON(facts)
}
