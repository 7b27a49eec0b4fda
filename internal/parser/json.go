package parser

import (
	"fmt"
	"io"

	"github.com/srosato/doctran/internal/document"
	"github.com/tidwall/gjson"
)

// JSONParser handles JSON source documents. Object members become dotted keys;
// array members repeat their parent key, matching how the XML parser encodes
// repeated elements.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (*document.Mapping, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse json: invalid document")
	}

	m := document.NewMapping()
	flattenJSON("", gjson.ParseBytes(data), m)
	return m, nil
}

func flattenJSON(prefix string, v gjson.Result, m *document.Mapping) {
	switch {
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if prefix != "" {
				k = prefix + "." + k
			}
			flattenJSON(k, value, m)
			return true
		})
	case v.IsArray():
		v.ForEach(func(_, value gjson.Result) bool {
			flattenJSON(prefix, value, m)
			return true
		})
	case v.Type == gjson.Null:
		// Nulls carry no value.
	default:
		if prefix == "" {
			prefix = "value"
		}
		m.Add(prefix, v.String())
	}
}
