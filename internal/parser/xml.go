package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/srosato/doctran/internal/document"
)

// XMLParser handles XML source documents. Element paths become dotted keys
// ("medication.name"); attributes get an "@" segment ("medication.@unit").
// Repeated sibling elements produce repeated keys in the mapping.
type XMLParser struct{}

func (p *XMLParser) Parse(r io.Reader, filename string) (*document.Mapping, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	m := document.NewMapping()
	var path []string
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			path = append(path, t.Name.Local)
			text.Reset()
			key := joinPath(path)
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
					continue
				}
				m.Add(key+".@"+attr.Name.Local, attr.Value)
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if v := strings.TrimSpace(text.String()); v != "" {
				m.Add(joinPath(path), v)
			}
			text.Reset()
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		}
	}

	if len(path) != 0 {
		return nil, fmt.Errorf("parse xml: unbalanced document")
	}
	return m, nil
}

// joinPath drops the root element so keys read "medication.name" rather than
// "Medication.medication.name".
func joinPath(path []string) string {
	if len(path) > 1 {
		return strings.Join(path[1:], ".")
	}
	return strings.Join(path, ".")
}
