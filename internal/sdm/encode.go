package sdm

import (
	"bytes"
	"encoding/xml"
)

// EncodeJSON renders facts in the platform's JSON-like notation: an array of
// objects, each carrying a "__modelname__" discriminator followed by its
// fields, with related collections nested as arrays under the relation name.
func EncodeJSON(facts []Fact) ([]byte, error) {
	var buf bytes.Buffer
	encodeJSONList(&buf, facts)
	return buf.Bytes(), nil
}

func encodeJSONList(buf *bytes.Buffer, facts []Fact) {
	buf.WriteByte('[')
	for i, f := range facts {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodeJSONFact(buf, f)
	}
	buf.WriteByte(']')
}

func encodeJSONFact(buf *bytes.Buffer, f Fact) {
	buf.WriteString(`{"__modelname__":`)
	writeJSONString(buf, f.Model)
	for _, fld := range f.Fields {
		buf.WriteByte(',')
		writeJSONString(buf, fld.Name)
		buf.WriteByte(':')
		writeJSONString(buf, fld.Value)
	}
	for _, name := range f.relationNames() {
		buf.WriteByte(',')
		writeJSONString(buf, name)
		buf.WriteByte(':')
		encodeJSONList(buf, f.Related[name])
	}
	buf.WriteByte('}')
}

// EncodeXML renders facts in the platform's XML-like notation:
//
//	<Models>
//	  <Model name="...">
//	    <Field name="...">value</Field>
//	  </Model>
//	</Models>
//
// Related collections nest as a <Field name="relation"> wrapping an inner
// <Models> element.
func EncodeXML(facts []Fact) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeXMLModels(&buf, facts, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeXMLModels(buf *bytes.Buffer, facts []Fact, indent string) error {
	buf.WriteString(indent + "<Models>\n")
	for _, f := range facts {
		if err := encodeXMLFact(buf, f, indent+"  "); err != nil {
			return err
		}
	}
	buf.WriteString(indent + "</Models>\n")
	return nil
}

func encodeXMLFact(buf *bytes.Buffer, f Fact, indent string) error {
	buf.WriteString(indent + `<Model name="`)
	if err := xml.EscapeText(buf, []byte(f.Model)); err != nil {
		return err
	}
	buf.WriteString("\">\n")
	for _, fld := range f.Fields {
		buf.WriteString(indent + `  <Field name="`)
		if err := xml.EscapeText(buf, []byte(fld.Name)); err != nil {
			return err
		}
		buf.WriteString(`">`)
		if err := xml.EscapeText(buf, []byte(fld.Value)); err != nil {
			return err
		}
		buf.WriteString("</Field>\n")
	}
	for _, name := range f.relationNames() {
		buf.WriteString(indent + `  <Field name="`)
		if err := xml.EscapeText(buf, []byte(name)); err != nil {
			return err
		}
		buf.WriteString("\">\n")
		if err := encodeXMLModels(buf, f.Related[name], indent+"    "); err != nil {
			return err
		}
		buf.WriteString(indent + "  </Field>\n")
	}
	buf.WriteString(indent + "</Model>\n")
	return nil
}
