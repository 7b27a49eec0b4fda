// Package sdm implements the platform's simple data model: the fact records
// produced by transforms and their two wire notations (a JSON-like and an
// XML-like rendering).
package sdm

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Fact is one structured record intended for persistence.
type Fact struct {
	Model   string
	Fields  []Field
	Related map[string][]Fact
}

// Field is a single named value. Field order is preserved end to end.
type Field struct {
	Name  string
	Value string
}

// Set appends a field.
func (f *Fact) Set(name, value string) {
	f.Fields = append(f.Fields, Field{Name: name, Value: value})
}

// Get returns the first field value with the given name.
func (f *Fact) Get(name string) (string, bool) {
	for _, fld := range f.Fields {
		if fld.Name == name {
			return fld.Value, true
		}
	}
	return "", false
}

// Relate appends a related fact under the given relation name.
func (f *Fact) Relate(relation string, related Fact) {
	if f.Related == nil {
		f.Related = make(map[string][]Fact)
	}
	f.Related[relation] = append(f.Related[relation], related)
}

// relationNames returns relation names sorted for deterministic output.
func (f Fact) relationNames() []string {
	if len(f.Related) == 0 {
		return nil
	}
	names := make([]string, 0, len(f.Related))
	for name := range f.Related {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON renders the fact as a plain JSON object with field order
// preserved. This is the ordinary representation, not the custom notation.
func (f Fact) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"model":`)
	writeJSONString(&buf, f.Model)
	buf.WriteString(`,"fields":{`)
	for i, fld := range f.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSONString(&buf, fld.Name)
		buf.WriteByte(':')
		writeJSONString(&buf, fld.Value)
	}
	buf.WriteByte('}')
	if names := f.relationNames(); len(names) > 0 {
		buf.WriteString(`,"related":{`)
		for i, name := range names {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(&buf, name)
			buf.WriteByte(':')
			data, err := json.Marshal(f.Related[name])
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	data, _ := json.Marshal(s)
	buf.Write(data)
}
