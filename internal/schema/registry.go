package schema

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/srosato/doctran/internal/document"
	"github.com/srosato/doctran/internal/transform"
)

const (
	schemaFile    = "schema.yaml"
	transformFile = "transform.yaml"
)

// TransformSource records where an entry's transform came from.
type TransformSource string

const (
	SourceMapping TransformSource = "mapping" // transform.yaml next to the schema
	SourceBuiltin TransformSource = "builtin" // compiled-in, registered under the type name
	SourceNone    TransformSource = "none"    // schema only, no transform
)

// Entry is one registered document type.
type Entry struct {
	Schema    *Schema
	Transform transform.Transform
	Source    TransformSource
}

// Registry holds every document type discovered at startup.
type Registry struct {
	entries map[string]*Entry
}

// Load scans root for document-type directories. A subdirectory is a type if
// it contains schema.yaml; a file literally named transform.yaml beside it is
// compiled into a mapping transform. Without one, a compiled-in transform
// registered under the directory name is used.
func Load(root string, log *slog.Logger) (*Registry, error) {
	dirs, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read schema root: %w", err)
	}

	r := &Registry{entries: make(map[string]*Entry)}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		name := d.Name()

		data, err := os.ReadFile(filepath.Join(root, name, schemaFile))
		if os.IsNotExist(err) {
			log.Warn("skipping directory without schema", "dir", name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read schema for %s: %w", name, err)
		}
		s, err := ParseSchema(data)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		s.Type = name

		entry := &Entry{Schema: s, Source: SourceNone}

		tdata, err := os.ReadFile(filepath.Join(root, name, transformFile))
		switch {
		case err == nil:
			def, err := transform.ParseDefinition(tdata)
			if err != nil {
				return nil, fmt.Errorf("transform %s: %w", name, err)
			}
			entry.Transform = transform.NewMapping(def)
			entry.Source = SourceMapping
		case os.IsNotExist(err):
			if transform.Registered(name) {
				t, err := transform.New(name)
				if err != nil {
					return nil, fmt.Errorf("transform %s: %w", name, err)
				}
				entry.Transform = t
				entry.Source = SourceBuiltin
			}
		default:
			return nil, fmt.Errorf("read transform for %s: %w", name, err)
		}

		r.entries[name] = entry
		log.Info("registered document type",
			"type", name,
			"fields", len(s.Fields),
			"transform", string(entry.Source),
		)
	}

	return r, nil
}

// Get returns the entry for a document type.
func (r *Registry) Get(docType string) (*Entry, bool) {
	e, ok := r.entries[docType]
	return e, ok
}

// Types returns registered type names, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Validate checks a parsed mapping against the schema for docType. Every
// occurrence of a constrained key is checked.
func (r *Registry) Validate(docType string, m *document.Mapping) error {
	entry, ok := r.entries[docType]
	if !ok {
		return fmt.Errorf("unknown document type: %s", docType)
	}

	var problems []string
	for i := range entry.Schema.Fields {
		f := &entry.Schema.Fields[i]
		values := m.All(f.Key)
		if len(values) == 0 {
			if f.Required {
				problems = append(problems, fmt.Sprintf("%s: required field missing", f.Key))
			}
			continue
		}
		for _, v := range values {
			if err := f.checkValue(v); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %s", f.Key, err))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Type: docType, Problems: problems}
	}
	return nil
}
