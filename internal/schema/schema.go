// Package schema loads the document-type registry: one directory per type
// under a schemas root, each holding a schema.yaml and, by naming convention,
// an optional transform.yaml mapping file. The registry is built once at
// startup; file changes require a process restart.
package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Field describes one constrained key in a document schema.
type Field struct {
	Key      string   `yaml:"key" validate:"required"`
	Type     string   `yaml:"type" validate:"omitempty,oneof=string number integer date code bool"`
	Required bool     `yaml:"required"`
	Pattern  string   `yaml:"pattern"`
	Enum     []string `yaml:"enum"`

	pattern *regexp.Regexp
}

// Schema is the parsed form of a schema.yaml.
type Schema struct {
	Type   string  `yaml:"-"` // directory name, set by the registry
	Title  string  `yaml:"title"`
	Fields []Field `yaml:"fields" validate:"required,min=1,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseSchema unmarshals and validates a schema definition, compiling any
// field patterns.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := validate.Struct(s); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	for i := range s.Fields {
		if s.Fields[i].Pattern == "" {
			continue
		}
		re, err := regexp.Compile(s.Fields[i].Pattern)
		if err != nil {
			return nil, fmt.Errorf("field %s: bad pattern: %w", s.Fields[i].Key, err)
		}
		s.Fields[i].pattern = re
	}
	return &s, nil
}

// codePattern constrains "code" fields to bare coding-system tokens.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// checkValue validates a single occurrence of a field value.
func (f *Field) checkValue(value string) error {
	switch f.Type {
	case "", "string":
	case "number":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("not a number: %q", value)
		}
	case "integer":
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("not an integer: %q", value)
		}
	case "bool":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("not a boolean: %q", value)
		}
	case "date":
		if !validDate(value) {
			return fmt.Errorf("not a date: %q", value)
		}
	case "code":
		if !codePattern.MatchString(value) {
			return fmt.Errorf("not a code: %q", value)
		}
	}
	if f.pattern != nil && !f.pattern.MatchString(value) {
		return fmt.Errorf("does not match pattern %s: %q", f.Pattern, value)
	}
	if len(f.Enum) > 0 {
		found := false
		for _, e := range f.Enum {
			if e == value {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("not in enum %v: %q", f.Enum, value)
		}
	}
	return nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func validDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// ValidationError aggregates every constraint a document violated.
type ValidationError struct {
	Type     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document does not validate against schema %s: %s",
		e.Type, strings.Join(e.Problems, "; "))
}
