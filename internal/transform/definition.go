package transform

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Definition is the parsed form of a transform.yaml mapping file.
type Definition struct {
	Model  string      `yaml:"model" validate:"required"`
	Fields []FieldRule `yaml:"fields" validate:"required,min=1,dive"`
	Groups []GroupRule `yaml:"groups" validate:"dive"`
}

// FieldRule maps one mapping key (or a constant) onto a fact field.
type FieldRule struct {
	Name   string `yaml:"name" validate:"required"`
	From   string `yaml:"from" validate:"required_without=Const"`
	Const  string `yaml:"const"`
	Format string `yaml:"format" validate:"omitempty,oneof=date"`
}

// GroupRule emits one fact per occurrence of its repeated source keys.
// With a relation name the facts nest under the root fact; without one they
// are appended to the top-level result.
type GroupRule struct {
	Model    string      `yaml:"model" validate:"required"`
	Relation string      `yaml:"relation"`
	Fields   []FieldRule `yaml:"fields" validate:"required,min=1,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseDefinition unmarshals and validates a mapping definition.
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return def, fmt.Errorf("parse transform definition: %w", err)
	}
	if err := validate.Struct(def); err != nil {
		return def, fmt.Errorf("invalid transform definition: %w", err)
	}
	return def, nil
}
