package transform

import "fmt"

// Factory builds a Transform.
type Factory func() Transform

var registry = map[string]Factory{}

// Register makes a compiled-in transform available under a document type
// name. Called from init() in the transform's package; changes require a
// process restart.
func Register(name string, f Factory) {
	registry[name] = f
}

// Registered reports whether a compiled-in transform exists for name.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}

// New returns a compiled-in transform by document type name.
func New(name string) (Transform, error) {
	if f, ok := registry[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("transform: no registered transform %q", name)
}
