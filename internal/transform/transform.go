// Package transform defines the contract a document transform implements:
// three conversion methods over one parsed document, of which an
// implementation overrides whichever it needs. Transforms are either compiled
// in (registered by name) or built from a declarative mapping file discovered
// next to the document type's schema.
package transform

import (
	"context"
	"errors"

	"github.com/srosato/doctran/internal/document"
	"github.com/srosato/doctran/internal/sdm"
)

// ErrUnsupported is returned by conversion methods a transform does not
// implement.
var ErrUnsupported = errors.New("transform: output not supported")

// Transform converts one validated source document into one of three output
// representations.
type Transform interface {
	// Facts produces the ordered collection of structured records intended
	// for persistence.
	Facts(ctx context.Context, doc *document.Document) ([]sdm.Fact, error)

	// SimpleJSON produces the document in the platform's JSON-like notation.
	SimpleJSON(ctx context.Context, doc *document.Document) ([]byte, error)

	// SimpleXML produces the document in the platform's XML-like notation.
	SimpleXML(ctx context.Context, doc *document.Document) ([]byte, error)
}

// Base implements every conversion method with ErrUnsupported. Embed it and
// override only the methods your transform needs.
type Base struct{}

func (Base) Facts(context.Context, *document.Document) ([]sdm.Fact, error) {
	return nil, ErrUnsupported
}

func (Base) SimpleJSON(context.Context, *document.Document) ([]byte, error) {
	return nil, ErrUnsupported
}

func (Base) SimpleXML(context.Context, *document.Document) ([]byte, error) {
	return nil, ErrUnsupported
}
