package parser

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/srosato/doctran/internal/document"
)

// Parser converts raw document bytes into a key/value Mapping.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Mapping, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".xml":  true,
	".json": true,
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xml":
		return &XMLParser{}, nil
	case ".json":
		return &JSONParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// ForContentType returns the appropriate parser for a MIME content type.
func ForContentType(contentType string) (Parser, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("parse content type %q: %w", contentType, err)
	}
	switch mt {
	case "application/xml", "text/xml":
		return &XMLParser{}, nil
	case "application/json":
		return &JSONParser{}, nil
	case "text/plain":
		return &TextParser{}, nil
	case "text/markdown":
		return &MarkdownParser{}, nil
	case "text/csv":
		return &CSVParser{}, nil
	case "text/html":
		return &HTMLParser{}, nil
	case "application/pdf":
		return &PDFParser{}, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported content type: %s", mt)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
