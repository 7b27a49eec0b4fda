package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/srosato/doctran/internal/document"
	"github.com/srosato/doctran/internal/parser"
	"github.com/srosato/doctran/internal/schema"
	"github.com/srosato/doctran/internal/transform"
)

// handleTransform runs a document through its type's transform synchronously
// and returns the requested representation: facts (plain JSON), json (the
// custom JSON-like notation), or xml (the custom XML-like notation).
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	docType := chi.URLParam(r, "docType")
	entry, ok := s.registry.Get(docType)
	if !ok {
		jsonError(w, "unknown document type: "+docType, http.StatusNotFound)
		return
	}
	if entry.Transform == nil {
		jsonError(w, "no transform for document type: "+docType, http.StatusNotImplemented)
		return
	}

	output := r.URL.Query().Get("output")
	if output == "" {
		output = "facts"
	}
	switch output {
	case "facts", "json", "xml":
	default:
		jsonError(w, "output must be one of facts, json, xml", http.StatusBadRequest)
		return
	}

	p, data, filename, err := s.readDocumentBody(w, r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	mapping, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.registry.Validate(docType, mapping); err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]any{
				"error":    "document does not validate",
				"type":     verr.Type,
				"problems": verr.Problems,
			})
			return
		}
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	doc := &document.Document{
		ID:       uuid.NewString(),
		Type:     docType,
		Filename: filename,
		Data:     data,
		Mapping:  mapping,
	}

	started := time.Now()
	body, contentType, err := runTransform(r, entry, doc, output)
	elapsed := time.Since(started)
	s.metrics.TransformDuration.WithLabelValues(docType, output).Observe(elapsed.Seconds())
	s.stats.Record(elapsed.Milliseconds())

	if err != nil {
		if errors.Is(err, transform.ErrUnsupported) {
			jsonError(w, "transform does not support output: "+output, http.StatusNotImplemented)
			return
		}
		jsonError(w, "transform: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(body)
}

func runTransform(r *http.Request, entry *schema.Entry, doc *document.Document, output string) ([]byte, string, error) {
	ctx := r.Context()
	switch output {
	case "json":
		body, err := entry.Transform.SimpleJSON(ctx, doc)
		return body, "application/json", err
	case "xml":
		body, err := entry.Transform.SimpleXML(ctx, doc)
		return body, "application/xml", err
	default:
		facts, err := entry.Transform.Facts(ctx, doc)
		if err != nil {
			return nil, "", err
		}
		body, err := json.Marshal(facts)
		return body, "application/json", err
	}
}

// readDocumentBody accepts either a multipart form with a "file" field or a
// raw body with a supported Content-Type.
func (s *Server) readDocumentBody(w http.ResponseWriter, r *http.Request) (parser.Parser, []byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, nil, "", errors.New("invalid multipart form: " + err.Error())
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, nil, "", errors.New("file is required: " + err.Error())
		}
		defer file.Close()

		filename := sanitizeFilename(header.Filename)
		p, err := parser.ForFile(filename)
		if err != nil {
			return nil, nil, "", err
		}
		data, err := readLimited(file, s.cfg.MaxUploadBytes)
		if err != nil {
			return nil, nil, "", err
		}
		return p, data, filename, nil
	}

	p, err := parser.ForContentType(ct)
	if err != nil {
		return nil, nil, "", err
	}
	data, err := readLimited(r.Body, s.cfg.MaxUploadBytes)
	if err != nil {
		return nil, nil, "", err
	}
	return p, data, "document", nil
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, errors.New("failed to read document")
	}
	if int64(len(data)) > max {
		return nil, errors.New("document exceeds max size")
	}
	return data, nil
}
