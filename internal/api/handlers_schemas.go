package api

import (
	"encoding/json"
	"net/http"
)

// handleListSchemas lists every registered document type with its schema
// fields and transform source.
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	var out []map[string]any
	for _, t := range s.registry.Types() {
		entry, _ := s.registry.Get(t)

		fields := make([]map[string]any, 0, len(entry.Schema.Fields))
		for _, f := range entry.Schema.Fields {
			fields = append(fields, map[string]any{
				"key":      f.Key,
				"type":     f.Type,
				"required": f.Required,
			})
		}

		out = append(out, map[string]any{
			"type":      t,
			"title":     entry.Schema.Title,
			"fields":    fields,
			"transform": string(entry.Source),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"schemas": out})
}
