package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/srosato/doctran/internal/store"
)

// handleListDocuments lists all ingested documents for a record.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	recordID := r.URL.Query().Get("record_id")
	if recordID == "" {
		jsonError(w, "record_id query parameter is required", http.StatusBadRequest)
		return
	}

	nodes, err := s.orchestrator.StoreClient().ListNodes(r.Context(), recordID, "documents", 200)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Filter to only meta nodes.
	var docs []map[string]any
	for _, node := range nodes {
		if strings.HasSuffix(node.Key, "/meta") {
			docs = append(docs, map[string]any{
				"key":   node.Key,
				"value": node.Value,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": docs})
}

// handleDeleteDocument deletes a document's stored facts and metadata.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	recordID := r.URL.Query().Get("record_id")
	if recordID == "" {
		jsonError(w, "record_id query parameter is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	st := s.orchestrator.StoreClient()
	docPrefix := "documents/" + docID

	// 1. Read manifest entries.
	manifest, err := st.ListNodes(ctx, recordID, docPrefix+"/facts", 10000)
	if err != nil {
		jsonError(w, "failed to read manifest: "+err.Error(), http.StatusInternalServerError)
		return
	}

	factsDeleted := 0
	missingFacts := 0

	// 2. Delete each referenced fact.
	for _, entry := range manifest {
		factID := lastKeySegment(entry.Key)
		if factID == "" {
			continue
		}
		if err := st.DeleteFact(ctx, recordID, factID); err != nil {
			missingFacts++
		} else {
			factsDeleted++
		}
	}

	// 3. Delete hash index entry (needs the meta's content hash).
	deleteHashIndex(ctx, st, recordID, docID, docPrefix)

	// 4. Delete document meta and manifest.
	manifestDeleted := 0
	if err := st.DeleteNode(ctx, recordID, docPrefix, true); err == nil {
		manifestDeleted = 1
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"facts_deleted":    factsDeleted,
		"missing_facts":    missingFacts,
		"manifest_deleted": manifestDeleted,
	})
}

func lastKeySegment(key string) string {
	parts := strings.Split(key, "/")
	if len(parts) == 0 {
		return key
	}
	return parts[len(parts)-1]
}

func deleteHashIndex(ctx context.Context, st *store.Client, recordID, docID, docPrefix string) {
	meta, err := st.GetNode(ctx, recordID, docPrefix+"/meta")
	if err != nil || meta == nil {
		return
	}
	metaMap, ok := meta.Value.(map[string]any)
	if !ok {
		return
	}
	hash, _ := metaMap["content_hash"].(string)
	if hash == "" {
		return
	}
	st.DeleteNode(ctx, recordID, "documents/by_hash/"+hash+"/"+docID, false)
}
