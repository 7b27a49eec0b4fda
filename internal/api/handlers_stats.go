package api

import (
	"encoding/json"
	"net/http"
)

// handleTransformStats returns transform latency stats for the rolling window.
func (s *Server) handleTransformStats(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"transforms":  snap,
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
