package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleConversionStats(w http.ResponseWriter, r *http.Request) {
	if s.latency == nil {
		jsonError(w, "conversion stats unavailable", http.StatusServiceUnavailable)
		return
	}

	body := map[string]any{"latency": s.latency.Snapshot()}
	if s.orchestrator != nil {
		body["queue_depth"] = s.orchestrator.QueueDepth()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
