package api

import (
	"net/http"
)

func (s *Server) handleTranslateStats(w http.ResponseWriter, r *http.Request) {
	if s.stack == nil {
		jsonError(w, "translation stats unavailable", http.StatusServiceUnavailable)
		return
	}

	out := map[string]any{
		"backend":       s.stack.Backend,
		"breaker_state": s.stack.Breaker.State(),
		"stats":         s.stack.Stats.Snapshot(),
		"queue_depth":   s.orchestrator.QueueDepth(),
	}
	if s.memory != nil {
		st, err := s.memory.Stats(r.Context())
		if err != nil {
			s.log.Warn("cache stats failed", "error", err)
		} else {
			out["cache"] = st
		}
	}
	writeJSON(w, http.StatusOK, out)
}
