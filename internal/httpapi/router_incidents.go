package httpapi

import (
	"net/http"

	"github.com/opsline/opsline/internal/incident"
)

func (r *router) handleIncidents(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Gateway == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "incident view is unavailable"})
		return
	}

	query := req.URL.Query()
	var (
		status      incident.Status
		priority    incident.Priority
		matchStatus bool
	)
	if raw := query.Get("status"); raw != "" {
		parsed, ok := incident.NormalizeStatus(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status filter"})
			return
		}
		status, matchStatus = parsed, true
	}
	if raw := query.Get("priority"); raw != "" {
		parsed, ok := incident.NormalizePriority(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown priority filter"})
			return
		}
		priority = parsed
	}

	records := r.deps.Gateway.Incidents(req.Context())
	filtered := make([]incident.Record, 0, len(records))
	for _, record := range records {
		if matchStatus && record.Status != status {
			continue
		}
		if priority != "" && priority != incident.PriorityAll && record.Priority != priority {
			continue
		}
		filtered = append(filtered, record)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(filtered),
		"incidents": filtered,
	})
}

func (r *router) handleAnalysis(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Gateway == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "incident view is unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, r.deps.Gateway.Analysis(req.Context()))
}
