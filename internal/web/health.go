package web

import (
	"encoding/json"
	"net/http"
	"time"
)

// timestampLayout is ISO-8601 in UTC with millisecond precision, e.g. 2025-01-02T03:04:05.678Z.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// HealthHandler answers liveness probes. It does not check dependencies.
type HealthHandler struct {
	now func() time.Time
}

// NewHealthHandler creates a [HealthHandler]; now defaults to [time.Now].
func NewHealthHandler(now func() time.Time) *HealthHandler {
	if now == nil {
		now = time.Now
	}
	return &HealthHandler{now: now}
}

// Routes implements [server.Handler].
func (h *HealthHandler) Routes() []string {
	return []string{"GET /api/health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := json.Marshal(healthResponse{Status: "ok", Timestamp: h.now().UTC().Format(timestampLayout)})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
