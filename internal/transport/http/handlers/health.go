package http_handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
)

// Pinger is implemented by the redis session store. The in-memory store
// has nothing to check, so nil is accepted.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db       *sql.DB
	sessions Pinger
}

func NewHealthHandler(db *sql.DB, sessions Pinger) *HealthHandler {
	return &HealthHandler{db: db, sessions: sessions}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz. Not ready means the ledger database is
// unreachable; a dead session store degrades conversations but the
// registration trail survives, so it is reported without failing readiness.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  "ledger database unavailable",
			})
			return
		}
	}

	body := map[string]string{"status": "ready"}
	if h.sessions != nil {
		if err := h.sessions.Ping(r.Context()); err != nil {
			body["sessions"] = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
