package handlers

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"
)

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports liveness plus the state of every configured backend.
// Any failing backend turns the answer into 503.
type HealthHandler struct {
	Checks map[string]HealthCheck
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	res := map[string]string{"status": "ok"}
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			log.Printf("health check failed: backend=%s err=%v", name, err)
			res[name] = "down"
			res["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		res[name] = "ok"
	}

	writeJSON(w, r, status, res)
}
