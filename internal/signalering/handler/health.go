package handler

import (
	"context"
	"net/http"
	"time"

	"signalering/pkg/platform/httputil"
)

// Check reports whether one backing service is reachable.
type Check func(ctx context.Context) error

// Health answers 200 when every check passes and 503 naming the failing ones.
func Health(checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{}
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status[name] = err.Error()
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		if !healthy {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "checks": status})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "checks": status})
	}
}
