package router

import (
	"net/http"
	"strings"

	"github.com/ademolaidowu/gezapay/internal/pkg/config"
)

// middlewareMaintenance blocks the routes listed under
// app.maintenance.endpoints with 503 while keeping the rest of the API up.
func middlewareMaintenance(cfg config.Config) Middleware {
	endpoints := make(map[string]struct{})
	if cfg != nil {
		for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
			if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
				endpoints[endpoint] = struct{}{}
			}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, blocked := endpoints[matchedRoutePath(r)]; blocked {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
