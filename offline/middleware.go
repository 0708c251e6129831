package offline

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware offers GET requests outside /api/ to the worker. Requests the worker
// does not answer go to next.
func Middleware(c *Controller, logger *zap.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		resp, handled, err := c.HandleFetch(r.Context(), r)
		if !handled {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			logger.Error("Fetch failed", zap.String("url", r.URL.String()), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		if err := resp.Write(w); err != nil {
			logger.Warn("failed to write response", zap.Error(err))
		}
	})
}
