package identity

import (
	"log/slog"
	"net/http"

	"farmgate/internal/platform/metrics"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/httputil"
	"farmgate/pkg/requestcontext"
)

// RequireIdentity returns middleware that resolves the caller's identity and
// stores it in the request context. Requests without a resolvable identity get
// a 401 and never reach the handler.
func RequireIdentity(resolver Resolver, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id, err := resolver.Resolve(r)
			if err != nil {
				m.IncrementAuthFailures()
				logger.WarnContext(ctx, "identity resolution failed",
					"error", err,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnauthenticated, "unauthorized"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithContext(ctx, id)))
		})
	}
}
