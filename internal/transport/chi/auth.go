package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/curator/internal/logger"
	"github.com/kailas-cloud/curator/internal/metrics"
	"github.com/kailas-cloud/curator/internal/transport/dto"
)

// openPaths answer without a key so health checks and scrapers need no credentials.
var openPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// Rejection reasons, used as log field and metric label.
const (
	rejectMissing = "missing"
	rejectScheme  = "scheme"
	rejectKey     = "key"
)

var rejectMessages = map[string]string{
	rejectMissing: "missing authorization header",
	rejectScheme:  "authorization header must use Bearer scheme",
	rejectKey:     "invalid api key",
}

// BearerAuthMiddleware guards the curation and feed routes with API keys.
// Empty keys are ignored; with no keys left authentication is off.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	var keys [][]byte
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := openPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if reason := checkBearer(r.Header.Get("Authorization"), keys); reason != "" {
				metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
				logger.FromContext(r.Context()).Warn("Request rejected",
					zap.String("reason", reason),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, rejectMessages[reason])
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkBearer returns the rejection reason, or "" when the header carries a known key.
// The scheme is case-insensitive.
func checkBearer(header string, keys [][]byte) string {
	if header == "" {
		return rejectMissing
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return rejectScheme
	}
	token = strings.TrimSpace(token)
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(token), k) == 1 {
			return ""
		}
	}
	return rejectKey
}
