package capture_agent

import (
	"net/http"
	"strings"

	"github.com/NordCoder/NotifyCapture/internal/obs"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenGuard requires a bearer token matching the bcrypt hash. Browsers
// cannot set headers on EventSource, so access_token in the query is
// accepted too. An empty hash turns the guard off.
func TokenGuard(hash string, log *zap.Logger) mux.MiddlewareFunc {
	if hash == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	if log == nil {
		log = zap.L()
	}
	log = log.With(zap.String("component", "capture-agent.auth"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) != nil {
				obs.WithTrace(r.Context(), log).Debug("rejected request", zap.String("path", r.URL.Path))
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if after, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}
