package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"order-exporter/pkg/logging"
)

const requestIDHeader = "X-Request-Id"

// LoggerContext attaches request fields to the context so every log line of the request carries them.
type LoggerContext struct{}

func NewLoggerContext() *LoggerContext {
	return &LoggerContext{}
}

func (lc *LoggerContext) CreateHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		r = r.WithContext(
			logging.WithContextFields(
				r.Context(),
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.String("remote-addr", r.RemoteAddr),
			),
		)
		next.ServeHTTP(w, r)
	})
}
