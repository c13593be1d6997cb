package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey int

const (
	userIDKey contextKey = iota
	requestIDKey
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// withRequestID assigns a request id unless the caller sent one.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// withLogging logs every request and records it in the metrics. Requests are
// labelled by the matched route pattern.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, route, rec.status, elapsed)
		}
		s.entry(r).WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": elapsed,
		}).Debug("HTTP request")
	})
}

// authenticated rejects requests without a valid bearer token and stores the
// user id in the request context.
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, err := s.svc.Authenticate(token)
		if err != nil {
			s.entry(r).WithError(err).Debug("Rejected token")
			s.respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// userID returns the authenticated user of r.
func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

func (s *Server) entry(r *http.Request) *logrus.Entry {
	id, _ := r.Context().Value(requestIDKey).(string)
	return s.logger.WithField("request_id", id)
}
