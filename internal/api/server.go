package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/metrics"
	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/service"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 1 << 20

// Server provides the JSON HTTP API of the gift store.
type Server struct {
	svc     *service.Service
	metrics *metrics.Metrics
	logger  *logrus.Logger
	mux     *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it. metrics
// may be nil.
func NewServer(svc *service.Service, m *metrics.Metrics, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, metrics: m, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withLogging(s.mux))
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// Auth
	s.mux.HandleFunc("POST /auth/signup", s.handleSignUp)
	s.mux.HandleFunc("POST /auth/signin", s.handleSignIn)
	s.mux.HandleFunc("POST /auth/refresh", s.handleRefresh)

	// API – Recipients
	s.mux.Handle("GET /api/recipients", s.authenticated(s.handleListRecipients))
	s.mux.Handle("POST /api/recipients", s.authenticated(s.handleCreateRecipient))
	s.mux.Handle("GET /api/recipients/{id}", s.authenticated(s.handleGetRecipient))
	s.mux.Handle("PUT /api/recipients/{id}", s.authenticated(s.handleUpdateRecipient))
	s.mux.Handle("DELETE /api/recipients/{id}", s.authenticated(s.handleDeleteRecipient))

	// API – Gift ideas
	s.mux.Handle("GET /api/recipients/{id}/ideas", s.authenticated(s.handleListIdeas))
	s.mux.Handle("GET /api/ideas/recipient-ids", s.authenticated(s.handleIdeaRecipientIDs))
	s.mux.Handle("POST /api/ideas", s.authenticated(s.handleCreateIdea))
	s.mux.Handle("PUT /api/ideas/{id}", s.authenticated(s.handleUpdateIdea))
	s.mux.Handle("DELETE /api/ideas/{id}", s.authenticated(s.handleDeleteIdea))

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	if data == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode JSON response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a service error to a status code. Unknown errors
// are logged and answered with fallback.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var inputErr *service.InputError
	var credErr *service.CredentialsError
	switch {
	case errors.As(err, &inputErr):
		s.respondError(w, http.StatusBadRequest, inputErr.Message)
	case errors.As(err, &credErr):
		s.respondError(w, http.StatusUnauthorized, credErr.Message)
	case errors.Is(err, service.ErrUnauthorized):
		s.respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "not found")
	default:
		s.entry(r).WithError(err).Error(fallback)
		s.respondError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil || r.Body == http.NoBody {
		return false, "request body is empty"
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts the {id} path value and converts it to int64.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, fmt.Errorf("missing id in path")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return id, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if ok, msg := s.decodeJSON(w, r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	sess, err := s.svc.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondServiceError(w, r, err, "failed to sign up")
		return
	}

	s.respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if ok, msg := s.decodeJSON(w, r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	sess, err := s.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondServiceError(w, r, err, "failed to sign in")
		return
	}

	s.respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		s.respondError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	sess, err := s.svc.Refresh(r.Context(), token)
	if err != nil {
		s.respondServiceError(w, r, err, "failed to refresh session")
		return
	}

	s.respondJSON(w, http.StatusOK, sess)
}

// ---------------------------------------------------------------------------
// Recipients
// ---------------------------------------------------------------------------

func (s *Server) handleListRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := s.svc.ListRecipients(r.Context(), userID(r))
	if err != nil {
		s.respondServiceError(w, r, err, "failed to get recipients")
		return
	}

	s.respondJSON(w, http.StatusOK, recipients)
}

func (s *Server) handleGetRecipient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid recipient id")
		return
	}

	recipient, err := s.svc.GetRecipient(r.Context(), userID(r), id)
	if err != nil {
		s.respondServiceError(w, r, err, "failed to get recipient")
		return
	}

	s.respondJSON(w, http.StatusOK, recipient)
}

func (s *Server) handleCreateRecipient(w http.ResponseWriter, r *http.Request) {
	var req models.RecipientInput
	if ok, msg := s.decodeJSON(w, r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.svc.CreateRecipient(r.Context(), userID(r), req)
	if err != nil {
		s.respondServiceError(w, r, err, "failed to create recipient")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRecipient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid recipient id")
		return
	}

	var req models.RecipientInput
	if ok, msg := s.decodeJSON(w, r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.svc.UpdateRecipient(r.Context(), userID(r), id, req); err != nil {
		s.respondServiceError(w, r, err, "failed to update recipient")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteRecipient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid recipient id")
		return
	}

	if err := s.svc.DeleteRecipient(r.Context(), userID(r), id); err != nil {
		s.respondServiceError(w, r, err, "failed to delete recipient")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

// ---------------------------------------------------------------------------
// Gift ideas
// ---------------------------------------------------------------------------

func (s *Server) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid recipient id")
		return
	}

	ideas, err := s.svc.ListIdeas(r.Context(), userID(r), id)
	if err != nil {
		s.respondServiceError(w, r, err, "failed to get gift ideas")
		return
	}

	s.respondJSON(w, http.StatusOK, ideas)
}

func (s *Server) handleIdeaRecipientIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.IdeaRecipientIDs(r.Context(), userID(r))
	if err != nil {
		s.respondServiceError(w, r, err, "failed to get gift idea recipients")
		return
	}

	s.respondJSON(w, http.StatusOK, ids)
}

func (s *Server) handleCreateIdea(w http.ResponseWriter, r *http.Request) {
	var req models.IdeaInput
	if ok, msg := s.decodeJSON(w, r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.RecipientID <= 0 {
		s.respondError(w, http.StatusBadRequest, "recipient_id is required")
		return
	}

	created, err := s.svc.CreateIdea(r.Context(), userID(r), req)
	if err != nil {
		s.respondServiceError(w, r, err, "failed to create gift idea")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateIdea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid gift idea id")
		return
	}

	var req models.IdeaInput
	if ok, msg := s.decodeJSON(w, r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.svc.UpdateIdea(r.Context(), userID(r), id, req); err != nil {
		s.respondServiceError(w, r, err, "failed to update gift idea")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteIdea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid gift idea id")
		return
	}

	if err := s.svc.DeleteIdea(r.Context(), userID(r), id); err != nil {
		s.respondServiceError(w, r, err, "failed to delete gift idea")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}
