package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vk/optspec/internal/builder"
	"github.com/vk/optspec/internal/codec"
	"github.com/vk/optspec/internal/ctxlog"
	"github.com/vk/optspec/internal/patch"
	"github.com/vk/optspec/internal/session"
)

// maxBodyBytes bounds request bodies; specifications are small documents.
const maxBodyBytes = 4 << 20

// Server routes session operations to the store.
type Server struct {
	store   *session.Store
	metrics http.Handler
	mux     *http.ServeMux
}

// New builds a server around a store. metricsHandler serves GET /metrics
// and may be nil to disable the endpoint.
func New(store *session.Store, metricsHandler http.Handler) *Server {
	s := &Server{store: store, metrics: metricsHandler, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /sessions", s.createSession)
	s.mux.HandleFunc("GET /sessions", s.listSessions)
	s.mux.HandleFunc("GET /sessions/{id}", s.getSession)
	s.mux.HandleFunc("PATCH /sessions/{id}", s.patchSession)
	s.mux.HandleFunc("DELETE /sessions/{id}", s.deleteSession)
	s.mux.HandleFunc("POST /sessions/{id}/solve", s.solveSession)
	s.mux.HandleFunc("GET /sessions/{id}/solution", s.getSolution)
	s.mux.HandleFunc("GET /healthz", s.healthz)
	if metricsHandler != nil {
		s.mux.Handle("GET /metrics", metricsHandler)
	}
	return s
}

// Handler returns the routing entry point.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctxlog.FromContext(r.Context()).Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// sessionView is the detail representation of one session.
type sessionView struct {
	ID            string         `json:"id"`
	Template      string         `json:"template"`
	Status        session.Status `json:"status"`
	Error         string         `json:"error,omitempty"`
	Specification map[string]any `json:"specification,omitempty"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, fmt.Errorf("reading request body: %w", err))
		return
	}

	format, err := requestFormat(r)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sp, err := codec.Parse(r.Context(), body, format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sess := s.store.Create(r.Context(), sp)
	writeJSON(w, r, http.StatusCreated, sessionView{
		ID:       sess.ID,
		Template: sp.Template,
		Status:   sess.Status(),
	})
}

// requestFormat resolves the body format from the format query parameter,
// falling back to the Content-Type, then to YAML.
func requestFormat(r *http.Request) (codec.Format, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		return codec.ParseFormat(q)
	}
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(ct, "json"):
		return codec.FormatJSON, nil
	case strings.Contains(ct, "hcl"):
		return codec.FormatHCL, nil
	default:
		return codec.FormatYAML, nil
	}
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.store.List())
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	view := sessionView{
		ID:            sess.ID,
		Template:      sess.Spec().Template,
		Status:        sess.Status(),
		Specification: codec.Serialize(sess.Spec()),
	}
	if err := sess.Err(); err != nil {
		view.Error = err.Error()
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) patchSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, fmt.Errorf("reading request body: %w", err))
		return
	}

	patches, err := decodePatches(body)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id := r.PathValue("id")
	status, err := s.store.Patch(r.Context(), id, patches)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"id": id, "status": status})
}

// decodePatches accepts either a single patch object or an array of them.
func decodePatches(body []byte) ([]patch.Patch, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var patches []patch.Patch
		if err := json.Unmarshal(body, &patches); err != nil {
			return nil, fmt.Errorf("malformed patch list: %w", err)
		}
		return patches, nil
	}
	var p patch.Patch
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("malformed patch: %w", err)
	}
	return []patch.Patch{p}, nil
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) solveSession(w http.ResponseWriter, r *http.Request) {
	result, err := s.store.Solve(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) getSolution(w http.ResponseWriter, r *http.Request) {
	result, err := s.store.Solution(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		ctxlog.FromContext(r.Context()).Error("Failed to encode response.", "error", err)
	}
}

// writeError maps typed errors from the lower layers onto status codes.
// Build and solver failures stay 500: by the time a session exists its
// specification already parsed, so those point at capability or solver
// problems rather than at the request.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound   *session.NotFoundError
		noSolution *session.NoSolutionError
		configErr  *codec.ConfigError
		patchErr   *patch.Error
		buildErr   *builder.BuildError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &noSolution):
		status = http.StatusNotFound
	case errors.As(err, &configErr):
		status = http.StatusBadRequest
	case errors.As(err, &patchErr):
		status = http.StatusBadRequest
	case errors.As(err, &buildErr):
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		ctxlog.FromContext(r.Context()).Error("Request failed.", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, r, status, map[string]string{"error": err.Error()})
}
