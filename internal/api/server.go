package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tritonsoft/leadboard/internal/auth"
	"github.com/tritonsoft/leadboard/internal/backend"
	"github.com/tritonsoft/leadboard/internal/view"
)

type contextKey string

const tokenKey contextKey = "bearerToken"

// Server exposes the dashboard's HTTP surface: the authenticated proxy
// routes in front of the server of record, login, and the live overview.
type Server struct {
	backend  *backend.Client
	dash     *view.Dashboard
	verifier *auth.Verifier
	log      *slog.Logger
}

// NewServer builds the HTTP layer. dash may be nil when no service token is
// configured; the overview endpoint then reports the feature as unavailable.
func NewServer(client *backend.Client, dash *view.Dashboard, verifier *auth.Verifier) *Server {
	return &Server{
		backend:  client,
		dash:     dash,
		verifier: verifier,
		log:      slog.Default().With("component", "api"),
	}
}

func (s *Server) Router() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/contacts", s.handleListContacts)
			r.Get("/demos", s.handleListDemos)
			r.Get("/leads", s.handleListLeads)
			r.Get("/lost", s.handleListLost)
			r.Get("/activity", s.handleListActivity)
			r.Get("/overview", s.handleOverview)
			r.Patch("/contacts/{id}", s.handleUpdateContact)
			r.Delete("/contacts/{id}", s.handleDeleteContact)
			r.Patch("/demos/{id}", s.handleUpdateDemo)
			r.Delete("/demos/{id}", s.handleDeleteDemo)
		})
	})

	return router
}

// requireAuth enforces bearer token presence and, when a shared secret is
// configured, local verification. The backend still re-checks every call.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if err := s.verifier.Verify(token); err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeBackendError maps the client's error taxonomy onto proxy responses:
// 401 for a rejected session, 503 for an unconfigured or unreachable
// backend, pass-through of the upstream status otherwise.
func (s *Server) writeBackendError(w http.ResponseWriter, err error, fallback string) {
	var reqErr *backend.RequestError
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, backend.ErrBackendUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Backend not configured.")
	case errors.As(err, &reqErr):
		writeError(w, reqErr.Status, reqErr.Message)
	default:
		s.log.Error("proxy request failed", "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
