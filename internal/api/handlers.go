package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tritonsoft/leadboard/internal/backend"
	"github.com/tritonsoft/leadboard/internal/models"
)

// listPayload re-wraps a snapshot result in the response envelope the
// dashboard clients expect. Data is always an array, never null.
func listPayload[T any](res *backend.List[T]) map[string]any {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return map[string]any{
		"success": true,
		"data":    items,
		"count":   res.Count,
		"total":   res.Total,
	}
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	res, err := s.backend.ListContacts(r.Context(), tokenFrom(r.Context()), models.FilterFromRequest(r))
	if err != nil {
		s.writeBackendError(w, err, "Failed to fetch contacts.")
		return
	}
	writeJSON(w, http.StatusOK, listPayload(res))
}

func (s *Server) handleListDemos(w http.ResponseWriter, r *http.Request) {
	res, err := s.backend.ListDemos(r.Context(), tokenFrom(r.Context()), models.FilterFromRequest(r))
	if err != nil {
		s.writeBackendError(w, err, "Failed to fetch demos.")
		return
	}
	writeJSON(w, http.StatusOK, listPayload(res))
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	res, err := s.backend.ListLeads(r.Context(), tokenFrom(r.Context()), models.FilterFromRequest(r))
	if err != nil {
		s.writeBackendError(w, err, "Failed to fetch leads.")
		return
	}
	writeJSON(w, http.StatusOK, listPayload(res))
}

func (s *Server) handleListLost(w http.ResponseWriter, r *http.Request) {
	res, err := s.backend.ListLost(r.Context(), tokenFrom(r.Context()), models.FilterFromRequest(r))
	if err != nil {
		s.writeBackendError(w, err, "Failed to fetch lost.")
		return
	}
	writeJSON(w, http.StatusOK, listPayload(res))
}

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	res, err := s.backend.ListActivity(r.Context(), tokenFrom(r.Context()), models.FilterFromRequest(r))
	if err != nil {
		s.writeBackendError(w, err, "Failed to fetch activity.")
		return
	}
	writeJSON(w, http.StatusOK, listPayload(res))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Missing status.")
		return
	}
	updated, err := s.backend.UpdateContactStatus(r.Context(), tokenFrom(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.writeBackendError(w, err, "Update failed.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
}

func (s *Server) handleUpdateDemo(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Missing status.")
		return
	}
	updated, err := s.backend.UpdateDemoStatus(r.Context(), tokenFrom(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.writeBackendError(w, err, "Update failed.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": updated})
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteContact(r.Context(), tokenFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeBackendError(w, err, "Delete failed.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteDemo(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteDemo(r.Context(), tokenFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeBackendError(w, err, "Delete failed.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	result, err := s.backend.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		s.writeBackendError(w, err, "Login failed.")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleOverview serves the live aggregates derived from the reconciled
// views. Requires the dashboard binding, which only runs when a service
// token for the backend is configured.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if s.dash == nil {
		writeError(w, http.StatusServiceUnavailable, "Live overview not configured. Set BACKEND_TOKEN.")
		return
	}
	writeJSON(w, http.StatusOK, s.dash.Overview())
}
