package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritonsoft/leadboard/internal/models"
)

func TestClient_ListContacts(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/contact", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []models.Contact{
				{ID: "c1", FullName: "Ada", Email: "ada@example.com", Status: "Pending"},
				{ID: "c2", FullName: "Ben", Email: "ben@example.com", Status: "Lead"},
			},
			"count": 2,
			"total": 41,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	res, err := client.ListContacts(context.Background(), "tok-123", models.FilterParams{
		Status:   "Pending",
		DateFrom: "2026-01-01",
		Search:   "ada",
		Limit:    500,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Contains(t, gotQuery, "status=Pending")
	assert.Contains(t, gotQuery, "dateFrom=2026-01-01")
	assert.Contains(t, gotQuery, "search=ada")
	assert.Contains(t, gotQuery, "limit=500")

	require.Len(t, res.Items, 2)
	assert.Equal(t, "c1", res.Items[0].ID)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 41, res.Total)
}

func TestClient_AllStatusFilterIsNotForwarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("status"))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []models.Demo{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	_, err := client.ListDemos(context.Background(), "tok", models.FilterParams{Status: "All"})
	require.NoError(t, err)
}

func TestClient_UnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"token expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	_, err := client.ListContacts(context.Background(), "stale", models.FilterParams{})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_UnconfiguredBaseURL(t *testing.T) {
	client := NewClient("", 0)
	_, err := client.ListContacts(context.Background(), "tok", models.FilterParams{})
	require.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestClient_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	client := NewClient(srv.URL, time.Second)
	_, err := client.ListDemos(context.Background(), "tok", models.FilterParams{})
	require.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestClient_RequestErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid status value"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	_, err := client.UpdateContactStatus(context.Background(), "tok", "c1", "Bogus")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnprocessableEntity, reqErr.Status)
	assert.Equal(t, "invalid status value", reqErr.Message)
}

func TestClient_RequestErrorFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	_, err := client.ListContacts(context.Background(), "tok", models.FilterParams{})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "Failed to fetch list.", reqErr.Message)
}

func TestClient_UpdateContactStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/contact/c1", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Lead", body["status"])
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    models.Contact{ID: "c1", Status: "Lead"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	updated, err := client.UpdateContactStatus(context.Background(), "tok", "c1", "Lead")
	require.NoError(t, err)
	assert.Equal(t, "Lead", updated.Status)
}

func TestClient_DeleteContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/demo/d7", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	require.NoError(t, client.DeleteDemo(context.Background(), "tok", "d7"))
}

func TestClient_DeleteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"no such contact"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	err := client.DeleteContact(context.Background(), "tok", "missing")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.Status)
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/admin/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"invalid credentials"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "issued-token",
			"admin": models.Admin{ID: "a1", Email: body["email"]},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)

	result, err := client.Login(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", result.Token)
	assert.Equal(t, "admin@example.com", result.Admin.Email)

	_, err = client.Login(context.Background(), "admin@example.com", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_ActivityFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/activity", r.URL.Path)
		old := "Pending"
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []models.ActivityItem{
				{ID: "ev1", EntityType: "contact", EntityID: "c1", OldStatus: &old, NewStatus: "Lead", UpdatedAt: time.Now().UTC()},
			},
			"count": 1,
			"total": 1,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	res, err := client.ListActivity(context.Background(), "tok", models.FilterParams{Limit: 20})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Lead", res.Items[0].NewStatus)
	require.NotNil(t, res.Items[0].OldStatus)
}

func TestClient_ContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	client := NewClient(srv.URL, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ListContacts(ctx, "tok", models.FilterParams{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackendUnavailable) || errors.Is(err, context.DeadlineExceeded))
}
