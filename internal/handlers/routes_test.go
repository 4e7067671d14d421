package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gdg-garage/convention-booking/internal/config"
	"github.com/gdg-garage/convention-booking/internal/graph"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/tidwall/gjson"
)

func (env *testEnv) router(t *testing.T) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, &config.Config{}, Handlers{
		Store:        env.store,
		Auth:         env.authHandler,
		Events:       env.events,
		Bookings:     env.bookings,
		Transactions: env.transactions,
		APIKeys:      NewAPIKeyHandler(env.db, env.authHandler),
		GraphQL:      &relay.Handler{Schema: graph.NewSchema(graph.NewResolver(env.store, env.files, nil))},
		Media:        http.FileServer(http.Dir(env.files.Root())),
	})
	return r
}

func TestHealth(t *testing.T) {
	env := setupEnv(t)
	rec := httptest.NewRecorder()
	env.router(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("expected 200 OK, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAdminRoutesWithAPIKey(t *testing.T) {
	env := setupEnv(t)
	env.createEvent(t, "Summer Camp")
	key := models.APIKey{UserID: env.admin.ID, Key: "cb_testkey", Name: "script"}
	env.db.Create(&key)
	r := env.router(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/events", nil)
	req.Header.Set("X-API-KEY", key.Key)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := gjson.Get(rec.Body.String(), "0.slug").String(); got != "summer-camp" {
		t.Errorf("expected slug 'summer-camp', got '%s'", got)
	}

	body := `{"name":"Winter Cup","begin_date":"2030-12-01","end_date":"2030-12-02"}`
	req = httptest.NewRequest(http.MethodPost, "/admin/events", strings.NewReader(body))
	req.Header.Set("X-API-KEY", key.Key)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	expired := time.Now().Add(-time.Hour)
	old := models.APIKey{UserID: env.admin.ID, Key: "cb_expired", Name: "old", ExpiresAt: &expired}
	env.db.Create(&old)
	req = httptest.NewRequest(http.MethodGet, "/admin/events", nil)
	req.Header.Set("X-API-KEY", old.Key)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for an expired key, got %d", rec.Code)
	}
}

func TestGraphQLRoute(t *testing.T) {
	env := setupEnv(t)
	env.createEvent(t, "Summer Camp")

	body := `{"query":"{ allEvents { totalCount edges { node { name } } } }"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := gjson.Get(rec.Body.String(), "data.allEvents.totalCount").Int(); got != 1 {
		t.Errorf("expected 1 event, got %d: %s", got, rec.Body.String())
	}
}
