package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableplan/tableplan/internal/auth"
	"github.com/tableplan/tableplan/internal/engine"
	"github.com/tableplan/tableplan/internal/plan"
	"github.com/tableplan/tableplan/internal/session"
)

const origin = "http://localhost:5173"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	tokens, err := auth.NewService("test-secret", time.Hour)
	require.NoError(t, err)

	hub := session.NewHub(func() *engine.Engine { return engine.NewEngine(engine.DefaultOptions()) }, 0)
	go hub.Run()
	t.Cleanup(hub.Stop)

	h := plan.NewHandler(plan.NewService(hub, tokens, 1<<20), hub, tokens)
	return newRouter(h, []string{origin, "http://localhost:3000"})
}

func preflight(path, method string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, path, nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", method)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	return req
}

func TestRouterPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/plans", strings.NewReader(`{}`))
	req.Header.Set("Origin", origin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))

	var created plan.Created
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	cases := []struct {
		path   string
		method string
	}{
		{"/plans", http.MethodPost},
		{"/plans/" + created.ID + "/snapshot", http.MethodPut},
		{"/plans/" + created.ID, http.MethodDelete},
		{"/plans/plan_unknown/snapshot", http.MethodGet},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, preflight(c.path, c.method))
		assert.Equal(t, http.StatusNoContent, rec.Code, c.path)
		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"), c.path)
		assert.Equal(t, "Authorization,Content-Type", rec.Header().Get("Access-Control-Allow-Headers"), c.path)
		assert.Equal(t, "Origin", rec.Header().Get("Vary"), c.path)
	}

	req = httptest.NewRequest(http.MethodGet, "/plans/"+created.ID+"/snapshot", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Authorization", "Bearer "+created.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterRejectsForeignOrigin(t *testing.T) {
	router := newTestRouter(t)

	req := preflight("/plans", http.MethodPost)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestOriginPatterns(t *testing.T) {
	assert.Equal(t, []string{"localhost:5173", "app.example"},
		originPatterns([]string{"http://localhost:5173", "app.example"}))
}
