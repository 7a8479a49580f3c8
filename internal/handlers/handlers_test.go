package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/usercache/internal/app"
	"github.com/charlesng35/usercache/internal/database"
	"github.com/charlesng35/usercache/internal/monitoring"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func serve(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestHealth(t *testing.T) {
	r := newRouter()
	r.GET("/health", Health())

	w := serve(r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	manager := monitoring.NewHealthManager()
	state := monitoring.StatusUp
	manager.RegisterReadiness(monitoring.NewCheck("database", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: state}
	}))

	r := newRouter()
	r.GET("/health/ready", Readiness(manager))

	w := serve(r, http.MethodGet, "/health/ready")
	require.Equal(t, http.StatusOK, w.Code)

	state = monitoring.StatusDown
	w = serve(r, http.MethodGet, "/health/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var report monitoring.HealthReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.False(t, report.Success)
	require.Equal(t, "database", report.Checks[0].Component)
}

type stubLister struct {
	rows []database.Row
	err  error
}

func (s stubLister) List(context.Context) ([]database.Row, error) {
	return s.rows, s.err
}

func TestUserHandlerList(t *testing.T) {
	h, err := NewUserHandler(stubLister{rows: []database.Row{{"id": 1, "name": "Ada"}}})
	require.NoError(t, err)

	r := newRouter()
	r.GET("/users", h.List)

	w := serve(r, http.MethodGet, "/users")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[{"id":1,"name":"Ada"}]`, w.Body.String())
}

func TestUserHandlerListEmpty(t *testing.T) {
	h, err := NewUserHandler(stubLister{})
	require.NoError(t, err)

	r := newRouter()
	r.GET("/users", h.List)

	w := serve(r, http.MethodGet, "/users")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]", w.Body.String())
}

func TestUserHandlerListError(t *testing.T) {
	h, err := NewUserHandler(stubLister{err: errors.New("pq: relation \"users\" does not exist")})
	require.NoError(t, err)

	r := newRouter()
	r.GET("/users", h.List)

	w := serve(r, http.MethodGet, "/users")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	require.NotContains(t, w.Body.String(), "relation")
}

func TestNewUserHandlerRequiresLister(t *testing.T) {
	_, err := NewUserHandler(nil)
	require.Error(t, err)
}

func TestLandingHandler(t *testing.T) {
	dir := t.TempDir()
	h := NewLandingHandler(dir)

	r := newRouter()
	r.GET("/", h.Index)

	w := serve(r, http.MethodGet, "/")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Internal Server Error", w.Body.String())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>v1</h1>"), 0o644))
	w = serve(r, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "<h1>v1</h1>", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>v2</h1>"), 0o644))
	w = serve(r, http.MethodGet, "/")
	require.Equal(t, "<h1>v2</h1>", w.Body.String())
}

func TestStaticHandler(t *testing.T) {
	files := fstest.MapFS{
		"styles.css":      {Data: []byte("body{}"), ModTime: time.Unix(1700000000, 0)},
		"docs/index.html": {Data: []byte("<p>docs</p>")},
		"empty/.keep":     {Data: []byte{}},
	}
	h := NewStaticHandlerFS(files)

	r := newRouter()
	r.NoRoute(h.Serve)

	w := serve(r, http.MethodGet, "/styles.css")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "body{}", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "text/css")

	w = serve(r, http.MethodGet, "/docs/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "<p>docs</p>", w.Body.String())

	w = serve(r, http.MethodGet, "/empty")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodGet, "/../../etc/passwd")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodPost, "/styles.css")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"Not found"}`, w.Body.String())

	w = serve(r, http.MethodHead, "/styles.css")
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Body.String())
}

func TestStaticHandlerFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("User-agent: *\n"), 0o644))
	h := NewStaticHandler(dir)

	r := newRouter()
	r.NoRoute(h.Serve)

	w := serve(r, http.MethodGet, "/robots.txt")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "User-agent: *\n", w.Body.String())
}

func TestMonitoringSummary(t *testing.T) {
	mod, err := monitoring.NewModule(monitoring.Options{DisableGoCollector: true, DisableProcessCollector: true})
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Cache.Driver = "memory"
	cfg.Cache.UsersTTL = time.Minute
	cfg.Monitoring.Prometheus.Enabled = true

	h := NewMonitoringHandler(mod, cfg)
	require.NotNil(t, h)

	r := newRouter()
	r.GET("/health/summary", h.Summary)

	w := serve(r, http.MethodGet, "/health/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "memory", payload["cache"].(map[string]any)["driver"])
	require.Equal(t, "/metrics", payload["prometheus"].(map[string]any)["endpoint"])

	require.Nil(t, NewMonitoringHandler(mod, &app.Config{}))
}
