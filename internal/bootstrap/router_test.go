package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/natah-genesis/portfolio-api/config"
	"github.com/natah-genesis/portfolio-api/internal/projects/service"
)

func newTestRouter(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := config.Defaults()
	cfg.Store.DataFile = filepath.Join(t.TempDir(), "projects.json")
	cfg.Admin.APIKey = "k"
	if mutate != nil {
		mutate(cfg)
	}

	st, err := OpenStore(context.Background(), cfg.Store)
	require.NoError(t, err)

	return BuildRouter(RouterDeps{
		Config:   cfg,
		Logger:   zap.NewNop(),
		Projects: service.NewProjectService(st, nil, nil),
		Probe:    st.Probe,
	})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, func(c *config.Config) {
		c.Cloudinary.CloudName = "demo"
		c.Cloudinary.APISecret = "never-shown"
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "never-shown")

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "development", body["env"])
	assert.Equal(t, false, body["publicAdmin"])
	assert.Equal(t, map[string]any{
		"cloud_name_set": true,
		"api_key_set":    false,
		"api_secret_set": true,
	}, body["cloudinary"])
	assert.Equal(t, map[string]any{"driver": "file", "status": "up"}, body["store"])
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	r := newTestRouter(t, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not Found","path":"/api/nope"}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/about", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", w.Body.String())
}

func TestRouter_PanicsBecome500(t *testing.T) {
	r := newTestRouter(t, nil)
	r.GET("/api/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"kaboom"}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server error", w.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	r := newTestRouter(t, func(c *config.Config) { c.Server.ClientOrigin = "https://natah.example" })

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Origin", "https://natah.example")
	w := serve(r, req)
	assert.Equal(t, "https://natah.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_SecurityHeaders(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, path := range []string{"/api/health", "/api/missing", "/elsewhere"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"), path)
		assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"), path)
		assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"), path)
		assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"), path)
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"), path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := serve(r, req)
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=15552000")
}

func TestRouter_BodyLimit(t *testing.T) {
	r := newTestRouter(t, func(c *config.Config) {
		c.Admin.Public = true
		c.Server.MaxBodyBytes = 64
	})

	big := `{"title":"` + strings.Repeat("x", 200) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Sign is refused without the key, then a project is created, published and listed.
func TestRouter_AdminFlow(t *testing.T) {
	r := newTestRouter(t, func(c *config.Config) {
		c.Cloudinary = config.CloudinaryConfig{CloudName: "demo", APIKey: "1", APISecret: "s"}
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/cloudinary/sign", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/cloudinary/sign", strings.NewReader(`{"folder":"projects"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-admin-key", "k")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"title":"Demo","src":"https://x/y.mp4"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-admin-key", "k")
	w = serve(r, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["id"].(string)

	req = httptest.NewRequest(http.MethodPut, "/api/projects/"+id, strings.NewReader(`{"is_published":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-admin-key", "k")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, true, items[0]["is_published"])

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/api/projects/:id"`)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), config.StoreConfig{Driver: "mongo"})
	assert.Error(t, err)
}
