package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ArowuTest/event-showcase-backend/internal/config"
	"github.com/ArowuTest/event-showcase-backend/internal/handlers"
	"github.com/ArowuTest/event-showcase-backend/internal/models"
	"github.com/ArowuTest/event-showcase-backend/internal/repositories/memory"
	"github.com/ArowuTest/event-showcase-backend/internal/services"
	"github.com/ArowuTest/event-showcase-backend/internal/storage"
)

func testConfig(protect bool) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		Store:   config.StoreConfig{Driver: "memory"},
		Storage: config.StorageConfig{Driver: "local", MaxUploadMB: 8},
		Admin:   config.AdminConfig{Password: "open-sesame", ProtectWrites: protect},
		JWT:     config.JWTConfig{Secret: "test-secret", ExpiresIn: 3600},
	}
}

func setupTestServer(t *testing.T, cfg *config.Config) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	dir := t.TempDir()
	blobs, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	authService, err := services.NewAuthService(cfg.Admin, cfg.JWT)
	require.NoError(t, err)
	eventService := services.NewEventService(memory.NewEventRepository(), storage.NewIngestor(blobs, log), log)

	router := SetupRouter(cfg, HandlerDependencies{
		EventHandler: handlers.NewEventHandler(eventService, log, cfg.Storage.MaxUploadMB<<20),
		AuthHandler:  handlers.NewAuthHandler(authService, log),
		Authorizer:   authService,
		UploadDir:    blobs.Dir(),
	}, log)
	return router, dir
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router *gin.Engine) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"open-sesame"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.AdminLoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Token
}

func TestHealth(t *testing.T) {
	router, _ := setupTestServer(t, testConfig(true))
	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestWritesRequireAdminToken(t *testing.T) {
	router, _ := setupTestServer(t, testConfig(true))

	newCreate := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"title":"Hackathon"}`))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	w := serve(router, newCreate())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusOK, w.Code, "reads stay public")

	req := newCreate()
	req.Header.Set("Authorization", "Bearer "+login(t, router))
	w = serve(router, req)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestOpenWrites(t *testing.T) {
	router, _ := setupTestServer(t, testConfig(false))

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"title":"Hackathon"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUploadedCertificateIsServed(t *testing.T) {
	router, dir := setupTestServer(t, testConfig(false))

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"title":"Tech Fest"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)
	require.Equal(t, http.StatusCreated, w.Code)
	var event models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("names", "Alice"))
	part, err := mw.CreateFormFile("certificates", "a.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 certificate"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/events/"+event.ID.Hex()+"/certificates", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = serve(router, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var certs []models.Certificate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &certs))
	require.Len(t, certs, 1)
	assert.Equal(t, "Alice", certs[0].StudentName)

	_, err = os.Stat(filepath.Join(dir, storage.NameFromRef(certs[0].CertURL)))
	require.NoError(t, err)

	w = serve(router, httptest.NewRequest(http.MethodGet, certs[0].CertURL, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4 certificate", w.Body.String())
}

func TestUploadsRedirectToBucket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(false)
	log := zap.NewNop()
	router := SetupRouter(cfg, HandlerDependencies{
		EventHandler: handlers.NewEventHandler(nil, log, 0),
		AuthHandler:  handlers.NewAuthHandler(nil, log),
		UploadURL: func(name string) string {
			return "https://storage.googleapis.com/showcase-assets/uploads/" + name
		},
	}, log)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/uploads/1700000000000-a.png", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://storage.googleapis.com/showcase-assets/uploads/1700000000000-a.png", w.Header().Get("Location"))
}

func TestHealth_StoreUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	router := SetupRouter(testConfig(false), HandlerDependencies{
		EventHandler: handlers.NewEventHandler(nil, log, 0),
		AuthHandler:  handlers.NewAuthHandler(nil, log),
		HealthCheck: func(context.Context) error {
			return errors.New("server selection timeout")
		},
	}, log)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}
