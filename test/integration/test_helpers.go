//go:build integration

package integration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-content-retention/internal/config"
	"go-content-retention/internal/content"
	"go-content-retention/internal/event"
	"go-content-retention/internal/handler"
	"go-content-retention/internal/middleware"
	"go-content-retention/internal/registry"
	"go-content-retention/internal/router"
	"go-content-retention/internal/service"
)

type testEnv struct {
	server   *httptest.Server
	contents *content.Memory
	store    *registry.Memory
	log      *service.DeletionLogService
	settings *service.SettingsService
}

// newTestServer wires the full API stack against in-memory backends and
// returns tokens for an admin and a plain editor.
func newTestServer(t *testing.T) (*testEnv, string, string) {
	t.Helper()

	contents := content.NewMemory("site")
	store := registry.NewMemory()
	bus := event.NewBus()

	logService := service.NewDeletionLogService(store, contents, 30, 90)
	interceptorService := service.NewInterceptorService(contents, logService, store, bus, "marked-for-deletion")
	restoreService := service.NewRestoreService(contents, logService, bus)
	sweepService := service.NewSweepService(contents, logService, bus, "marked-for-deletion")
	settingsService := service.NewSettingsService(store, contents, logService, bus, "marked-for-deletion")
	require.NoError(t, settingsService.EnsureQuarantineContainer(context.Background()))

	tokenService := service.NewTokenService("test-secret", 15*time.Minute)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	deletionHandler := handler.NewDeletionHandler(interceptorService, restoreService, sweepService)
	logHandler := handler.NewLogHandler(logService)
	settingsHandler := handler.NewSettingsHandler(settingsService)

	cfg := &config.Config{
		ServerPort:        "8080",
		RequestTimeout:    30 * time.Second,
		JWTSecret:         "test-secret",
		JWTAccessTTL:      15 * time.Minute,
		CORSOrigins:       []string{"*"},
		RateLimitRPM:      1000,
		SweepRateLimitRPM: 1000,
		SiteRootID:        "site",
		QuarantineID:      "marked-for-deletion",
		RetentionDays:     30,
		DisplayDays:       90,
	}

	server := httptest.NewServer(router.New(cfg, authMiddleware, deletionHandler, logHandler, settingsHandler))
	t.Cleanup(server.Close)

	adminToken, err := tokenService.IssueToken("admin-1", "admin", "admin")
	require.NoError(t, err)
	editorToken, err := tokenService.IssueToken("editor-1", "editor", "editor")
	require.NoError(t, err)

	return &testEnv{
		server:   server,
		contents: contents,
		store:    store,
		log:      logService,
		settings: settingsService,
	}, adminToken, editorToken
}

func doAuthJSONRequest(t *testing.T, method string, url string, body []byte, accessToken string) *http.Response {
	t.Helper()

	var payloadReader *bytes.Reader
	if body == nil {
		payloadReader = bytes.NewReader([]byte{})
	} else {
		payloadReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, url, payloadReader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
