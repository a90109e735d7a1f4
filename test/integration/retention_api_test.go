//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"go-content-retention/internal/content"
	"go-content-retention/internal/model"
)

func createDocument(t *testing.T, env *testEnv, id string, title string) content.Node {
	t.Helper()

	root, err := env.contents.Root(context.Background())
	require.NoError(t, err)

	node, err := env.contents.Create(context.Background(), root.UID, content.Node{
		ID:         id,
		Title:      title,
		PortalType: "Document",
	})
	require.NoError(t, err)
	return node
}

func TestDeleteMovesToQuarantineAndLogsPending(t *testing.T) {
	t.Parallel()

	env, _, editorToken := newTestServer(t)
	doc := createDocument(t, env, "annual-report", "Annual Report")

	root, err := env.contents.Root(context.Background())
	require.NoError(t, err)

	body, err := json.Marshal(model.DeleteRequest{IDs: []string{"annual-report"}, MoveToQuarantine: true})
	require.NoError(t, err)

	resp := doAuthJSONRequest(t, http.MethodDelete, env.server.URL+"/api/v1/content/"+root.UID, body, editorToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Success bool                `json:"success"`
		Data    model.DeleteOutcome `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.True(t, parsed.Success)
	require.Equal(t, []string{"annual-report"}, parsed.Data.Moved)
	require.Empty(t, parsed.Data.Deleted)
	require.Empty(t, parsed.Data.Failed)

	// The object itself survived, parked under quarantine.
	moved, err := env.contents.GetByUID(context.Background(), doc.UID)
	require.NoError(t, err)
	path, err := env.contents.Path(context.Background(), moved.UID)
	require.NoError(t, err)
	require.Equal(t, "/site/marked-for-deletion/annual-report", path)

	entry, err := env.log.GetPendingEntryByUID(context.Background(), doc.UID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, "/site/annual-report", entry.OriginalPath)
	require.Equal(t, "editor-1", entry.UserID)
}

func TestWithdrawRestoresOriginalLocation(t *testing.T) {
	t.Parallel()

	env, _, editorToken := newTestServer(t)
	doc := createDocument(t, env, "policy", "Policy")

	root, err := env.contents.Root(context.Background())
	require.NoError(t, err)

	body, err := json.Marshal(model.DeleteRequest{IDs: []string{"policy"}, MoveToQuarantine: true})
	require.NoError(t, err)
	resp := doAuthJSONRequest(t, http.MethodDelete, env.server.URL+"/api/v1/content/"+root.UID, body, editorToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doAuthJSONRequest(t, http.MethodPost, env.server.URL+"/api/v1/deletions/"+doc.UID+"/withdraw", nil, editorToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data model.WithdrawResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.Equal(t, "/site/policy", parsed.Data.RestoredPath)

	path, err := env.contents.Path(context.Background(), doc.UID)
	require.NoError(t, err)
	require.Equal(t, "/site/policy", path)

	// Terminal state: a second withdraw finds no pending entry.
	resp = doAuthJSONRequest(t, http.MethodPost, env.server.URL+"/api/v1/deletions/"+doc.UID+"/withdraw", nil, editorToken)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettingsRequireAdminRole(t *testing.T) {
	t.Parallel()

	env, adminToken, editorToken := newTestServer(t)

	resp := doAuthJSONRequest(t, http.MethodGet, env.server.URL+"/api/v1/settings", nil, editorToken)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doAuthJSONRequest(t, http.MethodGet, env.server.URL+"/api/v1/settings", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data model.Settings `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.True(t, parsed.Data.MarkedDeletionEnabled)
	require.Equal(t, 30, parsed.Data.RetentionDays)
	require.Equal(t, 90, parsed.Data.DisplayDays)
}

func TestSweepEndpointRequiresAdmin(t *testing.T) {
	t.Parallel()

	env, adminToken, editorToken := newTestServer(t)

	resp := doAuthJSONRequest(t, http.MethodPost, env.server.URL+"/api/v1/sweep/run", nil, editorToken)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doAuthJSONRequest(t, http.MethodPost, env.server.URL+"/api/v1/sweep/run", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data model.SweepResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.Equal(t, 0, parsed.Data.DeletedCount)
}

func TestSecurityHeadersOnResponses(t *testing.T) {
	t.Parallel()

	env, adminToken, _ := newTestServer(t)

	resp := doAuthJSONRequest(t, http.MethodGet, env.server.URL+"/api/v1/deletions/log", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	require.Equal(t, "no-referrer", resp.Header.Get("Referrer-Policy"))
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	t.Parallel()

	env, _, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/deletions/log", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
