package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-content-retention/internal/model"
	"go-content-retention/pkg/apierror"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()

	var parsed model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	require.False(t, parsed.Success)
	require.NotNil(t, parsed.Error)
	return parsed
}

func TestWriteErrorMapsAPIError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(rec, apierror.New("CONFLICT", "already exists", "doc", http.StatusConflict))

	assert.Equal(t, http.StatusConflict, rec.Code)
	parsed := decodeErrorBody(t, rec)
	assert.Equal(t, "CONFLICT", parsed.Error.Code)
	assert.Equal(t, "already exists", parsed.Error.Message)
	assert.Equal(t, "doc", parsed.Error.Details)
}

func TestWriteErrorMapsSentinels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrNodeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{model.ErrParentNotFound, http.StatusNotFound, "NOT_FOUND"},
		{model.ErrQuarantineMissing, http.StatusNotFound, "NOT_FOUND"},
		{model.ErrPendingEntryNotFound, http.StatusNotFound, "NOT_FOUND"},
		{model.ErrNodeExists, http.StatusConflict, "CONFLICT"},
		{model.ErrPendingDeletionsExist, http.StatusConflict, "CONFLICT"},
		{model.ErrInvalidOriginalPath, http.StatusBadRequest, "BAD_REQUEST"},
		{model.ErrInvalidLogEntry, http.StatusBadRequest, "BAD_REQUEST"},
		{model.ErrRootImmutable, http.StatusBadRequest, "BAD_REQUEST"},
		{model.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{model.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
		parsed := decodeErrorBody(t, rec)
		assert.Equal(t, tc.code, parsed.Error.Code, "error %v", tc.err)
	}
}

func TestWriteErrorWrappedSentinel(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(rec, errors.Join(errors.New("context"), model.ErrNodeNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteErrorUnknownFallsBackToInternal(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(rec, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	parsed := decodeErrorBody(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", parsed.Error.Code)
}

func TestWriteSuccessEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeSuccess(rec, http.StatusOK, map[string]int{"deleted_count": 3}, &model.Meta{Total: 3})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var parsed model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	assert.True(t, parsed.Success)
	require.NotNil(t, parsed.Meta)
	assert.Equal(t, 3, parsed.Meta.Total)
}
