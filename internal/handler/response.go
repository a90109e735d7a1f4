package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-content-retention/internal/model"
	"go-content-retention/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrNodeNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Content node not found"
	} else if errors.Is(err, model.ErrParentNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Parent container not found"
	} else if errors.Is(err, model.ErrQuarantineMissing) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Quarantine container not found"
	} else if errors.Is(err, model.ErrPendingEntryNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "No pending deletion log entry"
	} else if errors.Is(err, model.ErrNodeExists) {
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Node id already exists in container"
	} else if errors.Is(err, model.ErrPendingDeletionsExist) {
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Pending deletions exist"
	} else if errors.Is(err, model.ErrInvalidOriginalPath) || errors.Is(err, model.ErrInvalidLogEntry) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrRootImmutable) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Root node cannot be moved or deleted"
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
