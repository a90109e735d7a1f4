package handler

import (
	"net/http"
	"strconv"
	"strings"

	"go-content-retention/internal/model"
	"go-content-retention/internal/service"
	"go-content-retention/pkg/apierror"
)

type LogHandler struct {
	log *service.DeletionLogService
}

func NewLogHandler(log *service.DeletionLogService) *LogHandler {
	return &LogHandler{log: log}
}

// List returns the deletion log, optionally limited to the last ?days= days,
// with pending entries annotated with their current quarantine location.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	var entries []model.LogEntry
	var err error

	rawDays := strings.TrimSpace(r.URL.Query().Get("days"))
	if rawDays != "" {
		days, convErr := strconv.Atoi(rawDays)
		if convErr != nil || days < 1 {
			writeError(w, apierror.New("BAD_REQUEST", "days must be a positive integer", rawDays, http.StatusBadRequest))
			return
		}
		entries, err = h.log.GetEntriesForDisplay(r.Context(), days)
	} else {
		entries, err = h.log.GetLog(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}

	entries = h.log.EnrichCurrentPaths(r.Context(), entries)
	writeSuccess(w, http.StatusOK, entries, &model.Meta{Total: len(entries)})
}

// Pending returns all entries currently awaiting sweep or withdrawal.
func (h *LogHandler) Pending(w http.ResponseWriter, r *http.Request) {
	entries, err := h.log.GetEntriesByStatus(r.Context(), model.StatusPending)
	if err != nil {
		writeError(w, err)
		return
	}

	entries = h.log.EnrichCurrentPaths(r.Context(), entries)
	writeSuccess(w, http.StatusOK, entries, &model.Meta{Total: len(entries)})
}
