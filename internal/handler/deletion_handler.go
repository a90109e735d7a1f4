package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-content-retention/internal/model"
	"go-content-retention/internal/service"
	"go-content-retention/pkg/apierror"
)

type DeletionHandler struct {
	interceptor *service.InterceptorService
	restore     *service.RestoreService
	sweep       *service.SweepService
}

func NewDeletionHandler(interceptor *service.InterceptorService, restore *service.RestoreService, sweep *service.SweepService) *DeletionHandler {
	return &DeletionHandler{interceptor: interceptor, restore: restore, sweep: sweep}
}

// Delete intercepts a removal request for children of the addressed
// container. The move_to_quarantine flag lives in the request body and is
// consumed once; it is never carried over to later requests.
func (h *DeletionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	containerUID := strings.TrimSpace(chi.URLParam(r, "uid"))
	if containerUID == "" {
		writeError(w, apierror.New("BAD_REQUEST", "container uid is required", "", http.StatusBadRequest))
		return
	}

	var payload model.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	outcome, err := h.interceptor.Delete(r.Context(), containerUID, payload.IDs, payload.MoveToQuarantine, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, outcome, nil)
}

func (h *DeletionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(chi.URLParam(r, "uid"))

	result, err := h.restore.Withdraw(r.Context(), uid, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *DeletionHandler) PermanentDelete(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(chi.URLParam(r, "uid"))

	entry, err := h.restore.PermanentDelete(r.Context(), uid, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entry, nil)
}

func (h *DeletionHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	count, err := h.sweep.Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.SweepResult{DeletedCount: count}, nil)
}
