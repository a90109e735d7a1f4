package handler

import (
	"encoding/json"
	"net/http"

	"go-content-retention/internal/model"
	"go-content-retention/internal/service"
	"go-content-retention/pkg/apierror"
)

type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, settings, nil)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.SettingsUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	settings, err := h.settings.Set(r.Context(), payload, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, settings, nil)
}
