// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/party-council/middleware"
	"github.com/danielhkuo/party-council/models"
	"github.com/danielhkuo/party-council/morale"
	"github.com/danielhkuo/party-council/service"
)

type MoraleHandler struct {
	svc *service.Service
}

func NewMoraleHandler(svc *service.Service) *MoraleHandler {
	return &MoraleHandler{svc: svc}
}

// GetMorale handles GET /parties/{code}/morale
func (h *MoraleHandler) GetMorale(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Morale(r.Context(), middleware.UserID(r.Context()), r.PathValue("code"))
	if err != nil {
		writeError(w, "morale", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetSettings handles GET /settings/morale
func (h *MoraleHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, settingsResponse(h.svc.MoraleSettings(r.Context())))
}

// PutSettings handles PUT /settings/morale
func (h *MoraleHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RequireAdmin(middleware.UserID(r.Context())); err != nil {
		writeError(w, "set_morale_settings", err)
		return
	}

	var req models.MoraleSettingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var missing []string
	if req.High == nil {
		missing = append(missing, "high is required")
	}
	if req.Low == nil {
		missing = append(missing, "low is required")
	}
	if req.Hysteresis == nil {
		missing = append(missing, "hysteresis is required")
	}
	if len(missing) > 0 {
		middleware.ErrorDetails(w, http.StatusBadRequest, "Invalid morale settings", missing)
		return
	}

	saved, err := h.svc.SetMoraleSettings(r.Context(), middleware.UserID(r.Context()), morale.Settings{
		High:       *req.High,
		Low:        *req.Low,
		Hysteresis: *req.Hysteresis,
	})
	if err != nil {
		writeError(w, "set_morale_settings", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, settingsResponse(saved))
}

func settingsResponse(s morale.Settings) models.MoraleSettingsResponse {
	return models.MoraleSettingsResponse{High: s.High, Low: s.Low, Hysteresis: s.Hysteresis}
}
