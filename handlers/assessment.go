// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/party-council/middleware"
	"github.com/danielhkuo/party-council/models"
	"github.com/danielhkuo/party-council/service"
)

type AssessmentHandler struct {
	svc *service.Service
}

func NewAssessmentHandler(svc *service.Service) *AssessmentHandler {
	return &AssessmentHandler{svc: svc}
}

// GetQuestions handles GET /questions
func (h *AssessmentHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.svc.Questions(r.Context())
	if err != nil {
		writeError(w, "questions", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.QuestionsResponse{Questions: qs})
}

// SubmitAnswers handles POST /parties/{code}/answers
func (h *AssessmentHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAnswersRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Answers) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "answers are required")
		return
	}

	n, err := h.svc.SubmitAnswers(r.Context(), middleware.UserID(r.Context()), r.PathValue("code"), req.Answers)
	if err != nil {
		writeError(w, "submit_answers", err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.SubmitAnswersResponse{Accepted: n})
}

// FinishAssessment handles POST /parties/{code}/assessment/finish
func (h *AssessmentHandler) FinishAssessment(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.FinishAssessment(r.Context(), middleware.UserID(r.Context()), r.PathValue("code"))
	if err != nil {
		writeError(w, "finish_assessment", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetSheets handles GET /parties/{code}/sheets
func (h *AssessmentHandler) GetSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.svc.Sheets(r.Context(), middleware.UserID(r.Context()), r.PathValue("code"))
	if err != nil {
		writeError(w, "sheets", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SheetsResponse{Sheets: sheets})
}
