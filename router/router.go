// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/party-council/cliparse"
	"github.com/danielhkuo/party-council/handlers"
	"github.com/danielhkuo/party-council/middleware"
	"github.com/danielhkuo/party-council/service"
)

func NewRouter(svc *service.Service, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	mottoHandler := handlers.NewMottoHandler(svc)
	moraleHandler := handlers.NewMoraleHandler(svc)
	assessmentHandler := handlers.NewAssessmentHandler(svc)

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireUser(cfg.JWTSecret)(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Motto consensus
	mux.HandleFunc("GET /parties/{code}", authed(mottoHandler.GetParty))
	mux.HandleFunc("POST /parties/{code}/proposals", authed(mottoHandler.Propose))
	mux.HandleFunc("POST /parties/{code}/votes", authed(mottoHandler.Vote))
	mux.HandleFunc("POST /parties/{code}/finalize", authed(mottoHandler.Finalize))

	// Morale
	mux.HandleFunc("GET /parties/{code}/morale", authed(moraleHandler.GetMorale))
	mux.HandleFunc("GET /settings/morale", authed(moraleHandler.GetSettings))
	mux.HandleFunc("PUT /settings/morale", authed(moraleHandler.PutSettings))

	// Assessment and character sheets
	mux.HandleFunc("GET /questions", authed(assessmentHandler.GetQuestions))
	mux.HandleFunc("POST /parties/{code}/answers", authed(assessmentHandler.SubmitAnswers))
	mux.HandleFunc("POST /parties/{code}/assessment/finish", authed(assessmentHandler.FinishAssessment))
	mux.HandleFunc("GET /parties/{code}/sheets", authed(assessmentHandler.GetSheets))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("party-council API v1"))
	})

	return mux
}
