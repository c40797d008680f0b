// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/party-council/cliparse"
	"github.com/danielhkuo/party-council/db"
	"github.com/danielhkuo/party-council/middleware"
	"github.com/danielhkuo/party-council/models"
	"github.com/danielhkuo/party-council/service"
	"github.com/danielhkuo/party-council/testutil"
)

type testEnv struct {
	store *db.Store
	cfg   cliparse.Config
	svc   *service.Service
	party models.Party
	// members in roster order; the first one leads
	members []models.Member
}

// newTestEnv creates a party with one member per user id. An empty id adds an NPC.
func newTestEnv(t *testing.T, userIDs ...string) *testEnv {
	t.Helper()

	store := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	env := &testEnv{
		store: store,
		cfg:   cfg,
		svc:   service.New(store, service.Options{AdminUserID: cfg.AdminUserID}),
		party: testutil.CreateTestParty(t, store, "The Wandering Spoons"),
	}
	for i, id := range userIDs {
		env.members = append(env.members, testutil.AddTestMember(t, store, env.party.ID, id, i == 0))
	}
	return env
}

// serve runs h for the env's party behind RequireUser. An empty userID sends no token.
func (e *testEnv) serve(t *testing.T, h http.HandlerFunc, method string, body interface{}, userID string) *httptest.ResponseRecorder {
	t.Helper()
	return e.serveAt(t, h, method, e.party.JoinCode, body, userID)
}

func (e *testEnv) serveAt(t *testing.T, h http.HandlerFunc, method, code string, body interface{}, userID string) *httptest.ResponseRecorder {
	t.Helper()

	var headers map[string]string
	if userID != "" {
		headers = testutil.AuthHeaders(t, e.cfg, userID)
	}
	req := testutil.MakeRequest(method, "/parties/"+code, body, headers)
	req.SetPathValue("code", code)

	w := httptest.NewRecorder()
	middleware.RequireUser(e.cfg.JWTSecret)(h)(w, req)
	return w
}

func (e *testEnv) reloadParty(t *testing.T) models.Party {
	t.Helper()

	p, err := e.store.PartyByID(t.Context(), e.party.ID)
	if err != nil {
		t.Fatalf("Failed to reload party: %v", err)
	}
	return p
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
