// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/party-council/models"
	"github.com/danielhkuo/party-council/service"
	"github.com/danielhkuo/party-council/testutil"
)

func newTestRouter(t *testing.T) *http.ServeMux {
	t.Helper()

	store := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	svc := service.New(store, service.Options{AdminUserID: cfg.AdminUserID})
	return NewRouter(svc, cfg)
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "party-council API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/polls/abc", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestRoutesRequireSession(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/parties/ABC123"},
		{"POST", "/parties/ABC123/proposals"},
		{"POST", "/parties/ABC123/votes"},
		{"POST", "/parties/ABC123/finalize"},
		{"GET", "/parties/ABC123/morale"},
		{"GET", "/settings/morale"},
		{"PUT", "/settings/morale"},
		{"GET", "/questions"},
		{"POST", "/parties/ABC123/answers"},
		{"POST", "/parties/ABC123/assessment/finish"},
		{"GET", "/parties/ABC123/sheets"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			// 401 proves the route matched and the session check ran
			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"GET to votes endpoint", "GET", "/parties/ABC123/votes", http.StatusMethodNotAllowed},
		{"POST to settings endpoint", "POST", "/settings/morale", http.StatusMethodNotAllowed},
		{"DELETE to party", "DELETE", "/parties/ABC123", http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	store := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	svc := service.New(store, service.Options{AdminUserID: cfg.AdminUserID})
	mux := NewRouter(svc, cfg)

	party := testutil.CreateTestParty(t, store, "Routing Party")
	testutil.AddTestMember(t, store, party.ID, "alice", true)

	t.Run("join code extraction", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/parties/"+party.JoinCode, nil, testutil.AuthHeaders(t, cfg, "alice"))
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.PartyStateResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Party.ID != party.ID {
			t.Errorf("Expected party %s, got %s", party.ID, resp.Party.ID)
		}
	})

	t.Run("unknown join code", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/parties/NOPE42", nil, testutil.AuthHeaders(t, cfg, "alice"))
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
