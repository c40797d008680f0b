// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/party-council/auth"
	"github.com/danielhkuo/party-council/cliparse"
	"github.com/danielhkuo/party-council/db"
	"github.com/danielhkuo/party-council/models"
)

// TestDBURL is an in-memory SQLite database. Each SetupTestDB call gets a fresh one.
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh test database with the full schema and the
// default question catalog. It is closed when the test ends.
func SetupTestDB(t *testing.T) *db.Store {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	store := db.NewStore(conn, db.DialectSQLite)
	if err := store.SeedQuestions(context.Background()); err != nil {
		t.Fatalf("Failed to seed questions: %v", err)
	}
	return store
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  TestDBURL,
		DatabaseType: db.DialectSQLite,
		JWTSecret:    "test-jwt-secret",
		AdminUserID:  "admin-user",
		LogLevel:     "error",
		PeerScale:    5,
		PeerClamp:    5,
	}
}

// CreateTestParty inserts a party with an unset motto and returns it
func CreateTestParty(t *testing.T, store *db.Store, name string) models.Party {
	t.Helper()

	partyID := uuid.NewString()
	p := models.Party{
		ID:          partyID,
		JoinCode:    joinCode(partyID),
		Name:        name,
		MoraleLevel: models.MoraleNeutral,
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.CreateParty(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test party: %v", err)
	}
	return p
}

// joinCode derives a short code from the party id
func joinCode(partyID string) string {
	return strings.ToUpper(strings.ReplaceAll(partyID, "-", "")[:8])
}

// AddTestMember adds a member for userID. An empty userID creates an NPC.
func AddTestMember(t *testing.T, store *db.Store, partyID, userID string, leader bool) models.Member {
	t.Helper()

	memberID := uuid.NewString()
	m := models.Member{
		ID:               memberID,
		PartyID:          partyID,
		UserID:           userID,
		DisplayName:      userID,
		IsNPC:            userID == "",
		IsLeader:         leader,
		AssessmentStatus: models.AssessmentNotStarted,
	}
	if m.IsNPC {
		m.DisplayName = "Hireling"
	}
	if err := store.AddMember(context.Background(), m); err != nil {
		t.Fatalf("Failed to add test member: %v", err)
	}
	// Roster order follows created_at
	time.Sleep(time.Millisecond)
	return m
}

// AddTestProposal inserts an active proposal created at the given time
func AddTestProposal(t *testing.T, store *db.Store, partyID, memberID, text string, createdAt time.Time) models.Proposal {
	t.Helper()

	proposalID := uuid.NewString()
	p := models.Proposal{
		ID:        proposalID,
		PartyID:   partyID,
		MemberID:  memberID,
		Text:      text,
		Active:    true,
		CreatedAt: createdAt.UTC(),
	}
	if err := store.CreateProposal(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test proposal: %v", err)
	}
	return p
}

// CastTestVote stores a vote directly, bypassing the auto-finalize check
func CastTestVote(t *testing.T, store *db.Store, partyID, proposalID, voterID string) {
	t.Helper()

	voteID := uuid.NewString()
	applied, err := store.CastVote(context.Background(), models.Vote{
		ID:         voteID,
		PartyID:    partyID,
		ProposalID: proposalID,
		VoterID:    voterID,
	})
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
	if !applied {
		t.Fatalf("Test vote on %s was not applied", proposalID)
	}
}

// AuthHeaders returns a bearer token header for userID
func AuthHeaders(t *testing.T, cfg cliparse.Config, userID string) map[string]string {
	t.Helper()

	token, err := auth.IssueSessionToken(cfg.JWTSecret, userID, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue session token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
