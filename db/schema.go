// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Open connects to the database and verifies the connection.
func Open(dialect, url string) (*sql.DB, error) {
	var dsn string
	switch dialect {
	case DialectPostgres:
		dsn = url
	case DialectSQLite:
		dsn = sqliteDSN(url)
	default:
		return nil, fmt.Errorf("unsupported database type %q", dialect)
	}

	conn, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == DialectSQLite {
		// SQLite has a single writer; one connection also keeps :memory: databases intact.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

func sqliteDSN(url string) string {
	if strings.Contains(url, "_pragma=") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// The schema is valid for both SQLite and PostgreSQL.
const schema = `
-- Parties
CREATE TABLE IF NOT EXISTS party (
    id TEXT PRIMARY KEY,
    join_code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT '',
    motto TEXT,
    morale_score DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (morale_score >= 0 AND morale_score <= 1),
    morale_level TEXT NOT NULL DEFAULT 'neutral' CHECK (morale_level IN ('high', 'neutral', 'low')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Party members (roster is managed elsewhere, NPCs have no user)
CREATE TABLE IF NOT EXISTS party_member (
    id TEXT PRIMARY KEY,
    party_id TEXT NOT NULL REFERENCES party(id) ON DELETE CASCADE,
    user_id TEXT,
    display_name TEXT NOT NULL DEFAULT '',
    is_npc BOOLEAN NOT NULL DEFAULT FALSE,
    is_leader BOOLEAN NOT NULL DEFAULT FALSE,
    assessment_status TEXT NOT NULL DEFAULT 'not_started'
        CHECK (assessment_status IN ('not_started', 'in_progress', 'finished')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (party_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_party_member_party_id ON party_member(party_id);

-- Motto proposals
CREATE TABLE IF NOT EXISTS motto_proposal (
    id TEXT PRIMARY KEY,
    party_id TEXT NOT NULL REFERENCES party(id) ON DELETE CASCADE,
    member_id TEXT NOT NULL REFERENCES party_member(id) ON DELETE CASCADE,
    text TEXT NOT NULL CHECK (text <> ''),
    active BOOLEAN NOT NULL DEFAULT TRUE,
    is_finalized BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_motto_proposal_party_id ON motto_proposal(party_id);

-- At most one finalized proposal per party
CREATE UNIQUE INDEX IF NOT EXISTS uq_motto_proposal_finalized ON motto_proposal(party_id) WHERE is_finalized;

-- Motto votes (one vote per member across all proposals)
CREATE TABLE IF NOT EXISTS motto_vote (
    id TEXT PRIMARY KEY,
    party_id TEXT NOT NULL REFERENCES party(id) ON DELETE CASCADE,
    proposal_id TEXT NOT NULL REFERENCES motto_proposal(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL UNIQUE REFERENCES party_member(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_motto_vote_party_id ON motto_vote(party_id);
CREATE INDEX IF NOT EXISTS idx_motto_vote_proposal_id ON motto_vote(proposal_id);

-- Assessment questions
CREATE TABLE IF NOT EXISTS question (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL CHECK (kind IN ('self', 'peer')),
    ability TEXT CHECK (ability IN ('STR', 'DEX', 'CON', 'INT', 'WIS', 'CHA')),
    prompt TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    CHECK (kind = 'self' OR ability IS NOT NULL)
);

-- Answer log (append-only)
CREATE TABLE IF NOT EXISTS answer (
    id TEXT PRIMARY KEY,
    party_id TEXT NOT NULL REFERENCES party(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL REFERENCES party_member(id) ON DELETE CASCADE,
    subject_id TEXT NOT NULL REFERENCES party_member(id) ON DELETE CASCADE,
    question_id TEXT NOT NULL REFERENCES question(id),
    value TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (voter_id, subject_id, question_id)
);

CREATE INDEX IF NOT EXISTS idx_answer_party_id ON answer(party_id);

-- Derived character sheets
CREATE TABLE IF NOT EXISTS character_sheet (
    member_id TEXT PRIMARY KEY REFERENCES party_member(id) ON DELETE CASCADE,
    party_id TEXT NOT NULL REFERENCES party(id) ON DELETE CASCADE,
    str_score INTEGER NOT NULL,
    dex_score INTEGER NOT NULL,
    con_score INTEGER NOT NULL,
    int_score INTEGER NOT NULL,
    wis_score INTEGER NOT NULL,
    cha_score INTEGER NOT NULL,
    class TEXT NOT NULL,
    experience INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_character_sheet_party_id ON character_sheet(party_id);

-- Key/value settings
CREATE TABLE IF NOT EXISTS setting (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
