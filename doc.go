// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Party Council API server.

Party Council runs the group decisions of a role-playing party: members
propose and vote on a party motto, morale tracks how much of the party is
taking part, and an assessment questionnaire turns into character sheets.

# Starting the Server

The server reads an optional .env file, then environment variables, then
CLI flags:

	DATABASE_URL=party.db JWT_SECRET=... ADMIN_USER_ID=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - JWT_SECRET (-jwt-secret): HMAC secret for bearer session tokens
  - ADMIN_USER_ID (-admin-user): the one user allowed to change morale thresholds

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - LOG_LEVEL (-log-level), LOG_FILE (-log-file): logging; the file rotates
  - PEER_SCALE, PEER_CLAMP: peer adjustment for derived stats (default: 5, 5)

# Architecture

  - handlers: HTTP request handlers (motto, morale, assessment)
  - router: Route definitions using Go 1.22+ routing
  - middleware: sessions, CORS, logging, JSON helpers
  - service: party operations over a storage interface
  - consensus, morale, stats: pure decision logic
  - models: Request/response and domain types
  - auth: Session tokens and id generation
  - db: Schema and storage
  - cliparse: Configuration parsing
  - logging: slog setup with file rotation

See package documentation for each component.
*/
package main
