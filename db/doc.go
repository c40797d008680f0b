// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation and persistence.

# Connections

Open accepts "sqlite" (modernc.org/sqlite, pure Go) or "postgres"
(github.com/lib/pq):

	conn, err := db.Open(db.DialectSQLite, "file:council.db")
	if err != nil {
		log.Fatal(err)
	}
	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

SQLite connections are limited to one open connection. Store methods never
hold a transaction while issuing a query outside of it.

# Tables

  - party: join code, motto (NULL until decided) and cached morale
  - party_member: roster rows, NPCs have no user_id
  - motto_proposal: proposals with active and is_finalized flags
  - motto_vote: one row per voter (voter_id is UNIQUE)
  - question: assessment catalog
  - answer: append-only answer log
  - character_sheet: derived ability scores, class and experience
  - setting: key/value runtime settings

# Relationships

	party 1──* party_member
	party 1──* motto_proposal 1──* motto_vote
	party_member 1──0..1 motto_vote
	party 1──* answer *──1 question
	party_member 1──0..1 character_sheet

All foreign keys use ON DELETE CASCADE.

# Conditional Writes

The finalize sequence relies on guarded updates so repeated or racing
callers cannot produce two mottos:

  - SetMotto only writes while party.motto IS NULL
  - MarkFinalized only writes while no proposal of the party is finalized,
    backed by the partial unique index uq_motto_proposal_finalized
  - CastVote only lands on a proposal that is active and not finalized

Each reports whether it applied.
*/
package db
