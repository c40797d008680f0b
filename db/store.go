// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/danielhkuo/party-council/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store persists party state. Queries use ? placeholders and are rebound
// for PostgreSQL.
type Store struct {
	db      *sql.DB
	dialect string
}

func NewStore(db *sql.DB, dialect string) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying handle for health checks and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) q(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	return rebind(query)
}

// rebind rewrites ? placeholders to $1, $2, ...
func rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func now() time.Time {
	return time.Now().UTC()
}

// Parties and members

const partyColumns = `id, join_code, name, motto, morale_score, morale_level, created_at`

func scanParty(row interface{ Scan(...any) error }) (models.Party, error) {
	var p models.Party
	var motto sql.NullString
	var level string
	err := row.Scan(&p.ID, &p.JoinCode, &p.Name, &motto, &p.MoraleScore, &level, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Party{}, ErrNotFound
	}
	if err != nil {
		return models.Party{}, err
	}
	if motto.Valid {
		m := motto.String
		p.Motto = &m
	}
	p.MoraleLevel = models.MoraleLevel(level)
	return p, nil
}

func (s *Store) PartyByCode(ctx context.Context, code string) (models.Party, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+partyColumns+` FROM party WHERE join_code = ?`), code)
	return scanParty(row)
}

func (s *Store) PartyByID(ctx context.Context, id string) (models.Party, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+partyColumns+` FROM party WHERE id = ?`), id)
	return scanParty(row)
}

func (s *Store) CreateParty(ctx context.Context, p models.Party) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	level := p.MoraleLevel
	if level == "" {
		level = models.MoraleNeutral
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO party (id, join_code, name, motto, morale_score, morale_level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), p.ID, p.JoinCode, p.Name, p.Motto, p.MoraleScore, string(level), p.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *Store) AddMember(ctx context.Context, m models.Member) error {
	status := m.AssessmentStatus
	if status == "" {
		status = models.AssessmentNotStarted
	}
	var userID sql.NullString
	if m.UserID != "" {
		userID = sql.NullString{String: m.UserID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO party_member (id, party_id, user_id, display_name, is_npc, is_leader, assessment_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), m.ID, m.PartyID, userID, m.DisplayName, m.IsNPC, m.IsLeader, status, now())
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Members returns the roster in join order.
func (s *Store) Members(ctx context.Context, partyID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, party_id, user_id, display_name, is_npc, is_leader, assessment_status
		FROM party_member
		WHERE party_id = ?
		ORDER BY created_at, id
	`), partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		var userID sql.NullString
		if err := rows.Scan(&m.ID, &m.PartyID, &userID, &m.DisplayName, &m.IsNPC, &m.IsLeader, &m.AssessmentStatus); err != nil {
			return nil, err
		}
		m.UserID = userID.String
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) SetAssessmentStatus(ctx context.Context, memberID, status string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE party_member SET assessment_status = ? WHERE id = ?
	`), status, memberID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Proposals and votes

const proposalColumns = `id, party_id, member_id, text, active, is_finalized, created_at`

func scanProposal(row interface{ Scan(...any) error }) (models.Proposal, error) {
	var p models.Proposal
	err := row.Scan(&p.ID, &p.PartyID, &p.MemberID, &p.Text, &p.Active, &p.IsFinalized, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Proposal{}, ErrNotFound
	}
	return p, err
}

func (s *Store) CreateProposal(ctx context.Context, p models.Proposal) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO motto_proposal (id, party_id, member_id, text, active, is_finalized, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), p.ID, p.PartyID, p.MemberID, p.Text, p.Active, p.IsFinalized, p.CreatedAt)
	return err
}

func (s *Store) Proposal(ctx context.Context, id string) (models.Proposal, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+proposalColumns+` FROM motto_proposal WHERE id = ?`), id)
	return scanProposal(row)
}

// Proposals returns every proposal of the party, oldest first.
func (s *Store) Proposals(ctx context.Context, partyID string) ([]models.Proposal, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT `+proposalColumns+`
		FROM motto_proposal
		WHERE party_id = ?
		ORDER BY created_at, id
	`), partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

func (s *Store) Votes(ctx context.Context, partyID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, party_id, proposal_id, voter_id, created_at
		FROM motto_vote
		WHERE party_id = ?
		ORDER BY created_at, id
	`), partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.PartyID, &v.ProposalID, &v.VoterID, &v.CreatedAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// CastVote places or moves the voter's single vote. The write only happens
// while the target proposal is still open; it reports false otherwise.
// The UNIQUE voter_id constraint turns concurrent first votes into a move.
func (s *Store) CastVote(ctx context.Context, v models.Vote) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO motto_vote (id, party_id, proposal_id, voter_id, created_at)
		SELECT ?, ?, ?, ?, CURRENT_TIMESTAMP
		WHERE EXISTS (
			SELECT 1 FROM motto_proposal
			WHERE id = ? AND party_id = ? AND active = TRUE AND is_finalized = FALSE
		)
		ON CONFLICT (voter_id) DO UPDATE
		SET proposal_id = excluded.proposal_id, created_at = excluded.created_at
	`), v.ID, v.PartyID, v.ProposalID, v.VoterID, v.ProposalID, v.PartyID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveVote deletes the voter's vote, reporting whether one existed.
func (s *Store) RemoveVote(ctx context.Context, voterID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM motto_vote WHERE voter_id = ?`), voterID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Finalization writes. Each is conditional so a repeated or racing call is a no-op.

// SetMotto sets the motto only while it is still unset.
func (s *Store) SetMotto(ctx context.Context, partyID, motto string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE party SET motto = ? WHERE id = ? AND motto IS NULL
	`), motto, partyID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkFinalized flags the proposal unless the party already has a finalized one.
func (s *Store) MarkFinalized(ctx context.Context, partyID, proposalID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE motto_proposal SET is_finalized = TRUE
		WHERE id = ? AND party_id = ? AND is_finalized = FALSE
		  AND NOT EXISTS (
			SELECT 1 FROM motto_proposal other
			WHERE other.party_id = ? AND other.is_finalized = TRUE
		  )
	`), proposalID, partyID, partyID)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CloseProposals deactivates every proposal of the party.
func (s *Store) CloseProposals(ctx context.Context, partyID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE motto_proposal SET active = FALSE WHERE party_id = ? AND active = TRUE
	`), partyID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) SaveMorale(ctx context.Context, partyID string, score float64, level models.MoraleLevel) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE party SET morale_score = ?, morale_level = ? WHERE id = ?
	`), score, string(level), partyID)
	return err
}

// Settings

// Settings returns the stored values for the given keys. Missing keys are absent from the map.
func (s *Store) Settings(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		var value string
		err := s.db.QueryRowContext(ctx, s.q(`SELECT value FROM setting WHERE key = ?`), key).Scan(&value)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read setting %s: %w", key, err)
		}
		out[key] = value
	}
	return out, nil
}

// PutSettings upserts all values in one transaction.
func (s *Store) PutSettings(ctx context.Context, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ts := now()
	for key, value := range values {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO setting (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`), key, value, ts)
		if err != nil {
			return fmt.Errorf("write setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Questions and answers

func (s *Store) Questions(ctx context.Context) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, ability, prompt, position
		FROM question
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		var ability sql.NullString
		if err := rows.Scan(&q.ID, &q.Kind, &ability, &q.Prompt, &q.Position); err != nil {
			return nil, err
		}
		q.Ability = models.Ability(ability.String)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) PutQuestion(ctx context.Context, q models.Question) error {
	var ability sql.NullString
	if q.Ability != "" {
		ability = sql.NullString{String: string(q.Ability), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO question (id, kind, ability, prompt, position)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`), q.ID, q.Kind, ability, q.Prompt, q.Position)
	return err
}

// AppendAnswers inserts the batch atomically. A repeated
// (voter, subject, question) triple fails the whole batch with ErrDuplicate.
func (s *Store) AppendAnswers(ctx context.Context, answers []models.Answer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, a := range answers {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now()
		}
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO answer (id, party_id, voter_id, subject_id, question_id, value, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), a.ID, a.PartyID, a.VoterID, a.SubjectID, a.QuestionID, a.Value, a.CreatedAt)
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Answers returns the party's answer log in insertion order.
func (s *Store) Answers(ctx context.Context, partyID string) ([]models.Answer, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, party_id, voter_id, subject_id, question_id, value, created_at
		FROM answer
		WHERE party_id = ?
		ORDER BY created_at, id
	`), partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []models.Answer{}
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.PartyID, &a.VoterID, &a.SubjectID, &a.QuestionID, &a.Value, &a.CreatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// Character sheets

// SaveSheets replaces the party's sheets in one transaction.
func (s *Store) SaveSheets(ctx context.Context, partyID string, sheets []models.CharacterSheet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, sh := range sheets {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO character_sheet (member_id, party_id, str_score, dex_score, con_score, int_score, wis_score, cha_score, class, experience)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (member_id) DO UPDATE SET
				str_score = excluded.str_score,
				dex_score = excluded.dex_score,
				con_score = excluded.con_score,
				int_score = excluded.int_score,
				wis_score = excluded.wis_score,
				cha_score = excluded.cha_score,
				class = excluded.class,
				experience = excluded.experience
		`), sh.MemberID, partyID,
			sh.Scores.STR, sh.Scores.DEX, sh.Scores.CON, sh.Scores.INT, sh.Scores.WIS, sh.Scores.CHA,
			sh.Class, sh.Experience)
		if err != nil {
			return fmt.Errorf("save sheet %s: %w", sh.MemberID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Sheets(ctx context.Context, partyID string) ([]models.CharacterSheet, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT cs.member_id, cs.party_id, cs.str_score, cs.dex_score, cs.con_score,
		       cs.int_score, cs.wis_score, cs.cha_score, cs.class, cs.experience
		FROM character_sheet cs
		JOIN party_member pm ON pm.id = cs.member_id
		WHERE cs.party_id = ?
		ORDER BY pm.created_at, pm.id
	`), partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sheets := []models.CharacterSheet{}
	for rows.Next() {
		var sh models.CharacterSheet
		if err := rows.Scan(&sh.MemberID, &sh.PartyID,
			&sh.Scores.STR, &sh.Scores.DEX, &sh.Scores.CON,
			&sh.Scores.INT, &sh.Scores.WIS, &sh.Scores.CHA,
			&sh.Class, &sh.Experience); err != nil {
			return nil, err
		}
		sheets = append(sheets, sh)
	}
	return sheets, rows.Err()
}
