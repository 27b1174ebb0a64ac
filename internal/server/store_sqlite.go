package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const touchNow = "strftime('%Y-%m-%dT%H:%M:%fZ', 'now')"

// SQLiteStore implements Store on top of the users/parties/party_members
// schema. Score increments are single UPDATE statements so concurrent
// answers for the same user serialize inside SQLite; cross-entity
// mutations (register, join, leave) run in one transaction so a
// delete-on-empty can never race a concurrent join.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) RegisterUser(ctx context.Context, username, requestedPartyID string) (UserView, PartyView, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UserView{}, PartyView{}, err
	}
	defer tx.Rollback()

	var taken int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username = ?`, username).Scan(&taken)
	if err == nil {
		return UserView{}, PartyView{}, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return UserView{}, PartyView{}, err
	}

	partyID := requestedPartyID
	if partyID != "" {
		var exists int
		err = tx.QueryRowContext(ctx, `SELECT 1 FROM parties WHERE id = ?`, partyID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return UserView{}, PartyView{}, ErrPartyNotFound
		}
		if err != nil {
			return UserView{}, PartyView{}, err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE parties SET last_active = `+touchNow+` WHERE id = ?`, partyID); err != nil {
			return UserView{}, PartyView{}, err
		}
	} else {
		partyID = uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO parties (id, created_by) VALUES (?, ?)`, partyID, username); err != nil {
			return UserView{}, PartyView{}, err
		}
	}

	userID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, username, party_id) VALUES (?, ?, ?)`, userID, username, partyID); err != nil {
		return UserView{}, PartyView{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO party_members (party_id, user_id) VALUES (?, ?)`, partyID, userID); err != nil {
		return UserView{}, PartyView{}, err
	}

	user, err := userView(ctx, tx, userID)
	if err != nil {
		return UserView{}, PartyView{}, err
	}
	party, err := partyView(ctx, tx, partyID)
	if err != nil {
		return UserView{}, PartyView{}, err
	}

	if err := tx.Commit(); err != nil {
		return UserView{}, PartyView{}, err
	}
	return user, party, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (UserView, error) {
	return userView(ctx, s.db, userID)
}

func (s *SQLiteStore) ApplyAnswer(ctx context.Context, userID string, correct bool) (UserView, error) {
	col := "score_incorrect"
	if correct {
		col = "score_correct"
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE users SET %s = %s + 1, last_active = %s WHERE id = ?`, col, col, touchNow), userID)
	if err != nil {
		return UserView{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return UserView{}, err
	}
	if n == 0 {
		return UserView{}, ErrUserNotFound
	}

	return userView(ctx, s.db, userID)
}

func (s *SQLiteStore) GetParty(ctx context.Context, partyID string) (PartyView, error) {
	return partyView(ctx, s.db, partyID)
}

func (s *SQLiteStore) JoinParty(ctx context.Context, partyID, userID string) (PartyView, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PartyView{}, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM parties WHERE id = ?`, partyID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return PartyView{}, ErrPartyNotFound
	}
	if err != nil {
		return PartyView{}, err
	}

	var currentPartyID sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT party_id FROM users WHERE id = ?`, userID).Scan(&currentPartyID)
	if errors.Is(err, sql.ErrNoRows) {
		return PartyView{}, ErrUserNotFound
	}
	if err != nil {
		return PartyView{}, err
	}

	var member int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM party_members WHERE party_id = ? AND user_id = ?`, partyID, userID).Scan(&member)
	if err == nil {
		return PartyView{}, ErrAlreadyMember
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return PartyView{}, err
	}

	// Single-party membership: departing from the previous party happens
	// here, in the same transaction as the join.
	if currentPartyID.Valid && currentPartyID.String != partyID {
		if err := removeMember(ctx, tx, currentPartyID.String, userID); err != nil {
			return PartyView{}, err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO party_members (party_id, user_id) VALUES (?, ?)`, partyID, userID); err != nil {
		return PartyView{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET party_id = ? WHERE id = ?`, partyID, userID); err != nil {
		return PartyView{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE parties SET last_active = `+touchNow+` WHERE id = ?`, partyID); err != nil {
		return PartyView{}, err
	}

	party, err := partyView(ctx, tx, partyID)
	if err != nil {
		return PartyView{}, err
	}

	if err := tx.Commit(); err != nil {
		return PartyView{}, err
	}
	return party, nil
}

func (s *SQLiteStore) LeaveParty(ctx context.Context, partyID, userID string) (LeaveResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResult{}, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM parties WHERE id = ?`, partyID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return LeaveResult{}, ErrPartyNotFound
	}
	if err != nil {
		return LeaveResult{}, err
	}

	err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return LeaveResult{}, ErrUserNotFound
	}
	if err != nil {
		return LeaveResult{}, err
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM party_members WHERE party_id = ? AND user_id = ?`, partyID, userID)
	if err != nil {
		return LeaveResult{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return LeaveResult{}, ErrNotAMember
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET party_id = NULL WHERE id = ?`, userID); err != nil {
		return LeaveResult{}, err
	}

	var remaining int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM party_members WHERE party_id = ?`, partyID).Scan(&remaining); err != nil {
		return LeaveResult{}, err
	}

	if remaining == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM parties WHERE id = ?`, partyID); err != nil {
			return LeaveResult{}, err
		}
		if err := tx.Commit(); err != nil {
			return LeaveResult{}, err
		}
		return LeaveResult{Deleted: true}, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE parties SET last_active = `+touchNow+` WHERE id = ?`, partyID); err != nil {
		return LeaveResult{}, err
	}

	party, err := partyView(ctx, tx, partyID)
	if err != nil {
		return LeaveResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return LeaveResult{}, err
	}
	return LeaveResult{Party: &party}, nil
}

// removeMember drops a membership and garbage-collects the party if that
// made it empty. Caller owns the transaction.
func removeMember(ctx context.Context, tx *sql.Tx, partyID, userID string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM party_members WHERE party_id = ? AND user_id = ?`, partyID, userID); err != nil {
		return err
	}
	var remaining int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM party_members WHERE party_id = ?`, partyID).Scan(&remaining); err != nil {
		return err
	}
	if remaining == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM parties WHERE id = ?`, partyID); err != nil {
			return err
		}
	}
	return nil
}

func userView(ctx context.Context, q querier, userID string) (UserView, error) {
	var u UserView
	var partyID sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT id, username, score_correct, score_incorrect, party_id
		FROM users WHERE id = ?
	`, userID).Scan(&u.UserID, &u.Username, &u.Score.Correct, &u.Score.Incorrect, &partyID)
	if errors.Is(err, sql.ErrNoRows) {
		return UserView{}, ErrUserNotFound
	}
	if err != nil {
		return UserView{}, err
	}
	u.PartyID = partyID.String
	return u, nil
}

func partyView(ctx context.Context, q querier, partyID string) (PartyView, error) {
	var p PartyView
	err := q.QueryRowContext(ctx, `
		SELECT id, created_by, created_at FROM parties WHERE id = ?
	`, partyID).Scan(&p.ID, &p.CreatedBy, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return PartyView{}, ErrPartyNotFound
	}
	if err != nil {
		return PartyView{}, err
	}

	// Member scores are read through from users so the party view can
	// never drift from the canonical score.
	rows, err := q.QueryContext(ctx, `
		SELECT u.id, u.username, u.score_correct, u.score_incorrect, m.joined_at
		FROM party_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.party_id = ?
		ORDER BY m.joined_at, u.username
	`, partyID)
	if err != nil {
		return PartyView{}, err
	}
	defer rows.Close()

	p.Members = []PartyMember{}
	for rows.Next() {
		var m PartyMember
		if err := rows.Scan(&m.ID, &m.Username, &m.Score.Correct, &m.Score.Incorrect, &m.JoinedAt); err != nil {
			return PartyView{}, err
		}
		p.Members = append(p.Members, m)
	}
	return p, rows.Err()
}
