package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/conorfennell/triviatrip/internal/domain"
)

// InsertPlayer inserts a new player and returns it with its assigned ID.
func (db *DB) InsertPlayer(ctx context.Context, name string) (*domain.Player, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO players (name) VALUES (?)
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to insert player %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for player %s: %w", name, err)
	}
	return &domain.Player{ID: id, Name: name}, nil
}

// FindPlayerByName retrieves a player by name. It returns ErrNotFound if absent.
func (db *DB) FindPlayerByName(ctx context.Context, name string) (*domain.Player, error) {
	return db.findPlayer(ctx, `SELECT id, name FROM players WHERE name = ?`, name)
}

// GetPlayerWithMaxID returns the most recently added player.
func (db *DB) GetPlayerWithMaxID(ctx context.Context) (*domain.Player, error) {
	return db.findPlayer(ctx, `SELECT id, name FROM players ORDER BY id DESC LIMIT 1`)
}

// GetLastActivePlayer returns the player who made the latest answer attempt.
func (db *DB) GetLastActivePlayer(ctx context.Context) (*domain.Player, error) {
	return db.findPlayer(ctx, `
		SELECT p.id, p.name
		FROM answer_attempts aa
		JOIN players p ON p.id = aa.player_id
		ORDER BY aa.timestamp DESC, aa.id DESC
		LIMIT 1
	`)
}

func (db *DB) findPlayer(ctx context.Context, query string, args ...any) (*domain.Player, error) {
	var p domain.Player
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find player: %w", err)
	}
	return &p, nil
}

// GetAllPlayers retrieves all players ordered by id.
func (db *DB) GetAllPlayers(ctx context.Context) ([]domain.Player, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name FROM players ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// InsertAnswerAttempt appends an answer attempt. A zero Timestamp means now.
func (db *DB) InsertAnswerAttempt(ctx context.Context, a domain.AnswerAttempt) (int64, error) {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO answer_attempts (player_id, question_id, answer_option_id, timestamp)
		VALUES (?, ?, ?, ?)
	`, a.PlayerID, a.QuestionID, a.AnswerOptionID, a.Timestamp.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert answer attempt for question %d: %w", a.QuestionID, err)
	}
	return res.LastInsertId()
}

// InsertScore appends the final score of a game session. A zero Timestamp means now.
func (db *DB) InsertScore(ctx context.Context, s domain.Score) (int64, error) {
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO scores (player_id, value, timestamp)
		VALUES (?, ?, ?)
	`, s.PlayerID, s.Value, s.Timestamp.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert score for player %d: %w", s.PlayerID, err)
	}
	return res.LastInsertId()
}
