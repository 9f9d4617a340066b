package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/conorfennell/triviatrip/internal/domain"
)

// GetAnswerStats returns a player's answer statistics grouped by category or
// by difficulty, sorted by the percentage of correct answers.
func (db *DB) GetAnswerStats(ctx context.Context, playerID int64, criterion domain.Criterion) ([]domain.AnswerStats, error) {
	column := "q.category"
	if criterion == domain.ByDifficulty {
		column = "q.difficulty"
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT name, total, correct, 100.0 * correct / total AS pct
		FROM (
			SELECT `+column+` AS name,
			       COUNT(*) AS total,
			       SUM(CASE WHEN ao.is_correct = 1 THEN 1 ELSE 0 END) AS correct
			FROM answer_attempts aa
			JOIN questions q ON aa.question_id = q.id
			JOIN answer_options ao ON aa.answer_option_id = ao.id
			WHERE aa.player_id = ?
			GROUP BY `+column+`
		)
		ORDER BY pct DESC, name
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer stats for player %d: %w", playerID, err)
	}
	defer rows.Close()

	var stats []domain.AnswerStats
	for rows.Next() {
		s := domain.AnswerStats{Criterion: criterion}
		if err := rows.Scan(&s.CriterionText, &s.TotalAnswered, &s.CorrectlyAnswered, &s.CorrectPercentage); err != nil {
			return nil, fmt.Errorf("failed to scan answer stats row: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// GetScoresWithPlayerNames returns every recorded score, oldest first.
func (db *DB) GetScoresWithPlayerNames(ctx context.Context) ([]domain.ScoreWithPlayerName, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.name, s.value, s.timestamp
		FROM scores s
		JOIN players p ON p.id = s.player_id
		ORDER BY s.timestamp, s.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.ScoreWithPlayerName
	for rows.Next() {
		var s domain.ScoreWithPlayerName
		var ts int64
		if err := rows.Scan(&s.PlayerName, &s.Value, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		s.Timestamp = time.Unix(ts, 0)
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// GetAverageScores returns the average score per player, best first.
func (db *DB) GetAverageScores(ctx context.Context) ([]domain.AverageScore, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.name, AVG(s.value), COUNT(*), MIN(s.timestamp), MAX(s.timestamp)
		FROM scores s
		JOIN players p ON p.id = s.player_id
		GROUP BY p.id
		ORDER BY AVG(s.value) DESC, p.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get average scores: %w", err)
	}
	defer rows.Close()

	var averages []domain.AverageScore
	for rows.Next() {
		var a domain.AverageScore
		var from, to int64
		if err := rows.Scan(&a.PlayerName, &a.Value, &a.NumberOfGames, &from, &to); err != nil {
			return nil, fmt.Errorf("failed to scan average score row: %w", err)
		}
		a.From = time.Unix(from, 0)
		a.To = time.Unix(to, 0)
		averages = append(averages, a)
	}
	return averages, rows.Err()
}
