package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/conorfennell/triviatrip/internal/domain"
)

// ExistsByHash reports whether a question with the given content hash is stored.
func (db *DB) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM questions WHERE content_hash = ? LIMIT 1)
	`, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check question hash %s: %w", hash, err)
	}
	return exists, nil
}

// InsertWithAnswers inserts a question and all of its answer options in one
// transaction. The returned copy carries the ids assigned by the database.
// On failure the transaction is rolled back and nothing is stored.
func (db *DB) InsertWithAnswers(ctx context.Context, qa domain.QuestionWithAnswers) (*domain.QuestionWithAnswers, error) {
	stored := qa.Clone()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO questions (text, difficulty, category, content_hash)
		VALUES (?, ?, ?, ?)
	`,
		stored.Question.Text,
		stored.Question.Difficulty,
		stored.Question.Category,
		stored.Question.ContentHash,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert question %s: %w", stored.Question.ContentHash, err)
	}
	questionID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for question %s: %w", stored.Question.ContentHash, err)
	}
	stored.Question.ID = questionID

	for i := range stored.AnswerOptions {
		opt := &stored.AnswerOptions[i]
		res, err := tx.ExecContext(ctx, `
			INSERT INTO answer_options (question_id, text, is_correct)
			VALUES (?, ?, ?)
		`, questionID, opt.Text, opt.IsCorrect)
		if err != nil {
			return nil, fmt.Errorf("failed to insert answer option for question %d: %w", questionID, err)
		}
		optionID, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert ID for answer option: %w", err)
		}
		opt.ID = optionID
		opt.QuestionID = questionID
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit question %s: %w", stored.Question.ContentHash, err)
	}
	return &stored, nil
}

// GetLeastAnswered returns up to count questions with their answer options,
// ordered by how rarely they have been answered. With a player scope only
// that player's attempts are counted. Ties are broken randomly.
// Questions whose stored option set is malformed are logged and skipped.
func (db *DB) GetLeastAnswered(ctx context.Context, count int, scope domain.PlayerScope) ([]domain.QuestionWithAnswers, error) {
	playerID, scoped := scope.PlayerID()
	scopeFlag := 0
	if scoped {
		scopeFlag = 1
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT q.id, q.text, q.difficulty, q.category, q.content_hash
		FROM questions q
		LEFT JOIN answer_attempts aa
			ON aa.question_id = q.id AND (? = 0 OR aa.player_id = ?)
		GROUP BY q.id
		ORDER BY COUNT(aa.id) ASC, RANDOM()
		LIMIT ?
	`, scopeFlag, playerID, count)
	if err != nil {
		return nil, fmt.Errorf("failed to get least answered questions: %w", err)
	}

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Difficulty, &q.Category, &q.ContentHash); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		questions = append(questions, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate question rows: %w", err)
	}

	result := make([]domain.QuestionWithAnswers, 0, len(questions))
	for _, q := range questions {
		options, err := db.getAnswerOptions(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		qa := domain.QuestionWithAnswers{Question: q, AnswerOptions: options}
		if !qa.Valid() {
			slog.Error("Data integrity: stored question has a malformed option set, skipping",
				"question_id", q.ID,
				"options", len(options),
				"expected", domain.AnswerOptionCount,
			)
			continue
		}
		result = append(result, qa)
	}
	return result, nil
}

// FindQuestionWithAnswers loads one question and its options by id.
func (db *DB) FindQuestionWithAnswers(ctx context.Context, id int64) (*domain.QuestionWithAnswers, error) {
	var q domain.Question
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, text, difficulty, category, content_hash
		FROM questions WHERE id = ?
	`, id).Scan(&q.ID, &q.Text, &q.Difficulty, &q.Category, &q.ContentHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find question %d: %w", id, err)
	}
	options, err := db.getAnswerOptions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.QuestionWithAnswers{Question: q, AnswerOptions: options}, nil
}

// CountQuestions returns the number of stored questions.
func (db *DB) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return n, nil
}

func (db *DB) getAnswerOptions(ctx context.Context, questionID int64) ([]domain.AnswerOption, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, question_id, text, is_correct
		FROM answer_options WHERE question_id = ?
		ORDER BY id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer options for question %d: %w", questionID, err)
	}
	defer rows.Close()

	var options []domain.AnswerOption
	for rows.Next() {
		var o domain.AnswerOption
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, fmt.Errorf("failed to scan answer option row for question %d: %w", questionID, err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}
