package domain

import "strings"

// AnswerOptionCount is the number of options every playable question carries:
// one correct answer plus three incorrect ones.
const AnswerOptionCount = 4

// Difficulty labels as delivered by the trivia API.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// NormalizeDifficulty lowercases and trims a difficulty label.
func NormalizeDifficulty(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}

// Question is a stored trivia question. ID is assigned by the store on insert.
type Question struct {
	ID          int64
	Text        string
	Difficulty  string
	Category    string
	ContentHash string
}

// AnswerOption is one of the options belonging to a question.
type AnswerOption struct {
	ID         int64
	QuestionID int64
	Text       string
	IsCorrect  bool
}

// QuestionWithAnswers bundles a question with its full option set.
type QuestionWithAnswers struct {
	Question      Question
	AnswerOptions []AnswerOption
}

// Valid reports whether the bundle has exactly AnswerOptionCount options
// with exactly one of them marked correct.
func (qa QuestionWithAnswers) Valid() bool {
	if len(qa.AnswerOptions) != AnswerOptionCount {
		return false
	}
	correct := 0
	for _, o := range qa.AnswerOptions {
		if o.IsCorrect {
			correct++
		}
	}
	return correct == 1
}

// CorrectOption returns the correct option, if any.
func (qa QuestionWithAnswers) CorrectOption() (AnswerOption, bool) {
	for _, o := range qa.AnswerOptions {
		if o.IsCorrect {
			return o, true
		}
	}
	return AnswerOption{}, false
}

// Clone returns a deep copy so callers can assign ids without touching the original.
func (qa QuestionWithAnswers) Clone() QuestionWithAnswers {
	opts := make([]AnswerOption, len(qa.AnswerOptions))
	copy(opts, qa.AnswerOptions)
	return QuestionWithAnswers{Question: qa.Question, AnswerOptions: opts}
}
