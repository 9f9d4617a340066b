package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/conorfennell/triviatrip/internal/domain"
)

var (
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrUnknownOption   = errors.New("unknown answer option")
	ErrNoRound         = errors.New("no question in play")
	ErrGameOver        = errors.New("game is over")
)

// QuestionSource hands out the next playable question.
type QuestionSource interface {
	GetNextQuestion(ctx context.Context) (domain.QuestionWithAnswers, error)
}

// Recorder persists answers and final scores for the current player.
type Recorder interface {
	RecordAnswer(ctx context.Context, option domain.AnswerOption) error
	RecordScore(ctx context.Context, value int) error
}

// Round is a question as presented to the player. Options are shuffled and
// still carry IsCorrect, so adapters must not hand them out verbatim.
type Round struct {
	Number   int
	Total    int
	Question domain.Question
	Options  []domain.AnswerOption
	Answered bool
}

// Result is the outcome of answering a round.
type Result struct {
	Correct         bool   `json:"correct"`
	CorrectOptionID int64  `json:"correct_option_id"`
	Points          int    `json:"points"`
	Score           int    `json:"score"`
	Message         string `json:"message,omitempty"`
	Finished        bool   `json:"finished"`
}

// Summary describes the state of a game.
type Summary struct {
	Score    int  `json:"score"`
	Correct  int  `json:"correct"`
	Answered int  `json:"answered"`
	Total    int  `json:"total"`
	Finished bool `json:"finished"`
}

// Points returns what a correct answer is worth. Unknown difficulties score as hard.
func Points(difficulty string) int {
	switch domain.NormalizeDifficulty(difficulty) {
	case domain.DifficultyEasy:
		return 5
	case domain.DifficultyMedium:
		return 10
	default:
		return 15
	}
}

// Session is one game of a fixed number of questions. It is safe for
// concurrent use.
type Session struct {
	questions QuestionSource
	recorder  Recorder
	total     int
	shuffle   func(opts []domain.AnswerOption)

	mu       sync.Mutex
	current  *Round
	options  map[int64]domain.AnswerOption
	number   int
	answered int
	correct  int
	score    int
	recorded bool
}

// NewSession starts a game of total questions.
func NewSession(questions QuestionSource, recorder Recorder, total int) *Session {
	return &Session{
		questions: questions,
		recorder:  recorder,
		total:     total,
		shuffle: func(opts []domain.AnswerOption) {
			rand.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
		},
	}
}

// Next returns the round in play, or pulls a new question once the current
// one has been answered.
func (s *Session) Next(ctx context.Context) (Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && !s.current.Answered {
		return s.copyRound(), nil
	}
	if s.number >= s.total {
		return Round{}, ErrGameOver
	}

	qa, err := s.questions.GetNextQuestion(ctx)
	if err != nil {
		return Round{}, err
	}

	opts := qa.Clone().AnswerOptions
	s.shuffle(opts)
	s.options = make(map[int64]domain.AnswerOption, len(opts))
	for _, o := range opts {
		s.options[o.ID] = o
	}

	s.number++
	s.current = &Round{
		Number:   s.number,
		Total:    s.total,
		Question: qa.Question,
		Options:  opts,
	}
	return s.copyRound(), nil
}

// Answer scores the chosen option for the round in play.
func (s *Session) Answer(ctx context.Context, optionID int64) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Result{}, ErrNoRound
	}
	if s.current.Answered {
		return Result{}, ErrAlreadyAnswered
	}
	chosen, ok := s.options[optionID]
	if !ok {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownOption, optionID)
	}

	s.current.Answered = true
	s.answered++

	if err := s.recorder.RecordAnswer(ctx, chosen); err != nil {
		slog.Warn("Answer was not recorded, the game continues", "option_id", chosen.ID, "error", err)
	}

	res := Result{Correct: chosen.IsCorrect}
	for _, o := range s.current.Options {
		if o.IsCorrect {
			res.CorrectOptionID = o.ID
		}
	}
	if chosen.IsCorrect {
		s.correct++
		res.Points = Points(s.current.Question.Difficulty)
		s.score += res.Points
		res.Message = SuccessMessage()
	}
	res.Score = s.score
	res.Finished = s.finished()
	return res, nil
}

// Finished reports whether every question of the game has been answered.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished()
}

func (s *Session) finished() bool {
	return s.answered >= s.total
}

// Finish records the score once. Later calls are no-ops. A game that ended
// early is recorded with whatever was scored so far.
func (s *Session) Finish(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recorded {
		if err := s.recorder.RecordScore(ctx, s.score); err != nil {
			return s.summary(), fmt.Errorf("failed to record score: %w", err)
		}
		s.recorded = true
		slog.Info("Game finished", "score", s.score, "correct", s.correct, "answered", s.answered)
	}
	return s.summary(), nil
}

// Summary returns the running totals.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary()
}

func (s *Session) summary() Summary {
	return Summary{
		Score:    s.score,
		Correct:  s.correct,
		Answered: s.answered,
		Total:    s.total,
		Finished: s.finished(),
	}
}

func (s *Session) copyRound() Round {
	r := *s.current
	r.Options = append([]domain.AnswerOption(nil), s.current.Options...)
	return r
}
