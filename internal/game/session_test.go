package game

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/triviatrip/internal/domain"
)

type MockQuestionSource struct {
	mock.Mock
}

func (m *MockQuestionSource) GetNextQuestion(ctx context.Context) (domain.QuestionWithAnswers, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.QuestionWithAnswers), args.Error(1)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordAnswer(ctx context.Context, option domain.AnswerOption) error {
	args := m.Called(ctx, option)
	return args.Error(0)
}

func (m *MockRecorder) RecordScore(ctx context.Context, value int) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

func question(id int64, difficulty string) domain.QuestionWithAnswers {
	return domain.QuestionWithAnswers{
		Question: domain.Question{ID: id, Text: "Q", Difficulty: difficulty},
		AnswerOptions: []domain.AnswerOption{
			{ID: id*10 + 1, QuestionID: id, Text: "right", IsCorrect: true},
			{ID: id*10 + 2, QuestionID: id, Text: "wrong"},
			{ID: id*10 + 3, QuestionID: id, Text: "wrong"},
			{ID: id*10 + 4, QuestionID: id, Text: "wrong"},
		},
	}
}

func TestPoints(t *testing.T) {
	testCases := []struct {
		difficulty string
		expected   int
	}{
		{"easy", 5},
		{"Easy", 5},
		{"medium", 10},
		{"hard", 15},
		{"", 15},
		{"impossible", 15},
	}
	for _, tc := range testCases {
		t.Run(tc.difficulty, func(t *testing.T) {
			assert.Equal(t, tc.expected, Points(tc.difficulty))
		})
	}
}

func TestSession_PlayThrough(t *testing.T) {
	ctx := context.Background()
	source := new(MockQuestionSource)
	source.On("GetNextQuestion", ctx).Return(question(1, "easy"), nil).Once()
	source.On("GetNextQuestion", ctx).Return(question(2, "medium"), nil).Once()
	recorder := new(MockRecorder)
	recorder.On("RecordAnswer", ctx, mock.AnythingOfType("domain.AnswerOption")).Return(nil)
	recorder.On("RecordScore", ctx, 5).Return(nil).Once()

	s := NewSession(source, recorder, 2)

	round, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, round.Number)
	assert.Equal(t, 2, round.Total)
	assert.Len(t, round.Options, domain.AnswerOptionCount)

	again, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, round.Question.ID, again.Question.ID, "an unanswered round is served again")

	res, err := s.Answer(ctx, 11)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 5, res.Points)
	assert.Equal(t, 5, res.Score)
	assert.NotEmpty(t, res.Message)
	assert.False(t, res.Finished)

	_, err = s.Answer(ctx, 12)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	_, err = s.Next(ctx)
	require.NoError(t, err)
	res, err = s.Answer(ctx, 22)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, int64(21), res.CorrectOptionID)
	assert.Zero(t, res.Points)
	assert.Empty(t, res.Message)
	assert.True(t, res.Finished)
	assert.True(t, s.Finished())

	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, ErrGameOver)

	summary, err := s.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Score: 5, Correct: 1, Answered: 2, Total: 2, Finished: true}, summary)
	_, err = s.Finish(ctx)
	require.NoError(t, err)

	source.AssertExpectations(t)
	recorder.AssertExpectations(t)
	recorder.AssertNumberOfCalls(t, "RecordScore", 1)
}

func TestSession_AnswerErrors(t *testing.T) {
	ctx := context.Background()
	source := new(MockQuestionSource)
	source.On("GetNextQuestion", ctx).Return(question(1, "hard"), nil)
	recorder := new(MockRecorder)

	s := NewSession(source, recorder, 10)

	_, err := s.Answer(ctx, 11)
	assert.ErrorIs(t, err, ErrNoRound)

	_, err = s.Next(ctx)
	require.NoError(t, err)
	_, err = s.Answer(ctx, 999)
	assert.ErrorIs(t, err, ErrUnknownOption)
	recorder.AssertNotCalled(t, "RecordAnswer", mock.Anything, mock.Anything)
}

func TestSession_RecordFailureDoesNotEndGame(t *testing.T) {
	ctx := context.Background()
	source := new(MockQuestionSource)
	source.On("GetNextQuestion", ctx).Return(question(1, "hard"), nil)
	recorder := new(MockRecorder)
	recorder.On("RecordAnswer", ctx, mock.Anything).Return(errors.New("database is locked"))

	s := NewSession(source, recorder, 10)
	_, err := s.Next(ctx)
	require.NoError(t, err)

	res, err := s.Answer(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 15, res.Score)
}

func TestSession_NoQuestions(t *testing.T) {
	ctx := context.Background()
	exhausted := errors.New("no questions available")
	source := new(MockQuestionSource)
	source.On("GetNextQuestion", ctx).Return(domain.QuestionWithAnswers{}, exhausted)
	recorder := new(MockRecorder)
	recorder.On("RecordScore", ctx, 0).Return(nil)

	s := NewSession(source, recorder, 10)
	_, err := s.Next(ctx)
	assert.ErrorIs(t, err, exhausted)

	summary, err := s.Finish(ctx)
	require.NoError(t, err)
	assert.False(t, summary.Finished)
}

func TestSession_ShufflesOptions(t *testing.T) {
	ctx := context.Background()
	source := new(MockQuestionSource)
	source.On("GetNextQuestion", ctx).Return(question(1, "easy"), nil)

	s := NewSession(source, new(MockRecorder), 10)
	s.shuffle = func(opts []domain.AnswerOption) {
		for i, j := 0, len(opts)-1; i < j; i, j = i+1, j-1 {
			opts[i], opts[j] = opts[j], opts[i]
		}
	}

	round, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(14), round.Options[0].ID)
	assert.Equal(t, int64(11), round.Options[3].ID)
}

func TestSuccessMessage(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.NotEmpty(t, SuccessMessage())
	}
}
