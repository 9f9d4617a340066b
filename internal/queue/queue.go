package queue

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/conorfennell/triviatrip/internal/contenthash"
	"github.com/conorfennell/triviatrip/internal/domain"
	"github.com/conorfennell/triviatrip/internal/opentdb"
)

// ErrNoQuestions means the buffer, the database and the API are all exhausted.
// A game cannot continue after it.
var ErrNoQuestions = errors.New("no questions available")

// Source supplies fresh questions. An empty result covers both "nothing new" and failure.
type Source interface {
	FetchQuestions(ctx context.Context, amount int) []opentdb.Question
}

// Store persists questions and serves the least answered ones.
type Store interface {
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	InsertWithAnswers(ctx context.Context, qa domain.QuestionWithAnswers) (*domain.QuestionWithAnswers, error)
	GetLeastAnswered(ctx context.Context, count int, scope domain.PlayerScope) ([]domain.QuestionWithAnswers, error)
}

// PlayerScoper tells the queue whose history to bias database fallbacks by.
type PlayerScoper interface {
	Scope() domain.PlayerScope
}

// Notifier shows a message to the player.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// Options tunes how many questions are loaded and when.
type Options struct {
	InitialLoadCount    int           // loaded by Initialize
	BackgroundLoadCount int           // loaded by each background refill
	MinBufferThreshold  int           // low-water mark that triggers a background refill
	DatabaseLoadCount   int           // loaded from the database when the API falls short
	RateLimitDelay      time.Duration // wait before the last-resort API request
}

// DefaultOptions mirrors the API limits: at most 50 questions per request and
// one request per IP every 5 seconds.
func DefaultOptions() Options {
	return Options{
		InitialLoadCount:    30,
		BackgroundLoadCount: 20,
		MinBufferThreshold:  10,
		DatabaseLoadCount:   10,
		RateLimitDelay:      5001 * time.Millisecond,
	}
}

// recentlyServedLimit is how many served questions background top-ups will not
// re-enqueue. Their attempts may not be recorded yet, so they still rank as
// least answered.
const recentlyServedLimit = 10

const emptyDatabaseNotice = "The database contains no questions or is corrupt.\n" +
	"Please wait a few seconds while we attempt to get a question from the trivia API..."

// Queue keeps a FIFO buffer of playable questions and refills it from the API
// and the database.
type Queue struct {
	source   Source
	store    Store
	players  PlayerScoper
	notifier Notifier
	opts     Options

	mu       sync.Mutex
	buffer   []domain.QuestionWithAnswers
	buffered map[int64]struct{}
	recent   []int64 // served ids, oldest first

	fetchMu    sync.Mutex  // serializes API refills
	refilling  atomic.Bool // set while a background refill is scheduled or running
	background context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// New creates an empty queue. players and notifier may be nil.
func New(source Source, store Store, players PlayerScoper, notifier Notifier, opts Options) *Queue {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		source:     source,
		store:      store,
		players:    players,
		notifier:   notifier,
		opts:       opts,
		buffered:   make(map[int64]struct{}),
		background: ctx,
		cancel:     cancel,
	}
}

// Initialize performs the first load. Failing to load anything is not fatal;
// the buffer just stays empty until GetNextQuestion falls back.
func (q *Queue) Initialize(ctx context.Context) {
	q.loadQuestions(ctx, q.opts.InitialLoadCount)
}

// GetNextQuestion removes and returns the question at the front of the buffer.
// An empty buffer is refilled from the database and, failing that, with a
// single question from the API after the rate-limit delay. ErrNoQuestions is
// returned only when every source came back empty.
func (q *Queue) GetNextQuestion(ctx context.Context) (domain.QuestionWithAnswers, error) {
	for {
		if q.Len() == 0 {
			if err := q.urgentFetch(ctx); err != nil {
				return domain.QuestionWithAnswers{}, err
			}
		}

		qa, remaining, ok := q.dequeue()
		if !ok {
			slog.Error("No questions available after every fallback")
			return domain.QuestionWithAnswers{}, ErrNoQuestions
		}

		if remaining <= q.opts.MinBufferThreshold {
			q.startBackgroundRefill()
		}

		if !qa.Valid() {
			slog.Error("Data integrity: dequeued question has a malformed option set, skipping",
				"question_id", qa.Question.ID, "options", len(qa.AnswerOptions))
			continue
		}
		return qa, nil
	}
}

// Len returns the number of buffered questions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffer)
}

// Close stops background refills and waits for the running one to return.
func (q *Queue) Close() {
	q.cancel()
	q.wg.Wait()
}

// urgentFetch fills an empty buffer from the database, then from the API.
func (q *Queue) urgentFetch(ctx context.Context) error {
	slog.Warn("No questions in the queue, requesting questions from the database")
	// A repeat beats no question at all.
	q.refillFromDatabase(ctx, q.opts.DatabaseLoadCount, true)
	if q.Len() > 0 {
		return nil
	}

	slog.Error("Failed to get questions from the database, last attempt to get one from the API")
	go q.notifier.Notify(emptyDatabaseNotice)

	timer := time.NewTimer(q.opts.RateLimitDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	slog.Info("Rate limit delay ended, asking the API for one question")
	q.loadQuestions(ctx, 1)
	if q.Len() == 0 {
		return ErrNoQuestions
	}
	return nil
}

// startBackgroundRefill launches one background refill unless one is already in flight.
func (q *Queue) startBackgroundRefill() {
	if !q.refilling.CompareAndSwap(false, true) {
		return
	}
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer q.refilling.Store(false)
		q.loadQuestions(q.background, q.opts.BackgroundLoadCount)
	}()
}

// loadQuestions asks the API first and tops up from the database when the
// buffer is still at or below the low-water mark.
func (q *Queue) loadQuestions(ctx context.Context, count int) {
	slog.Info("Loading questions", "requested", count, "queued", q.Len())

	q.refillFromAPI(ctx, count)

	if n := q.Len(); n <= q.opts.MinBufferThreshold {
		slog.Warn("Not enough questions after API request, requesting from the database", "queued", n)
		q.refillFromDatabase(ctx, q.opts.DatabaseLoadCount, false)
	}
}

// refillFromAPI fetches count questions, drops those already stored, persists
// the rest and enqueues them. Faults are logged; a partial refill is fine.
func (q *Queue) refillFromAPI(ctx context.Context, count int) {
	q.fetchMu.Lock()
	defer q.fetchMu.Unlock()

	fetched := q.source.FetchQuestions(ctx, count)

	var discarded, enqueued int
	for _, aq := range fetched {
		hash := contenthash.Hash(aq.Question, aq.CorrectAnswer, aq.IncorrectAnswers)

		exists, err := q.store.ExistsByHash(ctx, hash)
		if err != nil {
			slog.Error("Database error while checking existence by hash", "hash", hash, "error", err)
			continue
		}
		if exists {
			discarded++
			continue
		}

		qa := newQuestionWithAnswers(aq, hash)
		if !qa.Valid() {
			slog.Warn("Skipping API question with a malformed option set", "hash", hash, "options", len(qa.AnswerOptions))
			continue
		}

		stored, err := q.store.InsertWithAnswers(ctx, qa)
		if err != nil {
			slog.Error("Database error while adding a new question", "hash", hash, "error", err)
			continue
		}
		enqueued += q.enqueue(*stored)
	}

	slog.Info("Loaded questions from the API",
		"fetched", len(fetched),
		"discarded", discarded,
		"enqueued", enqueued,
		"queued", q.Len(),
	)
}

// refillFromDatabase enqueues up to count least answered questions, skipping
// recently served ones unless allowRecent is set.
func (q *Queue) refillFromDatabase(ctx context.Context, count int, allowRecent bool) {
	items, err := q.store.GetLeastAnswered(ctx, count, q.scope())
	if err != nil {
		slog.Error("Database error while fetching questions from the database", "error", err)
		return
	}

	valid := make([]domain.QuestionWithAnswers, 0, len(items))
	for _, qa := range items {
		if !qa.Valid() {
			slog.Error("Data integrity: stored question has a malformed option set, skipping",
				"question_id", qa.Question.ID, "options", len(qa.AnswerOptions))
			continue
		}
		valid = append(valid, qa)
	}

	if !allowRecent {
		valid = q.withoutRecent(valid)
	}
	enqueued := q.enqueue(valid...)
	slog.Info("Loaded questions from the database", "requested", count, "received", len(items), "enqueued", enqueued)
}

func (q *Queue) scope() domain.PlayerScope {
	if q.players == nil {
		return domain.AllPlayers()
	}
	return q.players.Scope()
}

func (q *Queue) withoutRecent(items []domain.QuestionWithAnswers) []domain.QuestionWithAnswers {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := items[:0]
	for _, qa := range items {
		if !slices.Contains(q.recent, qa.Question.ID) {
			kept = append(kept, qa)
		}
	}
	return kept
}

// enqueue appends questions that are not already buffered and returns how many were added.
func (q *Queue) enqueue(items ...domain.QuestionWithAnswers) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	added := 0
	for _, qa := range items {
		if _, dup := q.buffered[qa.Question.ID]; dup {
			continue
		}
		q.buffered[qa.Question.ID] = struct{}{}
		q.buffer = append(q.buffer, qa)
		added++
	}
	return added
}

// dequeue pops the front of the buffer and reports how many remain.
func (q *Queue) dequeue() (domain.QuestionWithAnswers, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.buffer) == 0 {
		return domain.QuestionWithAnswers{}, 0, false
	}
	qa := q.buffer[0]
	q.buffer[0] = domain.QuestionWithAnswers{}
	q.buffer = q.buffer[1:]
	delete(q.buffered, qa.Question.ID)

	q.recent = append(q.recent, qa.Question.ID)
	if len(q.recent) > recentlyServedLimit {
		q.recent = q.recent[len(q.recent)-recentlyServedLimit:]
	}
	return qa, len(q.buffer), true
}

// newQuestionWithAnswers builds the storable form: correct answer first,
// then the incorrect ones in API order.
func newQuestionWithAnswers(aq opentdb.Question, hash string) domain.QuestionWithAnswers {
	options := make([]domain.AnswerOption, 0, len(aq.IncorrectAnswers)+1)
	options = append(options, domain.AnswerOption{Text: aq.CorrectAnswer, IsCorrect: true})
	for _, text := range aq.IncorrectAnswers {
		options = append(options, domain.AnswerOption{Text: text})
	}
	return domain.QuestionWithAnswers{
		Question: domain.Question{
			Text:        aq.Question,
			Difficulty:  domain.NormalizeDifficulty(aq.Difficulty),
			Category:    aq.Category,
			ContentHash: hash,
		},
		AnswerOptions: options,
	}
}
