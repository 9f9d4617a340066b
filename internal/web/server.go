package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/conorfennell/triviatrip/internal/domain"
	"github.com/conorfennell/triviatrip/internal/game"
	"github.com/conorfennell/triviatrip/internal/queue"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Players selects and reports the current player.
type Players interface {
	SelectPlayer(ctx context.Context, name string) (domain.Player, error)
	CurrentPlayer() (domain.Player, bool)
}

// Stats reads player history for the statistics endpoints.
type Stats interface {
	GetAllPlayers(ctx context.Context) ([]domain.Player, error)
	GetAnswerStats(ctx context.Context, playerID int64, criterion domain.Criterion) ([]domain.AnswerStats, error)
	GetScoresWithPlayerNames(ctx context.Context) ([]domain.ScoreWithPlayerName, error)
	GetAverageScores(ctx context.Context) ([]domain.AverageScore, error)
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	engine     *gin.Engine
	players    Players
	stats      Stats
	newSession func() *game.Session

	mu      sync.Mutex
	session *game.Session
}

// NewServer creates and configures a new server. newSession is called for
// every new game.
func NewServer(players Players, stats Stats, newSession func() *game.Session) (*Server, error) {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.SetHTMLTemplate(tpl)

	s := &Server{
		engine:     engine,
		players:    players,
		stats:      stats,
		newSession: newSession,
		session:    newSession(),
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.finishCurrent(shutdownCtx)
	return nil
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleIndex)

	api := s.engine.Group("/api")
	api.GET("/question", s.handleGetQuestion)
	api.POST("/answer", s.handlePostAnswer)
	api.POST("/game", s.handlePostGame)
	api.GET("/players", s.handleGetPlayers)
	api.POST("/players", s.handlePostPlayer)
	api.GET("/stats", s.handleGetStats)
	api.GET("/scores", s.handleGetScores)
	api.GET("/averages", s.handleGetAverages)
}

func (s *Server) current() *game.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// restart records the running game if anything was answered and starts a new one.
func (s *Server) restart(ctx context.Context) *game.Session {
	s.mu.Lock()
	old := s.session
	s.session = s.newSession()
	next := s.session
	s.mu.Unlock()

	if old.Summary().Answered > 0 {
		if _, err := old.Finish(ctx); err != nil {
			slog.Error("Failed to record the score of the previous game", "error", err)
		}
	}
	return next
}

func (s *Server) finishCurrent(ctx context.Context) {
	sess := s.current()
	if sess.Summary().Answered == 0 {
		return
	}
	if _, err := sess.Finish(ctx); err != nil {
		slog.Error("Failed to record the score on shutdown", "error", err)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// writeError maps game and queue errors to status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, queue.ErrNoQuestions):
		status = http.StatusServiceUnavailable
	case errors.Is(err, game.ErrUnknownOption):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrAlreadyAnswered), errors.Is(err, game.ErrNoRound), errors.Is(err, game.ErrGameOver):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
