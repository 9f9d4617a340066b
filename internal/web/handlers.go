package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/conorfennell/triviatrip/internal/domain"
	"github.com/conorfennell/triviatrip/internal/game"
	"github.com/conorfennell/triviatrip/internal/queue"
)

type optionView struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type questionView struct {
	Number     int          `json:"number"`
	Total      int          `json:"total"`
	ID         int64        `json:"id"`
	Text       string       `json:"text"`
	Category   string       `json:"category"`
	Difficulty string       `json:"difficulty"`
	Points     int          `json:"points"`
	Options    []optionView `json:"options"`
}

// newQuestionView strips IsCorrect from the options.
func newQuestionView(r game.Round) questionView {
	v := questionView{
		Number:     r.Number,
		Total:      r.Total,
		ID:         r.Question.ID,
		Text:       r.Question.Text,
		Category:   r.Question.Category,
		Difficulty: r.Question.Difficulty,
		Points:     game.Points(r.Question.Difficulty),
		Options:    make([]optionView, 0, len(r.Options)),
	}
	for _, o := range r.Options {
		v.Options = append(v.Options, optionView{ID: o.ID, Text: o.Text})
	}
	return v
}

type playerView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type answerRequest struct {
	OptionID int64 `json:"option_id" binding:"required,gt=0"`
}

type playerRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

type answerResponse struct {
	game.Result
	Summary *game.Summary `json:"summary,omitempty"`
}

func (s *Server) handleIndex(c *gin.Context) {
	player, _ := s.players.CurrentPlayer()
	scores, err := s.stats.GetScoresWithPlayerNames(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Player":  player.Name,
		"Summary": s.current().Summary(),
		"Scores":  scores,
	})
}

const noQuestionsMessage = "no questions could be loaded from the database or the trivia API, the game is over"

// handleGetQuestion returns the round in play, pulling a new question when needed.
// Running out of questions ends the game; a later request starts over.
func (s *Server) handleGetQuestion(c *gin.Context) {
	sess := s.current()
	round, err := sess.Next(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, game.ErrGameOver):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "summary": sess.Summary()})
		case errors.Is(err, queue.ErrNoQuestions):
			summary := sess.Summary()
			s.restart(c.Request.Context())
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": noQuestionsMessage, "game_over": true, "summary": summary})
		default:
			writeError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, newQuestionView(round))
}

// handlePostAnswer scores the chosen option. The final answer of a game records the score.
func (s *Server) handlePostAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error()})
		return
	}

	sess := s.current()
	res, err := sess.Answer(c.Request.Context(), req.OptionID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := answerResponse{Result: res}
	if res.Finished {
		summary, err := sess.Finish(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		resp.Summary = &summary
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePostGame(c *gin.Context) {
	sess := s.restart(c.Request.Context())
	c.JSON(http.StatusCreated, sess.Summary())
}

func (s *Server) handleGetPlayers(c *gin.Context) {
	players, err := s.stats.GetAllPlayers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]playerView, 0, len(players))
	for _, p := range players {
		views = append(views, playerView{ID: p.ID, Name: p.Name})
	}

	resp := gin.H{"players": views}
	if current, ok := s.players.CurrentPlayer(); ok {
		resp["current"] = playerView{ID: current.ID, Name: current.Name}
	}
	c.JSON(http.StatusOK, resp)
}

// handlePostPlayer switches to the named player, creating it if needed, and
// starts a new game for them.
func (s *Server) handlePostPlayer(c *gin.Context) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player name cannot be empty"})
		return
	}

	// The old game belongs to the old player, so record it before switching.
	s.restart(c.Request.Context())

	player, err := s.players.SelectPlayer(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, playerView{ID: player.ID, Name: player.Name})
}

func (s *Server) handleGetStats(c *gin.Context) {
	criterion, ok := domain.ParseCriterion(c.Query("criterion"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "criterion must be category or difficulty"})
		return
	}
	player, ok := s.players.CurrentPlayer()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no current player"})
		return
	}

	stats, err := s.stats.GetAnswerStats(c.Request.Context(), player.ID, criterion)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player.Name, "criterion": criterion.String(), "stats": stats})
}

func (s *Server) handleGetScores(c *gin.Context) {
	scores, err := s.stats.GetScoresWithPlayerNames(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores})
}

func (s *Server) handleGetAverages(c *gin.Context) {
	averages, err := s.stats.GetAverageScores(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"averages": averages})
}
