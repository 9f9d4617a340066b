package playdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/user"
	"strings"
	"sync"

	"github.com/conorfennell/triviatrip/internal/domain"
	"github.com/conorfennell/triviatrip/internal/storage"
)

// FallbackPlayerName is used when the OS user name cannot be stored.
const FallbackPlayerName = "NewPlayer"

// Store is the persistence PlayData needs.
type Store interface {
	InsertPlayer(ctx context.Context, name string) (*domain.Player, error)
	FindPlayerByName(ctx context.Context, name string) (*domain.Player, error)
	GetPlayerWithMaxID(ctx context.Context) (*domain.Player, error)
	GetLastActivePlayer(ctx context.Context) (*domain.Player, error)
	InsertAnswerAttempt(ctx context.Context, a domain.AnswerAttempt) (int64, error)
	InsertScore(ctx context.Context, s domain.Score) (int64, error)
}

// PlayData tracks the current player and records their answers and scores.
type PlayData struct {
	store    Store
	userName func() string

	mu      sync.RWMutex
	current *domain.Player
}

// New creates a PlayData with no current player.
func New(store Store) *PlayData {
	return &PlayData{store: store, userName: osUserName}
}

// Initialize picks the current player: whoever answered last, else the most
// recently added player, else a new player named after the OS user.
func (p *PlayData) Initialize(ctx context.Context) error {
	player, err := p.lastActivePlayer(ctx)
	if err != nil {
		return err
	}
	p.setCurrent(player)
	slog.Info("Current player selected", "player", player.Name, "id", player.ID)
	return nil
}

func (p *PlayData) lastActivePlayer(ctx context.Context) (*domain.Player, error) {
	player, err := p.store.GetLastActivePlayer(ctx)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("Failed to find the last active player", "error", err)
	}

	player, err = p.store.GetPlayerWithMaxID(ctx)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("Failed to find the newest player", "error", err)
	}

	slog.Warn("There are no players in the database, creating one from the OS user name")
	for _, name := range []string{p.userName(), FallbackPlayerName} {
		if name == "" {
			continue
		}
		player, err := p.findOrCreate(ctx, name)
		if err == nil {
			return player, nil
		}
		slog.Error("Failed to add player", "player", name, "error", err)
	}
	return nil, fmt.Errorf("failed to create a player: the database is likely corrupt")
}

// SelectPlayer makes the named player current, creating it if needed.
func (p *PlayData) SelectPlayer(ctx context.Context, name string) (domain.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Player{}, fmt.Errorf("player name cannot be empty")
	}
	player, err := p.findOrCreate(ctx, name)
	if err != nil {
		return domain.Player{}, err
	}
	p.setCurrent(player)
	return *player, nil
}

func (p *PlayData) findOrCreate(ctx context.Context, name string) (*domain.Player, error) {
	player, err := p.store.FindPlayerByName(ctx, name)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	return p.store.InsertPlayer(ctx, name)
}

func (p *PlayData) setCurrent(player *domain.Player) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *player
	p.current = &cp
}

// CurrentPlayer returns the current player, if one is selected.
func (p *PlayData) CurrentPlayer() (domain.Player, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return domain.Player{}, false
	}
	return *p.current, true
}

// Scope biases database fallback queries toward the current player.
func (p *PlayData) Scope() domain.PlayerScope {
	if player, ok := p.CurrentPlayer(); ok {
		return domain.ForPlayer(player.ID)
	}
	return domain.AllPlayers()
}

// RecordAnswer appends an answer attempt for the current player.
func (p *PlayData) RecordAnswer(ctx context.Context, option domain.AnswerOption) error {
	player, ok := p.CurrentPlayer()
	if !ok {
		return fmt.Errorf("no current player")
	}
	slog.Debug("Recording answer", "option_id", option.ID, "question_id", option.QuestionID)

	_, err := p.store.InsertAnswerAttempt(ctx, domain.AnswerAttempt{
		PlayerID:       player.ID,
		QuestionID:     option.QuestionID,
		AnswerOptionID: option.ID,
	})
	if err != nil {
		slog.Error("Failed to record answer", "option", option.Text, "error", err)
		return err
	}
	return nil
}

// RecordScore appends the final score of a game for the current player.
func (p *PlayData) RecordScore(ctx context.Context, value int) error {
	player, ok := p.CurrentPlayer()
	if !ok {
		return fmt.Errorf("no current player")
	}
	if _, err := p.store.InsertScore(ctx, domain.Score{PlayerID: player.ID, Value: value}); err != nil {
		slog.Error("Failed to record score", "player", player.Name, "score", value, "error", err)
		return err
	}
	return nil
}

func osUserName() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}
