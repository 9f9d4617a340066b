package domain

import "time"

// Player is a person playing the game. Names are unique.
type Player struct {
	ID   int64
	Name string
}

// AnswerAttempt records one answered question. Attempts are append-only.
type AnswerAttempt struct {
	ID             int64
	PlayerID       int64
	QuestionID     int64
	AnswerOptionID int64
	Timestamp      time.Time
}

// Score is the final result of one game session.
type Score struct {
	ID        int64
	PlayerID  int64
	Value     int
	Timestamp time.Time
}

// PlayerScope selects whose answer history a query is biased by.
// The zero value means all players.
type PlayerScope struct {
	playerID int64
	scoped   bool
}

// AllPlayers scopes a query across every player.
func AllPlayers() PlayerScope { return PlayerScope{} }

// ForPlayer scopes a query to a single player.
func ForPlayer(id int64) PlayerScope { return PlayerScope{playerID: id, scoped: true} }

// PlayerID returns the scoped player id, or false for the global scope.
func (s PlayerScope) PlayerID() (int64, bool) { return s.playerID, s.scoped }

func (s PlayerScope) String() string {
	if !s.scoped {
		return "all"
	}
	return "player"
}
