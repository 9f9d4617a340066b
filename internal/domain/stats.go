package domain

import "time"

// Criterion is the dimension answer statistics are grouped by.
type Criterion int

const (
	ByCategory Criterion = iota
	ByDifficulty
)

func (c Criterion) String() string {
	if c == ByDifficulty {
		return "difficulty"
	}
	return "category"
}

// ParseCriterion maps "category" or "difficulty" to a Criterion.
func ParseCriterion(s string) (Criterion, bool) {
	switch s {
	case "", "category":
		return ByCategory, true
	case "difficulty":
		return ByDifficulty, true
	}
	return ByCategory, false
}

// AnswerStats holds a player's results for one category or difficulty.
type AnswerStats struct {
	Criterion         Criterion `json:"-"`
	CriterionText     string    `json:"name"`
	TotalAnswered     int       `json:"total_answered"`
	CorrectlyAnswered int       `json:"correctly_answered"`
	CorrectPercentage float64   `json:"correct_percentage"`
}

// ScoreWithPlayerName is a score joined with the player's name.
type ScoreWithPlayerName struct {
	PlayerName string    `json:"player_name"`
	Value      int       `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// AverageScore summarises all games of one player.
type AverageScore struct {
	PlayerName    string    `json:"player_name"`
	Value         float64   `json:"value"`
	NumberOfGames int       `json:"number_of_games"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
}
