package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/conorfennell/triviatrip/internal/domain"
)

// PrintStats writes the player's answer statistics, the score history and
// the per-player averages as aligned tables.
func PrintStats(out io.Writer, player string, byCategory, byDifficulty []domain.AnswerStats, scores []domain.ScoreWithPlayerName, averages []domain.AverageScore) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Answers of %s\n", player)
	writeAnswerStats(tw, "Category", byCategory)
	writeAnswerStats(tw, "Difficulty", byDifficulty)

	fmt.Fprintln(tw, "\nScores")
	if len(scores) == 0 {
		fmt.Fprintln(tw, "  no games played yet")
	} else {
		fmt.Fprintln(tw, "  Player\tScore\tPlayed")
		for _, s := range scores {
			fmt.Fprintf(tw, "  %s\t%d\t%s\n", s.PlayerName, s.Value, s.Timestamp.Local().Format("2006-01-02 15:04"))
		}
	}

	fmt.Fprintln(tw, "\nAverages")
	if len(averages) == 0 {
		fmt.Fprintln(tw, "  no games played yet")
	} else {
		fmt.Fprintln(tw, "  Player\tAverage\tGames\tFrom\tTo")
		for _, a := range averages {
			fmt.Fprintf(tw, "  %s\t%.1f\t%d\t%s\t%s\n", a.PlayerName, a.Value, a.NumberOfGames,
				a.From.Local().Format("2006-01-02"), a.To.Local().Format("2006-01-02"))
		}
	}
	return tw.Flush()
}

func writeAnswerStats(w io.Writer, title string, stats []domain.AnswerStats) {
	fmt.Fprintf(w, "\n  %s\tAnswered\tCorrect\t%%\n", title)
	if len(stats) == 0 {
		fmt.Fprintln(w, "  (none)\t\t\t")
		return
	}
	for _, s := range stats {
		fmt.Fprintf(w, "  %s\t%d\t%d\t%.0f\n", s.CriterionText, s.TotalAnswered, s.CorrectlyAnswered, s.CorrectPercentage)
	}
}
