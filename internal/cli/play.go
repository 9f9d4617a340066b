package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/conorfennell/triviatrip/internal/game"
	"github.com/conorfennell/triviatrip/internal/queue"
)

const letters = "ABCD"

// ErrQuit is returned when the player leaves before the game is over.
var ErrQuit = errors.New("player quit")

const noQuestionsMessage = "Sorry, no questions could be loaded from the database or the trivia API.\n" +
	"Check your internet connection and try again later."

// Play runs one game in the terminal and records its score if anything was
// answered. The game ends early on "q", on end of input, or when no questions
// can be found.
func Play(ctx context.Context, in io.Reader, out io.Writer, sess *game.Session) (game.Summary, error) {
	scanner := bufio.NewScanner(in)
	var playErr error

	for !sess.Finished() {
		round, err := sess.Next(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrNoQuestions) {
				fmt.Fprintln(out, noQuestionsMessage)
			}
			playErr = err
			break
		}

		printRound(out, round)
		optionID, err := readChoice(scanner, out, round)
		if err != nil {
			playErr = err
			break
		}

		res, err := sess.Answer(ctx, optionID)
		if err != nil {
			playErr = err
			break
		}
		printResult(out, round, res)
	}

	// A game with nothing answered leaves no score behind.
	summary := sess.Summary()
	if summary.Answered > 0 {
		var err error
		if summary, err = sess.Finish(ctx); err != nil {
			return summary, err
		}
	}
	fmt.Fprintf(out, "\nGame over! You answered %d of %d correctly and scored %d points.\n",
		summary.Correct, summary.Answered, summary.Score)

	if errors.Is(playErr, io.EOF) {
		playErr = nil
	}
	return summary, playErr
}

func printRound(out io.Writer, r game.Round) {
	fmt.Fprintf(out, "\nQuestion %d of %d  [%s, %s, %d points]\n",
		r.Number, r.Total, r.Question.Category, r.Question.Difficulty, game.Points(r.Question.Difficulty))
	fmt.Fprintln(out, r.Question.Text)
	for i, o := range r.Options {
		fmt.Fprintf(out, "  %c) %s\n", letters[i], o.Text)
	}
}

// readChoice prompts until the player types a valid letter.
func readChoice(scanner *bufio.Scanner, out io.Writer, r game.Round) (int64, error) {
	valid := letters[:len(r.Options)]
	for {
		fmt.Fprintf(out, "Your answer (%s, q to quit): ", strings.Join(strings.Split(valid, ""), "/"))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}

		input := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if input == "Q" {
			return 0, ErrQuit
		}
		if len(input) == 1 {
			if i := strings.Index(valid, input); i >= 0 {
				return r.Options[i].ID, nil
			}
		}
		fmt.Fprintf(out, "Please type one of %s.\n", valid)
	}
}

func printResult(out io.Writer, r game.Round, res game.Result) {
	if res.Correct {
		fmt.Fprintf(out, "%s +%d points (score: %d)\n", res.Message, res.Points, res.Score)
		return
	}
	for i, o := range r.Options {
		if o.ID == res.CorrectOptionID {
			fmt.Fprintf(out, "Wrong! The answer was %c) %s (score: %d)\n", letters[i], o.Text, res.Score)
			return
		}
	}
}
