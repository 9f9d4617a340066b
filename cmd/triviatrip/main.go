package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/conorfennell/triviatrip/internal/cli"
	"github.com/conorfennell/triviatrip/internal/config"
	"github.com/conorfennell/triviatrip/internal/domain"
	"github.com/conorfennell/triviatrip/internal/game"
	"github.com/conorfennell/triviatrip/internal/opentdb"
	"github.com/conorfennell/triviatrip/internal/packs"
	"github.com/conorfennell/triviatrip/internal/playdata"
	"github.com/conorfennell/triviatrip/internal/queue"
	"github.com/conorfennell/triviatrip/internal/storage"
	"github.com/conorfennell/triviatrip/internal/web"
)

const usage = `Usage: triviatrip [flags] [command]

Commands:
  play              play a game in the terminal (default)
  serve             serve the game over HTTP
  import <source>   import question packs from a directory or git URL
  stats             print answer statistics and scores

Flags:
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("triviatrip failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, rest, err := config.Load("triviatrip", args)
	if errors.Is(err, config.ErrHelp) {
		fmt.Fprint(os.Stderr, usage+config.Usage("triviatrip"))
		return nil
	}
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	slog.Info("Database opened successfully", "path", cfg.Database.Path)

	mode := "play"
	if len(rest) > 0 {
		mode = rest[0]
	}

	switch mode {
	case "play":
		return playTerminal(ctx, cfg, db)
	case "serve":
		return serve(ctx, cfg, db)
	case "import":
		if len(rest) < 2 {
			return errors.New("import needs a directory or git URL")
		}
		return importPacks(ctx, cfg, db, rest[1])
	case "stats":
		return printStats(ctx, db)
	default:
		fmt.Fprint(os.Stderr, usage+config.Usage("triviatrip"))
		return fmt.Errorf("unknown command %q", mode)
	}
}

func setupLogging(cfg config.LogConfig) (func(), error) {
	var out io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
		}
		out = f
		closeFn = func() { f.Close() }
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closeFn, nil
}

// newGameStack wires the player state, the API client and the question queue.
func newGameStack(ctx context.Context, cfg *config.Config, db *storage.DB, notifier queue.Notifier) (*playdata.PlayData, *queue.Queue, error) {
	pd := playdata.New(db)
	if err := pd.Initialize(ctx); err != nil {
		return nil, nil, err
	}

	client := opentdb.NewClient(opentdb.Config{
		BaseURL:  cfg.API.BaseURL,
		TokenURL: cfg.API.TokenURL,
		Timeout:  cfg.API.Timeout,
	}, &http.Client{Timeout: cfg.API.Timeout})

	q := queue.New(client, db, pd, notifier, queue.Options{
		InitialLoadCount:    cfg.Queue.InitialLoadCount,
		BackgroundLoadCount: cfg.Queue.BackgroundLoadCount,
		MinBufferThreshold:  cfg.Queue.MinBufferThreshold,
		DatabaseLoadCount:   cfg.Queue.DatabaseLoadCount,
		RateLimitDelay:      cfg.API.RateLimitDelay,
	})
	q.Initialize(ctx)
	return pd, q, nil
}

func playTerminal(ctx context.Context, cfg *config.Config, db *storage.DB) error {
	fmt.Println("Loading questions...")
	notify := queue.NotifierFunc(func(msg string) { fmt.Println("\n" + msg) })
	pd, q, err := newGameStack(ctx, cfg, db, notify)
	if err != nil {
		return err
	}
	defer q.Close()

	if player, ok := pd.CurrentPlayer(); ok {
		fmt.Printf("Welcome, %s!\n", player.Name)
	}

	sess := game.NewSession(q, pd, cfg.Game.QuestionsPerSession)
	_, err = cli.Play(ctx, os.Stdin, os.Stdout, sess)
	switch {
	case errors.Is(err, cli.ErrQuit), errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, queue.ErrNoQuestions):
		// The player has been told; there is nothing left to play.
		slog.Error("Shutting down, no questions available")
		return nil
	}
	return err
}

func serve(ctx context.Context, cfg *config.Config, db *storage.DB) error {
	pd, q, err := newGameStack(ctx, cfg, db, queue.NotifierFunc(func(msg string) {
		slog.Warn("Player notice", "message", msg)
	}))
	if err != nil {
		return err
	}
	defer q.Close()

	srv, err := web.NewServer(pd, db, func() *game.Session {
		return game.NewSession(q, pd, cfg.Game.QuestionsPerSession)
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	fmt.Printf("Serving on http://%s\n", cfg.Server.Addr)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func importPacks(ctx context.Context, cfg *config.Config, db *storage.DB, source string) error {
	report, err := packs.NewImporter(db, cfg.Packs.CacheDir).Import(ctx, source)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d new questions from %d files (%d duplicates, %d invalid, %d errors).\n",
		report.Inserted, report.Files, report.Duplicates, report.Invalid, len(report.Errors))
	for _, e := range report.Errors {
		fmt.Printf("- %s\n", e)
	}
	return nil
}

func printStats(ctx context.Context, db *storage.DB) error {
	pd := playdata.New(db)
	if err := pd.Initialize(ctx); err != nil {
		return err
	}
	player, _ := pd.CurrentPlayer()

	byCategory, err := db.GetAnswerStats(ctx, player.ID, domain.ByCategory)
	if err != nil {
		return err
	}
	byDifficulty, err := db.GetAnswerStats(ctx, player.ID, domain.ByDifficulty)
	if err != nil {
		return err
	}
	scores, err := db.GetScoresWithPlayerNames(ctx)
	if err != nil {
		return err
	}
	averages, err := db.GetAverageScores(ctx)
	if err != nil {
		return err
	}
	return cli.PrintStats(os.Stdout, player.Name, byCategory, byDifficulty, scores, averages)
}
