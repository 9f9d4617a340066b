package packs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/triviatrip/internal/contenthash"
	"github.com/conorfennell/triviatrip/internal/domain"
	"github.com/conorfennell/triviatrip/internal/gitsource"
	"github.com/conorfennell/triviatrip/internal/parser"
)

// Store is the persistence an import needs.
type Store interface {
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	InsertWithAnswers(ctx context.Context, qa domain.QuestionWithAnswers) (*domain.QuestionWithAnswers, error)
}

// ImportReport counts what happened to the entries of an import.
type ImportReport struct {
	Files      int
	Parsed     int
	Inserted   int
	Duplicates int
	Invalid    int
	Errors     []error
}

// packEntry is the validated form of a parsed entry.
type packEntry struct {
	Question   string   `validate:"required"`
	Correct    string   `validate:"required"`
	Wrong      []string `validate:"len=3,dive,required"`
	Category   string   `validate:"required"`
	Difficulty string   `validate:"oneof=easy medium hard"`
}

// Importer loads question packs into the store.
type Importer struct {
	store    Store
	cacheDir string
	validate *validator.Validate
}

// NewImporter creates an importer. Git packs are checked out under cacheDir.
func NewImporter(store Store, cacheDir string) *Importer {
	return &Importer{
		store:    store,
		cacheDir: cacheDir,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Import reads every .md file under source, which is either a local directory
// or a git URL, and inserts the questions that are not stored yet.
func (im *Importer) Import(ctx context.Context, source string) (ImportReport, error) {
	dir := source
	if gitsource.IsRemote(source) {
		localPath, err := gitsource.LocalPath(im.cacheDir, source)
		if err != nil {
			return ImportReport{}, err
		}
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return ImportReport{}, fmt.Errorf("failed to create pack cache directory: %w", err)
		}
		if err := gitsource.Sync(ctx, source, localPath); err != nil {
			return ImportReport{}, err
		}
		dir = localPath
	}

	slog.Info("Importing question packs", "source", source, "path", dir)
	var report ImportReport
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		im.importFile(ctx, path, &report)
		return nil
	})
	if walkErr != nil {
		return report, fmt.Errorf("failed to walk %s: %w", dir, walkErr)
	}

	slog.Info("Import complete",
		"path", dir,
		"files", report.Files,
		"parsed", report.Parsed,
		"inserted", report.Inserted,
		"duplicates", report.Duplicates,
		"invalid", report.Invalid,
		"errors", len(report.Errors),
	)
	return report, nil
}

func (im *Importer) importFile(ctx context.Context, path string, report *ImportReport) {
	entries, err := parser.ParseFile(path)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Errorf("parsing %s: %w", path, err))
		return
	}
	report.Files++
	report.Parsed += len(entries)

	defaultCategory := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, e := range entries {
		pe := packEntry{
			Question:   e.Question,
			Correct:    e.Correct,
			Wrong:      e.Wrong,
			Category:   e.Category,
			Difficulty: domain.NormalizeDifficulty(e.Difficulty),
		}
		if pe.Category == "" {
			pe.Category = defaultCategory
		}
		if pe.Difficulty == "" {
			pe.Difficulty = domain.DifficultyMedium
		}
		if err := im.validate.Struct(pe); err != nil {
			slog.Warn("Skipping invalid pack entry", "file", path, "line", e.Line, "error", err)
			report.Invalid++
			continue
		}

		hash := contenthash.Hash(pe.Question, pe.Correct, pe.Wrong)
		exists, err := im.store.ExistsByHash(ctx, hash)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("db check for %s: %w", hash, err))
			continue
		}
		if exists {
			report.Duplicates++
			continue
		}

		if _, err := im.store.InsertWithAnswers(ctx, pe.questionWithAnswers(hash)); err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("db insert for %s: %w", hash, err))
			continue
		}
		report.Inserted++
	}
}

func (pe packEntry) questionWithAnswers(hash string) domain.QuestionWithAnswers {
	options := []domain.AnswerOption{{Text: pe.Correct, IsCorrect: true}}
	for _, w := range pe.Wrong {
		options = append(options, domain.AnswerOption{Text: w})
	}
	return domain.QuestionWithAnswers{
		Question: domain.Question{
			Text:        pe.Question,
			Difficulty:  pe.Difficulty,
			Category:    pe.Category,
			ContentHash: hash,
		},
		AnswerOptions: options,
	}
}
