package packs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/triviatrip/internal/domain"
	"github.com/conorfennell/triviatrip/internal/storage"
)

const geographyPack = `# Geography

Q: What is the capital of France?
A: Paris
W: Lyon
W: Nice
W: Lille
C: Geography
D: Easy
---
Q: Which river flows through Cairo?
A: Nile
W: Amazon
W: Danube
W: Congo
---
Q: Missing wrong answers
A: Nope
W: Only one
`

const historyPack = `Q: In which year did the Berlin Wall fall?
A: 1989
W: 1991
W: 1987
W: 1979
D: legendary
`

func writePacks(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geography.md"), []byte(geographyPack), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "more"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "more", "history.MD"), []byte(historyPack), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("Q: ignored\nA: x"), 0o644))
	return dir
}

func TestImport_LocalDirectory(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(filepath.Join(t.TempDir(), "packs.db"))
	require.NoError(t, err)
	defer db.Close()

	dir := writePacks(t)
	im := NewImporter(db, t.TempDir())

	report, err := im.Import(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 4, report.Parsed)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 2, report.Invalid)
	assert.Zero(t, report.Duplicates)
	assert.Empty(t, report.Errors)

	count, err := db.CountQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, err := db.GetLeastAnswered(ctx, 10, domain.AllPlayers())
	require.NoError(t, err)
	byText := map[string]domain.QuestionWithAnswers{}
	for _, qa := range stored {
		assert.True(t, qa.Valid())
		byText[qa.Question.Text] = qa
	}
	assert.Equal(t, domain.DifficultyEasy, byText["What is the capital of France?"].Question.Difficulty)
	nile := byText["Which river flows through Cairo?"].Question
	assert.Equal(t, "geography", nile.Category, "category defaults to the file name")
	assert.Equal(t, domain.DifficultyMedium, nile.Difficulty)

	again, err := im.Import(ctx, dir)
	require.NoError(t, err)
	assert.Zero(t, again.Inserted)
	assert.Equal(t, 2, again.Duplicates)
}

func TestImport_MissingDirectory(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "packs.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = NewImporter(db, t.TempDir()).Import(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
