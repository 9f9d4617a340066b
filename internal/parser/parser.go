package parser

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const (
	questionPrefix   = "Q:"
	answerPrefix     = "A:"
	wrongPrefix      = "W:"
	categoryPrefix   = "C:"
	difficultyPrefix = "D:"
	separator        = "---"
)

// Entry is one question as written in a pack file.
type Entry struct {
	Question   string
	Correct    string
	Wrong      []string
	Category   string
	Difficulty string
	Line       int // line of the Q: marker
}

type field int

const (
	seeking field = iota
	readingQuestion
	readingAnswer
	readingWrong
	readingCategory
	readingDifficulty
)

var prefixes = []struct {
	prefix string
	field  field
}{
	{questionPrefix, readingQuestion},
	{answerPrefix, readingAnswer},
	{wrongPrefix, readingWrong},
	{categoryPrefix, readingCategory},
	{difficultyPrefix, readingDifficulty},
}

// ParseFile reads a pack file from the given path and extracts all entries.
func ParseFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a pack from an io.Reader. Lines without a marker continue the
// field above them. An entry ends at "---" or at the next Q: marker; entries
// without a question are dropped.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var entries []Entry
	var current Entry
	var block []string
	state := seeking

	flushField := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(block, "\n"))
		block = nil
		switch state {
		case readingQuestion:
			current.Question = content
		case readingAnswer:
			current.Correct = content
		case readingWrong:
			current.Wrong = append(current.Wrong, content)
		case readingCategory:
			current.Category = content
		case readingDifficulty:
			current.Difficulty = content
		}
	}

	finishEntry := func() {
		flushField()
		if current.Question != "" {
			entries = append(entries, current)
		}
		current = Entry{}
		state = seeking
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if strings.TrimSpace(line) == separator {
			finishEntry()
			continue
		}

		next, content, ok := marker(line)
		if !ok {
			if state != seeking {
				block = append(block, line)
			}
			continue
		}

		if next == readingQuestion && state != seeking {
			finishEntry()
		} else {
			flushField()
		}
		if next == readingQuestion {
			current.Line = lineNo
		}
		state = next
		block = append(block, content)
	}

	finishEntry()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func marker(line string) (field, string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(line, p.prefix); ok {
			return p.field, strings.TrimPrefix(rest, " "), true
		}
	}
	return seeking, "", false
}
