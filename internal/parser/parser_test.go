package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expectedEntries int
		expectedQ       string
		expectedA       string
		expectedW       []string
		expectedC       string
		expectedD       string
	}{
		{
			name:            "Full entry",
			input:           "Q: What is the capital of France?\nA: Paris\nW: Lyon\nW: Nice\nW: Lille\nC: Geography\nD: easy",
			expectedEntries: 1,
			expectedQ:       "What is the capital of France?",
			expectedA:       "Paris",
			expectedW:       []string{"Lyon", "Nice", "Lille"},
			expectedC:       "Geography",
			expectedD:       "easy",
		},
		{
			name: "Multiline question",
			input: `
Q: Which of these
is a primary colour?
A: Red
W: Green
W: Purple
W: Orange
`,
			expectedEntries: 1,
			expectedQ:       "Which of these\nis a primary colour?",
			expectedA:       "Red",
			expectedW:       []string{"Green", "Purple", "Orange"},
		},
		{
			name: "Separator between entries",
			input: `
Q: First question
A: First answer
---
Q: Second question
A: Second answer
`,
			expectedEntries: 2,
		},
		{
			name: "New question starts a new entry",
			input: `
Q: First question
A: First answer
Q: Second question
A: Second answer
`,
			expectedEntries: 2,
		},
		{
			name:            "No entries, just text",
			input:           "This is a file with no questions.",
			expectedEntries: 0,
		},
		{
			name:            "Answer without question is dropped",
			input:           "A: Orphan\n---\nW: Lonely",
			expectedEntries: 0,
		},
		{
			name:            "Prefixes with no space",
			input:           "Q:Question\nA:Answer\nW:Wrong",
			expectedEntries: 1,
			expectedQ:       "Question",
			expectedA:       "Answer",
			expectedW:       []string{"Wrong"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse() returned an unexpected error: %v", err)
			}

			if len(entries) != tc.expectedEntries {
				t.Fatalf("Expected %d entries, but got %d", tc.expectedEntries, len(entries))
			}

			if tc.expectedEntries == 1 {
				e := entries[0]
				if e.Question != tc.expectedQ {
					t.Errorf("Expected Question to be '%s', but got '%s'", tc.expectedQ, e.Question)
				}
				if e.Correct != tc.expectedA {
					t.Errorf("Expected Correct to be '%s', but got '%s'", tc.expectedA, e.Correct)
				}
				if !reflect.DeepEqual(e.Wrong, tc.expectedW) {
					t.Errorf("Expected Wrong to be %q, but got %q", tc.expectedW, e.Wrong)
				}
				if e.Category != tc.expectedC {
					t.Errorf("Expected Category to be '%s', but got '%s'", tc.expectedC, e.Category)
				}
				if e.Difficulty != tc.expectedD {
					t.Errorf("Expected Difficulty to be '%s', but got '%s'", tc.expectedD, e.Difficulty)
				}
			}
		})
	}
}

func TestParseLineNumbers(t *testing.T) {
	entries, err := Parse(strings.NewReader("# Pack\n\nQ: One\nA: 1\n---\nQ: Two\nA: 2\n"))
	if err != nil {
		t.Fatalf("Parse() returned an unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, but got %d", len(entries))
	}
	if entries[0].Line != 3 || entries[1].Line != 6 {
		t.Errorf("Expected lines 3 and 6, but got %d and %d", entries[0].Line, entries[1].Line)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.md")
	if err := os.WriteFile(path, []byte("Q: Q\nA: A\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() returned an unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, but got %d", len(entries))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
