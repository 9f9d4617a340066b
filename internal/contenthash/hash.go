package contenthash

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Delimiter separates the hashed fields. The unit separator does not occur
// in trivia text, so "a|b" + "c" can never collide with "a" + "b|c".
const Delimiter = "\x1f"

// Join concatenates the question text, the correct answer and the incorrect
// answers, in that order, with Delimiter between each part.
func Join(question, correct string, incorrect []string) string {
	parts := make([]string, 0, len(incorrect)+2)
	parts = append(parts, question, correct)
	parts = append(parts, incorrect...)
	return strings.Join(parts, Delimiter)
}

// Hash returns the SHA-256 of Join as a 64 character hex string.
// It is the dedup key for questions, so it must stay stable across fetches.
func Hash(question, correct string, incorrect []string) string {
	sum := sha256.Sum256([]byte(Join(question, correct, incorrect)))
	return fmt.Sprintf("%x", sum)
}
