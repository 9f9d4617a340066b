package contenthash

import (
	"testing"
)

func TestJoin(t *testing.T) {
	joined := Join("Q", "A", []string{"B", "C", "D"})
	expected := "Q\x1fA\x1fB\x1fC\x1fD"

	if joined != expected {
		t.Errorf("Expected joined string to be %q, but got %q", expected, joined)
	}
}

func TestHash(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		// sha256 of "Q\x1fA\x1fB\x1fC\x1fD"
		expectedHash := "553fd42aed87c55c3dcd689041685a99a0a40b9b2c1e357db51e17fbe9993369"
		hash := Hash("Q", "A", []string{"B", "C", "D"})

		if hash != expectedHash {
			t.Errorf("Expected hash '%s', but got '%s'", expectedHash, hash)
		}
	})

	t.Run("hash is deterministic", func(t *testing.T) {
		h1 := Hash("What is 2+2?", "4", []string{"3", "5", "22"})
		h2 := Hash("What is 2+2?", "4", []string{"3", "5", "22"})
		if h1 != h2 {
			t.Error("Expected hashes for identical questions to be the same")
		}
		if h1 != "d06b96926dc8986c33616f67d64cfd0c569d768e4a495447fe5febf6c093b17d" {
			t.Errorf("Unexpected hash %s", h1)
		}
	})

	t.Run("hash has fixed length", func(t *testing.T) {
		for _, q := range []string{"", "short", "a much longer question text that goes on and on"} {
			if got := len(Hash(q, "x", nil)); got != 64 {
				t.Errorf("Expected 64 hex characters, got %d", got)
			}
		}
	})

	t.Run("answer order matters", func(t *testing.T) {
		h1 := Hash("Q", "A", []string{"B", "C", "D"})
		h2 := Hash("Q", "A", []string{"C", "B", "D"})
		if h1 == h2 {
			t.Error("Expected different incorrect answer order to change the hash")
		}
	})

	t.Run("correct answer is distinguished", func(t *testing.T) {
		h1 := Hash("Q", "A", []string{"B", "C", "D"})
		h2 := Hash("Q", "B", []string{"A", "C", "D"})
		if h1 == h2 {
			t.Error("Expected swapping the correct answer to change the hash")
		}
	})

	t.Run("delimiter prevents field bleed", func(t *testing.T) {
		h1 := Hash("ab", "c", nil)
		h2 := Hash("a", "bc", nil)
		if h1 == h2 {
			t.Error("Expected hashes to differ when text moves between fields")
		}
	})
}
