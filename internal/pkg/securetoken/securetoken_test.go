package securetoken

import (
	"strings"
	"testing"
)

func TestGenerate_InvalidLength(t *testing.T) {
	t.Parallel()

	if _, err := Generate(0); err == nil {
		t.Fatalf("expected error for invalid length")
	}
}

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	t.Parallel()

	token, err := Generate(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(token) != 10 {
		t.Fatalf("expected token length 10, got %d", len(token))
	}

	for i := 0; i < len(token); i++ {
		if strings.IndexByte(alphabet, token[i]) == -1 {
			t.Fatalf("token contains invalid character %q", token[i])
		}
	}
}

func TestSubmissionToken_UniqueWithinSmallBatch(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		token, err := SubmissionToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(token) != SubmissionTokenLength {
			t.Fatalf("unexpected token length %d", len(token))
		}
		if _, exists := seen[token]; exists {
			t.Fatalf("duplicate token generated in small batch: %s", token)
		}
		seen[token] = struct{}{}
	}
}
