// Package securetoken issues random Base62 tokens for one-shot form
// submissions and e-mail links.
package securetoken

import (
	"crypto/rand"
	"fmt"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// SubmissionTokenLength is the length of checkout submission tokens.
const SubmissionTokenLength = 32

// Generate returns a cryptographically secure random Base62 token.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid token length: %d", length)
	}

	// rejection sampling avoids modulo bias, 248 is the largest multiple of 62 below 256
	const maxRandomByte = 248

	token := make([]byte, length)
	buf := make([]byte, length*2)
	written := 0

	for written < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read secure random bytes: %w", err)
		}

		for _, b := range buf {
			if b >= maxRandomByte {
				continue
			}
			token[written] = alphabet[int(b)%len(alphabet)]
			written++
			if written == length {
				break
			}
		}
	}

	return string(token), nil
}

// SubmissionToken issues a token for a checkout draft.
func SubmissionToken() (string, error) {
	return Generate(SubmissionTokenLength)
}
