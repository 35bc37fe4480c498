package gameid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_NewCode(t *testing.T) {
	generator := NewGenerator()

	t.Run("Codes are five upper-case alphanumeric characters", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code := generator.NewCode()

			assert.Len(t, code, codeLength)
			for _, char := range code {
				assert.True(t, strings.ContainsRune(alphabet, char), "unexpected character %c in %s", char, code)
			}
		}
	})

	t.Run("Codes are well spread", func(t *testing.T) {
		seen := make(map[string]bool)

		for i := 0; i < 100; i++ {
			seen[generator.NewCode()] = true
		}

		// collisions in 100 draws from a 36^5 space would point at a
		// broken random source
		assert.Len(t, seen, 100)
	})
}
