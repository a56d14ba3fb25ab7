package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEstimateTokens 测试token估算
func TestEstimateTokens(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		assert.Equal(t, 0, EstimateTokens(""))
	})

	t.Run("short text", func(t *testing.T) {
		assert.Equal(t, 0, EstimateTokens("abc"))
		assert.Equal(t, 1, EstimateTokens("abcd"))
		assert.Equal(t, 2, EstimateTokens("abcdefgh"))
	})

	t.Run("quarter of character count", func(t *testing.T) {
		text := strings.Repeat("a", 12000)
		assert.Equal(t, 3000, EstimateTokens(text))
	})

	t.Run("monotonic in length", func(t *testing.T) {
		texts := []string{"", "a", "hello", "hello world", strings.Repeat("x", 100)}
		for i := 1; i < len(texts); i++ {
			assert.LessOrEqual(t,
				EstimateTokens(texts[i-1]),
				EstimateTokens(texts[i]),
				"更长的文本估算值不应该更小")
		}
	})
}
