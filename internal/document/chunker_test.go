package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSentences 生成带句子结束符的测试内容，总长度不小于minLen
func buildSentences(minLen int) string {
	var sb strings.Builder
	i := 0
	for sb.Len() < minLen {
		sb.WriteString("This is sentence number ")
		sb.WriteString(strings.Repeat("x", i%7))
		sb.WriteString(" of the test document. ")
		i++
	}
	return sb.String()
}

// TestSplitSingleChunk 测试单分块情形
func TestSplitSingleChunk(t *testing.T) {
	chunker := NewContentChunker(ChunkerConfig{MaxChunkChars: 100})

	t.Run("content within limit", func(t *testing.T) {
		content := "Short content. Fits in one chunk."
		chunks := chunker.Split(content)
		require.Len(t, chunks, 1)
		assert.Equal(t, content, chunks[0].Text)
		assert.Equal(t, 1, chunks[0].Index)
	})

	t.Run("content equal to limit", func(t *testing.T) {
		content := strings.Repeat("a", 100)
		chunks := chunker.Split(content)
		require.Len(t, chunks, 1)
		assert.Equal(t, content, chunks[0].Text)
	})

	t.Run("empty content", func(t *testing.T) {
		assert.Empty(t, chunker.Split(""))
		assert.Empty(t, chunker.Split("   \n\t  "))
	})

	t.Run("non-positive limit falls back to single chunk", func(t *testing.T) {
		c := NewContentChunker(ChunkerConfig{MaxChunkChars: 0})
		content := strings.Repeat("long content. ", 100)
		chunks := c.Split(content)
		require.Len(t, chunks, 1)
		assert.Equal(t, strings.TrimSpace(content), chunks[0].Text)
	})
}

// TestSplitSentenceBoundary 测试句子边界优先的切分
func TestSplitSentenceBoundary(t *testing.T) {
	chunker := NewContentChunker(ChunkerConfig{MaxChunkChars: 500, LookBack: 200})

	content := buildSentences(2000)
	chunks := chunker.Split(content)
	require.Greater(t, len(chunks), 1, "内容超过上限时应该产生多个分块")

	// 除最后一块外，每块都应该在句子结束符处切分
	for _, chunk := range chunks[:len(chunks)-1] {
		last := chunk.Text[len(chunk.Text)-1]
		assert.Contains(t, []byte{'.', '!', '?'}, last,
			"分块 %d 应该以句子结束符结尾: ...%q", chunk.Index, chunk.Text[len(chunk.Text)-10:])
	}

	// 分块大小不超过上限
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 500)
	}
}

// TestSplitHardBoundary 测试回溯窗口内没有句子结束符时的硬切分
func TestSplitHardBoundary(t *testing.T) {
	chunker := NewContentChunker(ChunkerConfig{MaxChunkChars: 100, LookBack: 20})

	// 没有任何句子结束符的内容
	content := strings.Repeat("abcdefghij", 30)
	chunks := chunker.Split(content)
	require.Len(t, chunks, 3)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 100)
	}

	// 硬切分不丢失任何字符
	assert.Equal(t, content, chunks[0].Text+chunks[1].Text+chunks[2].Text)
}

// TestSplitReconstruction 测试分块重组不丢词
func TestSplitReconstruction(t *testing.T) {
	chunker := NewContentChunker(ChunkerConfig{MaxChunkChars: 300, LookBack: 100})

	content := buildSentences(3000)
	chunks := chunker.Split(content)
	require.Greater(t, len(chunks), 1)

	var parts []string
	for _, chunk := range chunks {
		parts = append(parts, chunk.Text)
	}
	rejoined := strings.Join(parts, " ")

	// 切分点处只有空白差异，词序列完全一致
	assert.Equal(t, strings.Fields(content), strings.Fields(rejoined),
		"重组后的词序列应该与原内容一致")
}

// TestSplitChunkIndexes 测试分块序号连续且从1开始
func TestSplitChunkIndexes(t *testing.T) {
	chunker := NewContentChunker(ChunkerConfig{MaxChunkChars: 250, LookBack: 80})

	chunks := chunker.Split(buildSentences(2000))
	for i, chunk := range chunks {
		assert.Equal(t, i+1, chunk.Index)
		assert.NotEmpty(t, chunk.Text)
	}
}

// TestSplitLookBackClamped 测试回溯窗口大于分块时的收敛行为
func TestSplitLookBackClamped(t *testing.T) {
	// 回溯窗口远大于分块大小，不应该越过分块起点
	chunker := NewContentChunker(ChunkerConfig{MaxChunkChars: 50, LookBack: 10000})

	content := buildSentences(400)
	chunks := chunker.Split(content)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 50)
		assert.NotEmpty(t, chunk.Text)
	}
}

// TestSplitTwoChunkScenario 测试大文档精确分成两块的场景
func TestSplitTwoChunkScenario(t *testing.T) {
	// 生成20000字符左右、带周期性句子结束符的内容
	content := buildSentences(20000)[:20000]
	chunker := NewContentChunker(ChunkerConfig{MaxChunkChars: 12000, LookBack: 200})

	chunks := chunker.Split(content)
	require.Len(t, chunks, 2, "20000字符内容按12000上限应该分成两块")
	assert.Equal(t, 1, chunks[0].Index)
	assert.Equal(t, 2, chunks[1].Index)

	// 第二块紧跟在第一块（trim前）结束的位置之后
	firstEnd := strings.Index(content, chunks[1].Text)
	assert.Greater(t, firstEnd, 0)
	assert.Equal(t, strings.Fields(content), strings.Fields(chunks[0].Text+" "+chunks[1].Text))
}
