package document

import (
	"strings"
)

// 句子结束符模式，用于在分块时寻找句子边界
var sentenceTerminators = []string{". ", ".\n", "! ", "!\n", "? ", "?\n"}

// Chunk 文档内容的一个分块
// Index从1开始，相邻分块之间没有重叠
type Chunk struct {
	Text  string // 分块文本内容（已去除首尾空白）
	Index int    // 分块序号，1..N
}

// Chunker 内容分块器接口
type Chunker interface {
	// Split 将内容分割成大小受限的分块
	Split(content string) []Chunk
}

// ChunkerConfig 分块器配置
type ChunkerConfig struct {
	MaxChunkChars int // 每块最大字符数
	LookBack      int // 在块尾部回溯多少字符寻找句子边界
}

// DefaultChunkerConfig 返回默认分块器配置
// 12000字符约等于3000个token，给提示词和响应留出余量
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxChunkChars: 12000,
		LookBack:      200,
	}
}

// ContentChunker 按字符预算分块并尽量保留句子边界的分块器
type ContentChunker struct {
	config ChunkerConfig
}

// NewContentChunker 创建新的内容分块器
func NewContentChunker(config ChunkerConfig) *ContentChunker {
	if config.LookBack <= 0 {
		config.LookBack = DefaultChunkerConfig().LookBack
	}
	return &ContentChunker{
		config: config,
	}
}

// Split 将内容分割成分块
// 内容不超过上限（或上限非法）时返回整体作为单个分块；
// 否则依次切出不超过上限的分块，在回溯窗口内找到句子结束符时
// 在句子边界处切分，找不到时在硬边界处切分
func (c *ContentChunker) Split(content string) []Chunk {
	maxChars := c.config.MaxChunkChars

	if maxChars <= 0 || len(content) <= maxChars {
		return c.singleChunk(content)
	}

	var chunks []Chunk
	pos := 0

	for pos < len(content) {
		end := pos + maxChars
		if end > len(content) {
			end = len(content)
		}

		// 不在内容末尾时，尝试在句子边界处切分
		if end < len(content) {
			if cut := c.findSentenceBoundary(content, pos, end); cut > pos {
				end = cut
			}
		}

		text := strings.TrimSpace(content[pos:end])
		if text != "" {
			chunks = append(chunks, Chunk{
				Text:  text,
				Index: len(chunks) + 1,
			})
		}

		pos = end
	}

	return chunks
}

// singleChunk 单分块情形
func (c *ContentChunker) singleChunk(content string) []Chunk {
	text := strings.TrimSpace(content)
	if text == "" {
		return nil
	}
	return []Chunk{{Text: text, Index: 1}}
}

// findSentenceBoundary 在[end-lookBack, end)窗口内寻找最靠右的句子结束符
// 返回结束符之后的切分位置，找不到时返回-1
// 回溯窗口不会超出分块本身的范围
func (c *ContentChunker) findSentenceBoundary(content string, start, end int) int {
	lookBack := c.config.LookBack
	if lookBack > end-start {
		lookBack = end - start
	}
	searchStart := end - lookBack

	cut := -1
	for _, term := range sentenceTerminators {
		if p := strings.LastIndex(content[searchStart:end], term); p >= 0 {
			if boundary := searchStart + p + len(term); boundary > cut {
				cut = boundary
			}
		}
	}

	return cut
}
