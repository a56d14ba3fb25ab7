package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/doc-analyzer-system/internal/llm"
)

const sampleExtractionJSON = `{
	"document_type": "invoice",
	"document_date": "2023-05-01",
	"summary": "Invoice from Acme Corp.",
	"organizations": ["Acme Corp"],
	"people": ["Alice Smith"],
	"dates": ["2023-05-15"],
	"locations": ["123 Main St, Springfield"],
	"referenced_documents": [],
	"properties": [],
	"financial_amounts": ["$1,200.00 due"],
	"key_information": ["Payment due in 14 days"]
}`

// TestStripCodeFence 测试代码围栏剥离
func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fence with surrounding whitespace", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
		{"fence only opening line", "```json", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripCodeFence(tt.input))
		})
	}
}

// TestParseExtraction 测试抽取响应的解析
func TestParseExtraction(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		result, err := parseExtraction(sampleExtractionJSON)
		require.NoError(t, err)

		assert.Equal(t, "invoice", result.DocumentType)
		assert.Equal(t, "2023-05-01", result.DocumentDate)
		assert.Equal(t, "Invoice from Acme Corp.", result.Summary)
		assert.Equal(t, []string{"Acme Corp"}, result.Organizations)
		assert.Equal(t, []string{"$1,200.00 due"}, result.FinancialAmounts)
		assert.Empty(t, result.ReferencedDocuments)
		assert.False(t, result.Failed())
	})

	t.Run("fenced payload", func(t *testing.T) {
		result, err := parseExtraction("```json\n" + sampleExtractionJSON + "\n```")
		require.NoError(t, err)
		assert.Equal(t, "invoice", result.DocumentType)
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		result, err := parseExtraction(`{"document_type": "letter", "confidence": 0.9, "extra": {"x": 1}}`)
		require.NoError(t, err)
		assert.Equal(t, "letter", result.DocumentType)
	})

	t.Run("wrong field types ignored", func(t *testing.T) {
		// 模型输出不可信：类型不符的字段按缺失处理
		result, err := parseExtraction(`{
			"document_type": 42,
			"summary": "ok",
			"organizations": "Acme Corp",
			"people": ["Alice", 7, " Bob "]
		}`)
		require.NoError(t, err)

		assert.Empty(t, result.DocumentType, "数字类型的标量字段应该被忽略")
		assert.Equal(t, "ok", result.Summary)
		assert.Nil(t, result.Organizations, "字符串类型的列表字段应该被忽略")
		assert.Equal(t, []string{"Alice", "Bob"}, result.People, "列表里的非字符串元素被跳过，字符串去除首尾空白")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parseExtraction("this is not json")
		assert.Error(t, err)
	})
}

// TestAnalyzeChunkLLMFailure 测试模型调用失败时的降级
func TestAnalyzeChunkLLMFailure(t *testing.T) {
	fake := &fakeLLMClient{extractErr: llm.NewLLMError(llm.ErrCodeNetworkError, llm.ErrMsgNetworkError)}
	a := newTestAnalyzer(fake)

	result := a.analyzeChunk(context.Background(), "some content", DocumentMeta{Name: "doc.txt"})

	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "LLM analysis failed")
	assert.Empty(t, result.Organizations, "失败时不应该有部分数据")
	assert.Empty(t, result.Summary)
}

// TestAnalyzeChunkParseFailure 测试响应解析失败时保留原始响应
func TestAnalyzeChunkParseFailure(t *testing.T) {
	fake := &fakeLLMClient{extractResponses: []string{"Sorry, I cannot do that."}}
	a := newTestAnalyzer(fake)

	result := a.analyzeChunk(context.Background(), "some content", DocumentMeta{Name: "doc.txt"})

	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "Failed to parse LLM response as JSON")
	assert.Equal(t, "Sorry, I cannot do that.", result.RawResponse, "原始响应应该保留用于排查")
}

// TestAnalyzeChunkPromptContents 测试提示词包含分块名和内容
func TestAnalyzeChunkPromptContents(t *testing.T) {
	fake := &fakeLLMClient{extractResponses: []string{sampleExtractionJSON}}
	a := newTestAnalyzer(fake)

	a.analyzeChunk(context.Background(), "the chunk body", DocumentMeta{
		Name:     "report.pdf (chunk 1/2)",
		FileType: "pdf",
	})

	require.Len(t, fake.extractCalls, 1)
	prompt := fake.extractCalls[0]
	assert.Contains(t, prompt, "report.pdf (chunk 1/2)")
	assert.Contains(t, prompt, "the chunk body")
	assert.Contains(t, prompt, "File Type: pdf")
}
