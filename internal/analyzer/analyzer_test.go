package analyzer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLargeContent 构造指定长度以上的句子文本
func buildLargeContent(minLen int) string {
	var b strings.Builder
	i := 0
	for b.Len() < minLen {
		i++
		b.WriteString(fmt.Sprintf("Paragraph %d of the annual operations report covers revenue and staffing. ", i))
	}
	return b.String()
}

// TestAnalyzeEmptyContent 测试空内容返回错误
func TestAnalyzeEmptyContent(t *testing.T) {
	fake := &fakeLLMClient{}
	a := newTestAnalyzer(fake)

	result, err := a.Analyze(context.Background(), "", DocumentMeta{Name: "empty.txt"})
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, fake.extractCalls, "空内容不应触发模型调用")
}

// TestAnalyzeSinglePath 测试小文档走单块路径
func TestAnalyzeSinglePath(t *testing.T) {
	fake := &fakeLLMClient{
		extractResponses: []string{`{
			"document_type": "invoice",
			"summary": "A short invoice.",
			"organizations": ["Acme Corp"]
		}`},
	}
	a := newTestAnalyzer(fake)

	content := "Invoice from Acme Corp for services rendered in March."
	result, err := a.Analyze(context.Background(), content, DocumentMeta{Name: "invoice.txt", FileType: ".txt"})
	require.NoError(t, err)

	assert.Len(t, fake.extractCalls, 1)
	assert.Empty(t, fake.summaryCalls, "单块路径不应有摘要合并调用")

	assert.Equal(t, 1, result.ChunkCount)
	assert.Equal(t, MethodSingle, result.AnalysisMethod)
	assert.Equal(t, "invoice", result.DocumentType)
	assert.Equal(t, "A short invoice.", result.Summary)
	assert.Equal(t, []string{"Acme Corp"}, result.Organizations)
	assert.Equal(t, len(content), result.TotalContentLength)

	// 元信息注解
	assert.Equal(t, "fake-model", result.ModelName)
	assert.Equal(t, "invoice.txt", result.Filename)
	assert.Equal(t, len(content)/4, result.TokensEstimated)
	assert.False(t, result.AnalyzedAt.IsZero())
}

// TestAnalyzeChunkedEndToEnd 测试大文档的完整分块分析流程
// 约20000字符的文档在12000字符的分块预算下应切成2块
func TestAnalyzeChunkedEndToEnd(t *testing.T) {
	fake := &fakeLLMClient{
		extractResponses: []string{
			`{
				"document_type": "report",
				"document_date": "2024-03-15",
				"summary": "First section on revenue.",
				"organizations": ["Acme Corp"],
				"people": ["Alice"]
			}`,
			`{
				"document_type": "letter",
				"summary": "Second section on staffing.",
				"organizations": ["Acme Corp", "Globex"],
				"people": ["Bob"]
			}`,
		},
		summaryResponse: "The report covers revenue and staffing.",
	}
	a := newTestAnalyzer(fake)

	content := buildLargeContent(20000)
	result, err := a.Analyze(context.Background(), content, DocumentMeta{Name: "report.pdf", FileType: ".pdf"})
	require.NoError(t, err)

	require.Len(t, fake.extractCalls, 2, "20000字符应切成2块")
	require.Len(t, fake.summaryCalls, 1)

	assert.Equal(t, 2, result.ChunkCount)
	assert.Equal(t, MethodChunked, result.AnalysisMethod)
	assert.Equal(t, len(content), result.TotalContentLength)

	// 每个分块的提示词带有分块标注
	assert.Contains(t, fake.extractCalls[0], "report.pdf (chunk 1/2)")
	assert.Contains(t, fake.extractCalls[1], "report.pdf (chunk 2/2)")

	// 标量字段首个非空值优先，列表字段去重合并
	assert.Equal(t, "report", result.DocumentType)
	assert.Equal(t, "2024-03-15", result.DocumentDate)
	assert.Equal(t, []string{"Acme Corp", "Globex"}, result.Organizations)
	assert.Equal(t, []string{"Alice", "Bob"}, result.People)

	// 摘要来自合并调用，而不是任何单块摘要
	assert.Equal(t, "The report covers revenue and staffing.", result.Summary)
	assert.Contains(t, fake.summaryCalls[0], "Summary 1:")
	assert.Contains(t, fake.summaryCalls[0], "First section on revenue.")
	assert.Contains(t, fake.summaryCalls[0], "Second section on staffing.")

	// 分块级结果保留用于诊断
	require.Len(t, result.ChunkResults, 2)
	assert.Equal(t, "First section on revenue.", result.ChunkResults[0].Summary)
}

// TestAnalyzeChunkedPartialFailure 测试单块失败不中止整篇文档
func TestAnalyzeChunkedPartialFailure(t *testing.T) {
	fake := &fakeLLMClient{
		extractResponses: []string{
			`{
				"document_type": "contract",
				"summary": "Terms of the agreement.",
				"organizations": ["Initech"]
			}`,
			`not a json response at all`,
		},
	}
	a := newTestAnalyzer(fake)

	content := buildLargeContent(20000)
	result, err := a.Analyze(context.Background(), content, DocumentMeta{Name: "contract.md", FileType: ".md"})
	require.NoError(t, err)

	require.Len(t, fake.extractCalls, 2)

	// 失败分块仍计入分块数，成功分块的数据保留
	assert.Equal(t, 2, result.ChunkCount)
	assert.Equal(t, "contract", result.DocumentType)
	assert.Equal(t, []string{"Initech"}, result.Organizations)

	// 只有一个分块摘要时直接透传，不需要合并调用
	assert.Equal(t, "Terms of the agreement.", result.Summary)
	assert.Empty(t, fake.summaryCalls)

	require.Len(t, result.ChunkResults, 2)
	assert.False(t, result.ChunkResults[0].Failed())
	assert.True(t, result.ChunkResults[1].Failed())
	assert.Equal(t, "not a json response at all", result.ChunkResults[1].RawResponse)
}

// TestAnalyzeChunkedSummaryFallback 测试摘要合并失败时的降级拼接
func TestAnalyzeChunkedSummaryFallback(t *testing.T) {
	fake := &fakeLLMClient{
		extractResponses: []string{
			`{"summary": "Part one."}`,
			`{"summary": "Part two."}`,
		},
		summaryErr: fmt.Errorf("rate limited"),
	}
	a := newTestAnalyzer(fake)

	result, err := a.Analyze(context.Background(), buildLargeContent(20000), DocumentMeta{Name: "notes.txt"})
	require.NoError(t, err)

	require.Len(t, fake.summaryCalls, 1)
	assert.Equal(t, "Part one. Part two.", result.Summary)
}
