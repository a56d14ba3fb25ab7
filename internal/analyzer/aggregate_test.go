package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAggregateDeduplication 测试列表字段的去重合并
func TestAggregateDeduplication(t *testing.T) {
	results := []*ExtractionResult{
		{
			Organizations: []string{"Acme Corp", "Globex"},
			People:        []string{"Alice Smith"},
		},
		{
			Organizations: []string{"Acme Corp", "Initech"},
			People:        []string{"Alice Smith", "Bob Jones"},
		},
	}

	agg, _ := AggregateResults(results, 100)

	assert.Equal(t, []string{"Acme Corp", "Globex", "Initech"}, agg.Organizations,
		"重复的组织名应该只出现一次，顺序按首次出现")
	assert.Equal(t, []string{"Alice Smith", "Bob Jones"}, agg.People)
}

// TestAggregateCaseSensitiveDedup 测试去重按精确匹配（区分大小写）
func TestAggregateCaseSensitiveDedup(t *testing.T) {
	results := []*ExtractionResult{
		{Organizations: []string{"Acme Corp"}},
		{Organizations: []string{"ACME CORP"}},
	}

	agg, _ := AggregateResults(results, 10)
	assert.Equal(t, []string{"Acme Corp", "ACME CORP"}, agg.Organizations)
}

// TestAggregateScalarFirstWins 测试标量字段首个非空值胜出
func TestAggregateScalarFirstWins(t *testing.T) {
	results := []*ExtractionResult{
		{DocumentType: ""},
		{DocumentType: "invoice", DocumentDate: "2023-05-01"},
		{DocumentType: "letter", DocumentDate: "2024-01-01"},
	}

	agg, _ := AggregateResults(results, 300)

	assert.Equal(t, "invoice", agg.DocumentType)
	assert.Equal(t, "2023-05-01", agg.DocumentDate)
}

// TestAggregatePartialSummaries 测试摘要单独收集而不合并
func TestAggregatePartialSummaries(t *testing.T) {
	results := []*ExtractionResult{
		{Summary: "First part."},
		{Summary: ""},
		{Summary: "Third part."},
	}

	agg, summaries := AggregateResults(results, 300)

	assert.Equal(t, []string{"First part.", "Third part."}, summaries,
		"空摘要应该被跳过，其余按分块顺序收集")
	assert.Empty(t, agg.Summary, "聚合结果的summary由摘要合并器填充，这里应该为空")
}

// TestAggregateMetadata 测试分块计数和分析方式标签
func TestAggregateMetadata(t *testing.T) {
	t.Run("multiple chunks", func(t *testing.T) {
		results := []*ExtractionResult{{}, {}, {}}
		agg, _ := AggregateResults(results, 36000)

		assert.Equal(t, 3, agg.ChunkCount)
		assert.Equal(t, 36000, agg.TotalContentLength)
		assert.Equal(t, MethodChunked, agg.AnalysisMethod)
		assert.Len(t, agg.ChunkResults, 3)
	})

	t.Run("single chunk", func(t *testing.T) {
		agg, _ := AggregateResults([]*ExtractionResult{{}}, 100)

		assert.Equal(t, 1, agg.ChunkCount)
		assert.Equal(t, MethodSingle, agg.AnalysisMethod)
	})
}

// TestAggregateFailedChunk 测试失败分块不影响其他分块的贡献
func TestAggregateFailedChunk(t *testing.T) {
	results := []*ExtractionResult{
		{Organizations: []string{"Acme Corp"}, Summary: "Part one."},
		{Error: "LLM analysis failed: timeout"},
		{Organizations: []string{"Globex"}, Summary: "Part three."},
	}

	agg, summaries := AggregateResults(results, 300)

	assert.Equal(t, []string{"Acme Corp", "Globex"}, agg.Organizations)
	assert.Equal(t, []string{"Part one.", "Part three."}, summaries)
	assert.Equal(t, 3, agg.ChunkCount, "失败的分块仍然计入分块数")

	// 失败信息保留在分块结果里
	require.Len(t, agg.ChunkResults, 3)
	assert.True(t, agg.ChunkResults[1].Failed())
}

// TestAppendUnique 测试去重追加的顺序保持
func TestAppendUnique(t *testing.T) {
	dst := appendUnique(nil, []string{"a", "b", "a"})
	assert.Equal(t, []string{"a", "b"}, dst)

	dst = appendUnique(dst, []string{"c", "b", "d"})
	assert.Equal(t, []string{"a", "b", "c", "d"}, dst)

	assert.Empty(t, appendUnique(nil, nil))
}
