package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-analyzer-system/internal/document"
	"github.com/fyerfyer/doc-analyzer-system/internal/llm"
)

// Config 分析器配置
type Config struct {
	MaxContentTokens     int // 估算token数超过该值时走分块路径
	MaxChunkChars        int // 分块的字符预算
	LookBack             int // 分块器寻找句子边界的回溯窗口
	ExtractionMaxTokens  int // 抽取请求的最大生成token数
	SummaryMaxTokens     int // 摘要合并请求的最大生成token数
	SummaryFallbackLimit int // 摘要回退路径的长度上限
}

// DefaultAnalyzerConfig 返回默认分析器配置
// 3000个token的阈值给提示词和响应留出余量，12000字符约等于3000个token
func DefaultAnalyzerConfig() Config {
	return Config{
		MaxContentTokens:     3000,
		MaxChunkChars:        12000,
		LookBack:             200,
		ExtractionMaxTokens:  4000,
		SummaryMaxTokens:     500,
		SummaryFallbackLimit: 600,
	}
}

// Analyzer 文档分析编排器
// 根据内容大小选择单块或分块路径，驱动抽取、聚合和摘要合并。
// 单个文档内的分块严格按顺序串行处理，文档之间没有共享状态
type Analyzer struct {
	client  llm.Client               // 大模型客户端
	chunker *document.ContentChunker // 内容分块器
	prompts PromptConfig             // 提示词配置
	config  Config                   // 分析器配置
	logger  *logrus.Logger           // 日志记录器
}

// AnalyzerOption 分析器配置选项
type AnalyzerOption func(*Analyzer)

// WithConfig 设置分析器配置
func WithConfig(config Config) AnalyzerOption {
	return func(a *Analyzer) {
		a.config = config
	}
}

// WithPrompts 设置提示词配置
func WithPrompts(prompts PromptConfig) AnalyzerOption {
	return func(a *Analyzer) {
		a.prompts = prompts
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// NewAnalyzer 创建文档分析器
func NewAnalyzer(client llm.Client, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		client:  client,
		prompts: DefaultPromptConfig(),
		config:  DefaultAnalyzerConfig(),
		logger:  logrus.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.chunker = document.NewContentChunker(document.ChunkerConfig{
		MaxChunkChars: a.config.MaxChunkChars,
		LookBack:      a.config.LookBack,
	})

	return a
}

// ModelName 返回底层模型客户端的名称
func (a *Analyzer) ModelName() string {
	return a.client.Name()
}

// Analyze 分析一篇文档，返回结构化结果
// 这是分析器对外的唯一入口。预期中的失败（模型调用失败、响应
// 解析失败）都记录在结果的Error字段里，不会作为error返回
func (a *Analyzer) Analyze(ctx context.Context, content string, meta DocumentMeta) (*AnalysisResult, error) {
	if content == "" {
		return nil, fmt.Errorf("document content cannot be empty")
	}

	tokens := document.EstimateTokens(content)

	if tokens <= a.config.MaxContentTokens {
		return a.analyzeSingle(ctx, content, meta, tokens), nil
	}
	return a.analyzeChunked(ctx, content, meta, tokens), nil
}

// analyzeSingle 单块路径：整篇内容一次分析，不需要聚合
func (a *Analyzer) analyzeSingle(ctx context.Context, content string, meta DocumentMeta, tokens int) *AnalysisResult {
	a.logger.WithFields(logrus.Fields{
		"document": meta.Name,
		"tokens":   tokens,
	}).Debug("analyzing document in a single pass")

	result := a.analyzeChunk(ctx, content, meta)

	return a.annotate(&AnalysisResult{
		ExtractionResult:   *result,
		ChunkCount:         1,
		TotalContentLength: len(content),
		AnalysisMethod:     MethodSingle,
	}, meta, tokens)
}

// analyzeChunked 分块路径：切块、逐块分析、聚合、合并摘要
// 单个分块失败只影响该分块的贡献，不会中止整篇文档的处理
func (a *Analyzer) analyzeChunked(ctx context.Context, content string, meta DocumentMeta, tokens int) *AnalysisResult {
	chunks := a.chunker.Split(content)

	a.logger.WithFields(logrus.Fields{
		"document": meta.Name,
		"length":   len(content),
		"chunks":   len(chunks),
	}).Info("large document detected, analyzing in chunks")

	results := make([]*ExtractionResult, 0, len(chunks))
	for _, chunk := range chunks {
		chunkMeta := DocumentMeta{
			Name:     fmt.Sprintf("%s (chunk %d/%d)", meta.Name, chunk.Index, len(chunks)),
			FileType: meta.FileType,
		}

		a.logger.Debugf("analyzing chunk %d/%d of %s", chunk.Index, len(chunks), meta.Name)
		results = append(results, a.analyzeChunk(ctx, chunk.Text, chunkMeta))
	}

	agg, partialSummaries := AggregateResults(results, len(content))

	if len(partialSummaries) > 0 {
		a.logger.Debugf("aggregating %d partial summaries for %s", len(partialSummaries), meta.Name)
		agg.Summary = a.combineSummaries(ctx, partialSummaries, meta.Name)
	}

	return a.annotate(agg, meta, tokens)
}

// annotate 补充模型、文档名、时间戳等分析元信息
func (a *Analyzer) annotate(result *AnalysisResult, meta DocumentMeta, tokens int) *AnalysisResult {
	result.ModelName = a.client.Name()
	result.Filename = meta.Name
	result.AnalyzedAt = time.Now()
	result.TokensEstimated = tokens
	return result
}
