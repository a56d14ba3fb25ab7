package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-analyzer-system/internal/analyzer"
	"github.com/fyerfyer/doc-analyzer-system/internal/cache"
	"github.com/fyerfyer/doc-analyzer-system/internal/document"
	"github.com/fyerfyer/doc-analyzer-system/internal/export"
	"github.com/fyerfyer/doc-analyzer-system/pkg/storage"
)

// ErrAnalysisNotFound 查询的分析结果不存在
var ErrAnalysisNotFound = errors.New("analysis not found")

// analysisRecord 一次分析的完整记录
// 结果之外还保留文件信息和内容预览，供CSV导出和交叉引用使用
type analysisRecord struct {
	result  *analyzer.AnalysisResult
	file    storage.FileInfo
	preview string
}

// AnalysisService 文档分析服务
// 负责协调文档存储、解析、分析、缓存和导出。
// 分析结果保存在内存里，按分析ID查询
type AnalysisService struct {
	storage  storage.Storage    // 文件存储服务
	analyzer *analyzer.Analyzer // 文档分析器
	cache    cache.Cache        // 分析结果缓存
	cacheTTL time.Duration      // 缓存过期时间
	timeout  time.Duration      // 单篇文档的分析超时时间
	logger   *logrus.Logger     // 日志记录器

	mu      sync.RWMutex
	records map[string]*analysisRecord // 分析ID到记录的映射
	order   []string                   // 分析ID的插入顺序
}

// AnalysisOption 分析服务配置选项
type AnalysisOption func(*AnalysisService)

// WithCache 设置分析结果缓存
func WithCache(c cache.Cache) AnalysisOption {
	return func(s *AnalysisService) {
		s.cache = c
	}
}

// WithCacheTTL 设置缓存过期时间
func WithCacheTTL(ttl time.Duration) AnalysisOption {
	return func(s *AnalysisService) {
		s.cacheTTL = ttl
	}
}

// WithTimeout 设置单篇文档的分析超时时间
func WithTimeout(timeout time.Duration) AnalysisOption {
	return func(s *AnalysisService) {
		s.timeout = timeout
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) AnalysisOption {
	return func(s *AnalysisService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewAnalysisService 创建文档分析服务
func NewAnalysisService(store storage.Storage, a *analyzer.Analyzer, opts ...AnalysisOption) *AnalysisService {
	srv := &AnalysisService{
		storage:  store,
		analyzer: a,
		timeout:  time.Minute * 5,
		logger:   logrus.New(),
		records:  make(map[string]*analysisRecord),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// AnalyzeFile 保存并分析一个上传的文档
// 文件先落入存储，再按类型解析出文本，然后走分析流程。
// 返回的分析ID可用于后续查询，这个ID也是文件在存储里的ID
func (s *AnalysisService) AnalyzeFile(ctx context.Context, reader io.Reader, filename string) (string, *analyzer.AnalysisResult, error) {
	parser, err := document.ParserFactory(filename)
	if err != nil {
		return "", nil, fmt.Errorf("unsupported file type %s: %w", filepath.Ext(filename), err)
	}

	info, err := s.storage.Save(reader, filename)
	if err != nil {
		return "", nil, fmt.Errorf("failed to store file: %w", err)
	}

	content, err := s.parseStored(parser, info)
	if err != nil {
		return "", nil, err
	}

	meta := analyzer.DocumentMeta{
		Name:     filename,
		FileType: filepath.Ext(filename),
	}

	result, err := s.analyzeContent(ctx, content, meta)
	if err != nil {
		return "", nil, err
	}

	s.record(info.ID, result, info, content)
	return info.ID, result, nil
}

// AnalyzeText 直接分析一段文本，不经过存储和解析
func (s *AnalysisService) AnalyzeText(ctx context.Context, content, name string) (string, *analyzer.AnalysisResult, error) {
	if name == "" {
		name = "untitled.txt"
	}

	meta := analyzer.DocumentMeta{
		Name:     name,
		FileType: filepath.Ext(name),
	}

	result, err := s.analyzeContent(ctx, content, meta)
	if err != nil {
		return "", nil, err
	}

	id := uuid.New().String()
	s.record(id, result, storage.FileInfo{ID: id, Name: name, Size: int64(len(content))}, content)
	return id, result, nil
}

// GetResult 按分析ID查询结果
func (s *AnalysisService) GetResult(id string) (*analyzer.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	return rec.result, nil
}

// ListResults 按分析顺序返回所有结果
func (s *AnalysisService) ListResults() []*analyzer.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*analyzer.AnalysisResult, 0, len(s.order))
	for _, id := range s.order {
		results = append(results, s.records[id].result)
	}
	return results
}

// ExportCSV 把所有分析结果导出为CSV
func (s *AnalysisService) ExportCSV(w io.Writer) error {
	s.mu.RLock()
	docs := make([]export.Document, 0, len(s.order))
	for _, id := range s.order {
		rec := s.records[id]
		docs = append(docs, export.Document{
			Result:        rec.result,
			FilePath:      rec.file.Path,
			FileSizeBytes: rec.file.Size,
		})
	}
	s.mu.RUnlock()

	return export.WriteCSV(w, docs)
}

// CrossReference 对所有已分析的文档做交叉引用分析
func (s *AnalysisService) CrossReference(ctx context.Context) *analyzer.CrossReferenceResult {
	s.mu.RLock()
	docs := make([]analyzer.CrossRefDocument, 0, len(s.order))
	for _, id := range s.order {
		rec := s.records[id]
		docs = append(docs, analyzer.NewCrossRefDocument(
			rec.result.Filename,
			fileTypeOf(rec.result.Filename),
			rec.result.Summary,
			rec.preview,
		))
	}
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.analyzer.CrossReference(ctx, docs)
}

// analyzeContent 带缓存的分析入口
// 相同内容用相同模型分析时直接命中缓存，跳过模型调用
func (s *AnalysisService) analyzeContent(ctx context.Context, content string, meta analyzer.DocumentMeta) (*analyzer.AnalysisResult, error) {
	key := ""
	if s.cache != nil {
		key = cache.ResultKey(content, s.analyzer.ModelName())

		if cached, found, err := s.cache.Get(key); err == nil && found {
			var result analyzer.AnalysisResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				s.logger.WithField("document", meta.Name).Debug("analysis cache hit")
				// 缓存的结果属于相同内容的另一篇文档，纠正文档名
				result.Filename = meta.Name
				return &result, nil
			}
			s.logger.WithError(err).Warn("failed to decode cached analysis, re-analyzing")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.analyzer.Analyze(ctx, content, meta)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && !result.Failed() {
		if data, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(key, string(data), s.cacheTTL); err != nil {
				s.logger.WithError(err).Warn("failed to cache analysis result")
			}
		}
	}

	return result, nil
}

// parseStored 从存储取回文件并解析出文本
func (s *AnalysisService) parseStored(parser document.Parser, info storage.FileInfo) (string, error) {
	reader, err := s.storage.Get(info.ID)
	if err != nil {
		return "", fmt.Errorf("failed to read stored file: %w", err)
	}
	defer reader.Close()

	content, err := parser.ParseReader(reader, info.Name)
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}
	return content, nil
}

// record 登记一条分析记录
func (s *AnalysisService) record(id string, result *analyzer.AnalysisResult, info storage.FileInfo, content string) {
	const previewLimit = 500

	preview := content
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = &analysisRecord{
		result:  result,
		file:    info,
		preview: preview,
	}
	s.order = append(s.order, id)
}

// fileTypeOf 从文件名提取扩展名作为文件类型
func fileTypeOf(filename string) string {
	return filepath.Ext(filename)
}
