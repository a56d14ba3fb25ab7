package analyzer

import "time"

// 分析方式标签
const (
	// MethodSingle 整篇文档一次分析
	MethodSingle = "single"
	// MethodChunked 分块分析后聚合
	MethodChunked = "chunked"
)

// DocumentMeta 待分析文档的轻量元数据
// 由调用方提供，内容读取和格式解析不在分析器的职责范围内
type DocumentMeta struct {
	Name     string // 文档名（通常是文件名）
	FileType string // 文档类型标签（pdf、plaintext等）
}

// ExtractionResult 单个分块（或整篇小文档）的结构化抽取结果
// 所有列表字段不含重复项，保持首次出现的顺序
type ExtractionResult struct {
	DocumentType        string   `json:"document_type"`        // 文档类型（invoice、letter等）
	DocumentDate        string   `json:"document_date"`        // 文档落款日期（YYYY-MM-DD）
	Summary             string   `json:"summary"`              // 摘要
	Organizations       []string `json:"organizations"`        // 提及的组织机构
	People              []string `json:"people"`               // 提及的人名
	Dates               []string `json:"dates"`                // 内容中的重要日期
	Locations           []string `json:"locations"`            // 地址、城市等地点
	ReferencedDocuments []string `json:"referenced_documents"` // 引用的其他文档
	Properties          []string `json:"properties"`           // 房产地址或不动产信息
	FinancialAmounts    []string `json:"financial_amounts"`    // 金额及其上下文
	KeyInformation      []string `json:"key_information"`      // 关键事实、数字、细节
	Error               string   `json:"error,omitempty"`      // 非空表示本次抽取失败
	RawResponse         string   `json:"raw_response,omitempty"` // 解析失败时保留的原始响应
}

// Failed 判断本次抽取是否失败
func (r *ExtractionResult) Failed() bool {
	return r.Error != ""
}

// AnalysisResult 一篇文档的完整分析结果
// 单块路径下ChunkCount为1、AnalysisMethod为single；
// 分块路径下由所有分块结果聚合而成
type AnalysisResult struct {
	ExtractionResult

	ChunkCount         int       `json:"chunk_count"`              // 参与分析的分块数量
	TotalContentLength int       `json:"total_content_length"`     // 原始内容总长度
	AnalysisMethod     string    `json:"analysis_method"`          // single或chunked
	ModelName          string    `json:"llm_model"`                // 使用的模型名称
	Filename           string    `json:"filename"`                 // 文档名
	AnalyzedAt         time.Time `json:"analysis_timestamp"`       // 分析完成时间
	TokensEstimated    int       `json:"content_tokens_estimated"` // 内容token估算值

	// ChunkResults 保留每个分块的原始结果，便于排查问题
	ChunkResults []*ExtractionResult `json:"chunk_results,omitempty"`
}
