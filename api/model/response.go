package model

import (
	"github.com/fyerfyer/doc-analyzer-system/internal/analyzer"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// AnalyzeResponse 文档分析响应
type AnalyzeResponse struct {
	AnalysisID string                   `json:"analysis_id"` // 分析ID，用于后续查询
	Result     *analyzer.AnalysisResult `json:"result"`      // 分析结果
}

// AnalysisListResponse 分析结果列表响应
type AnalysisListResponse struct {
	Total   int                        `json:"total"`   // 结果总数
	Results []*analyzer.AnalysisResult `json:"results"` // 按分析顺序排列的结果
}
