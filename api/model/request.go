package model

import "mime/multipart"

// AnalyzeFileRequest 文档分析请求
type AnalyzeFileRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // 待分析的文档
}

// AnalyzeTextRequest 文本分析请求
type AnalyzeTextRequest struct {
	Content  string `json:"content" binding:"required"`   // 待分析的文本内容
	Filename string `json:"filename" binding:"omitempty"` // 可选的文档名，用于结果标注
}

// AnalysisGetRequest 分析结果查询请求
type AnalysisGetRequest struct {
	ID string `uri:"id" binding:"required"` // 分析ID
}
