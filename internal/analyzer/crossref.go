package analyzer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fyerfyer/doc-analyzer-system/internal/llm"
)

// CrossRefDocument 参与交叉引用分析的文档概要
type CrossRefDocument struct {
	Filename       string `json:"filename"`        // 文档名
	FileType       string `json:"type"`            // 文档类型
	Description    string `json:"description"`     // 文档摘要（截断到200字符）
	ContentPreview string `json:"content_preview"` // 内容预览（截断到500字符）
}

// Relationship 文档之间的一条关系
type Relationship struct {
	Type        string   `json:"type"`        // 关系类型
	Documents   []string `json:"documents"`   // 涉及的文档
	Description string   `json:"description"` // 关系描述
}

// CommonEntities 多篇文档共同出现的实体
type CommonEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// CrossReferenceResult 交叉引用分析结果
type CrossReferenceResult struct {
	Relationships   []Relationship `json:"relationships"`
	CommonEntities  CommonEntities `json:"common_entities"`
	Timeline        []string       `json:"timeline"`
	PotentialIssues []string       `json:"potential_issues"`
	DocumentCount   int            `json:"document_count"`
	ModelName       string         `json:"llm_model"`
	Error           string         `json:"error,omitempty"`
	RawResponse     string         `json:"raw_response,omitempty"`
}

// 交叉引用提示词里预览字段的截断长度
const (
	crossRefDescriptionLimit = 200
	crossRefPreviewLimit     = 500
)

// NewCrossRefDocument 从分析结果构造交叉引用输入，预览字段按上限截断
func NewCrossRefDocument(name, fileType, description, content string) CrossRefDocument {
	return CrossRefDocument{
		Filename:       name,
		FileType:       fileType,
		Description:    truncate(description, crossRefDescriptionLimit),
		ContentPreview: truncate(content, crossRefPreviewLimit),
	}
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}

// CrossReference 交叉引用分析多篇文档之间的关系
// 与抽取路径一样，预期中的失败记录在结果的Error字段里
func (a *Analyzer) CrossReference(ctx context.Context, docs []CrossRefDocument) *CrossReferenceResult {
	result := &CrossReferenceResult{
		DocumentCount: len(docs),
		ModelName:     a.client.Name(),
	}

	if len(docs) == 0 {
		result.Error = "no documents provided"
		return result
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.prompts.CrossReferenceSystem},
		{Role: llm.RoleUser, Content: buildCrossReferencePrompt(docs)},
	}

	resp, err := a.client.Chat(ctx, messages,
		llm.WithChatMaxTokens(a.config.ExtractionMaxTokens))
	if err != nil {
		a.logger.WithError(err).Warn("cross-reference analysis failed")
		result.Error = fmt.Sprintf("Cross-reference analysis failed: %v", err)
		return result
	}

	cleaned := stripCodeFence(resp.Text)
	if err := json.Unmarshal([]byte(cleaned), result); err != nil {
		a.logger.WithError(err).Warn("failed to parse cross-reference response")
		result.Error = fmt.Sprintf("Failed to parse cross-reference response: %v", err)
		result.RawResponse = resp.Text
		// 解析失败时清掉可能被部分填充的字段
		result.Relationships = nil
		result.CommonEntities = CommonEntities{}
		result.Timeline = nil
		result.PotentialIssues = nil
	}

	// 解析成功时补回计数和模型名（模型输出里没有这些字段）
	result.DocumentCount = len(docs)
	result.ModelName = a.client.Name()

	return result
}
