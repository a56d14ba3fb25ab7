package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fyerfyer/doc-analyzer-system/internal/llm"
)

// analyzeChunk 分析单个分块的内容
// 所有失败都折叠进结果的Error字段，不向上传播
// 重试策略属于llm客户端，这一层不做重试
func (a *Analyzer) analyzeChunk(ctx context.Context, content string, meta DocumentMeta) *ExtractionResult {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.prompts.ExtractionSystem},
		{Role: llm.RoleUser, Content: buildExtractionPrompt(content, meta)},
	}

	resp, err := a.client.Chat(ctx, messages,
		llm.WithChatMaxTokens(a.config.ExtractionMaxTokens))
	if err != nil {
		a.logger.WithError(err).Warnf("llm analysis failed for %s", meta.Name)
		return &ExtractionResult{
			Error: fmt.Sprintf("LLM analysis failed: %v", err),
		}
	}

	result, err := parseExtraction(resp.Text)
	if err != nil {
		a.logger.WithError(err).Warnf("failed to parse llm response for %s", meta.Name)
		return &ExtractionResult{
			Error:       fmt.Sprintf("Failed to parse LLM response as JSON: %v", err),
			RawResponse: resp.Text,
		}
	}

	return result
}

// parseExtraction 把模型的原始响应解析为抽取结果
// 模型输出是不可信的外部输入：先去掉可能的代码围栏，
// 再逐字段校验取值，类型不符的字段直接忽略，多余字段丢弃
func parseExtraction(raw string) (*ExtractionResult, error) {
	cleaned := stripCodeFence(raw)

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}

	result := &ExtractionResult{
		DocumentType:        asString(payload["document_type"]),
		DocumentDate:        asString(payload["document_date"]),
		Summary:             asString(payload["summary"]),
		Organizations:       asStringList(payload["organizations"]),
		People:              asStringList(payload["people"]),
		Dates:               asStringList(payload["dates"]),
		Locations:           asStringList(payload["locations"]),
		ReferencedDocuments: asStringList(payload["referenced_documents"]),
		Properties:          asStringList(payload["properties"]),
		FinancialAmounts:    asStringList(payload["financial_amounts"]),
		KeyInformation:      asStringList(payload["key_information"]),
	}

	return result, nil
}

// stripCodeFence 去掉响应外层可能存在的三反引号围栏
// 支持```json和```两种形式，没有围栏时原样返回
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	// 去掉开头的围栏标记（可能带json标注）和结尾的围栏
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimPrefix(trimmed, "json")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	return strings.TrimSpace(trimmed)
}

// asString 从不可信取值中提取字符串，类型不符时返回空串
func asString(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// asStringList 从不可信取值中提取字符串列表
// 列表中的非字符串元素被跳过
func asStringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}

	var result []string
	for _, item := range items {
		if s := asString(item); s != "" {
			result = append(result, s)
		}
	}
	return result
}
