package analyzer

import (
	"context"
	"strings"

	"github.com/fyerfyer/doc-analyzer-system/internal/llm"
)

// combineSummaries 将多个局部摘要合并为一个整体摘要
// 0个摘要返回空串；1个摘要原样返回（不调用模型）；
// 多个摘要优先用模型合并，任何失败都回退到确定性的拼接路径。
// 这个方法永远不会返回错误
func (a *Analyzer) combineSummaries(ctx context.Context, summaries []string, documentName string) string {
	if len(summaries) == 0 {
		return ""
	}
	if len(summaries) == 1 {
		return summaries[0]
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.prompts.SummarySystem},
		{Role: llm.RoleUser, Content: buildSummaryPrompt(summaries, documentName)},
	}

	resp, err := a.client.Chat(ctx, messages,
		llm.WithChatMaxTokens(a.config.SummaryMaxTokens))
	if err != nil {
		a.logger.WithError(err).Warnf("llm summary aggregation failed for %s, falling back to concatenation", documentName)
		return fallbackCombine(summaries, a.config.SummaryFallbackLimit)
	}

	combined := strings.TrimSpace(resp.Text)
	if combined == "" {
		a.logger.Warnf("empty summary aggregation response for %s, falling back to concatenation", documentName)
		return fallbackCombine(summaries, a.config.SummaryFallbackLimit)
	}

	return stripWrappingQuotes(combined)
}

// fallbackCombine 确定性的摘要合并回退路径
// 用单个空格拼接全部摘要，超过上限时截断并追加省略号
func fallbackCombine(summaries []string, limit int) string {
	combined := strings.Join(summaries, " ")
	if limit > 0 && len(combined) > limit {
		combined = combined[:limit] + "..."
	}
	return combined
}

// stripWrappingQuotes 模型有时会把整段摘要包在一对引号里，去掉一层
func stripWrappingQuotes(text string) string {
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		return text[1 : len(text)-1]
	}
	return text
}
