package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultExtractionSystemPrompt 默认的结构化抽取系统提示词
// 定义抽取的字段schema，要求模型只返回合法JSON
const DefaultExtractionSystemPrompt = `You are a document analysis expert. Extract key information from documents and return structured data in JSON format.

For each document, extract the following information:
- document_type: Type of document (invoice, letter, report, contract, etc.)
- document_date: The actual date when this document/email/letter was written or sent (format: YYYY-MM-DD). Look for "Date:", "Sent:", email headers, or letter dates. This is different from dates mentioned within the content.
- summary: Brief 1-2 sentence summary of the document
- organizations: List of company/organization names mentioned
- people: List of people's names mentioned
- dates: List of important dates mentioned in the content (format: YYYY-MM-DD), excluding the document date
- locations: List of addresses, cities, places mentioned
- referenced_documents: List of other documents referenced
- key_information: List of important facts, numbers, or details
- properties: List of property addresses or real estate mentions
- financial_amounts: List of monetary amounts with context

Return only valid JSON. Use empty arrays [] for categories with no entries.`

// DefaultSummarySystemPrompt 默认的摘要合并系统提示词
const DefaultSummarySystemPrompt = `You are a document summarization expert. Your task is to combine multiple partial summaries of the same document into one coherent, comprehensive summary.

Guidelines:
1. Remove redundant information that appears in multiple summaries
2. Preserve all unique and important details from each summary
3. Create a flowing, coherent narrative that reads naturally
4. Prioritize the most important information first
5. Keep the final summary concise but comprehensive (ideally 2-4 sentences)
6. Maintain factual accuracy - don't add information not present in the source summaries

The input will be multiple summaries from different sections of the same document. Your output should be a single, well-written summary that captures the essence of the entire document.

Return only the final summary text, no additional formatting or explanation.`

// DefaultCrossReferenceSystemPrompt 默认的文档交叉引用系统提示词
const DefaultCrossReferenceSystemPrompt = `You are a document relationship analyst. Analyze multiple documents to find connections, relationships, and cross-references between them.

Identify:
- Direct references (one document mentions another)
- Common entities (same people, organizations, addresses appearing in multiple docs)
- Chronological relationships (sequence of events across documents)
- Subject matter relationships (documents about same topic/project)
- Contradictions or inconsistencies between documents

Return results in JSON format with:
- relationships: Array of relationship objects
- common_entities: Object with shared people, organizations, etc.
- timeline: Chronological sequence of events
- potential_issues: Any contradictions or concerns found

Return only valid JSON.`

// PromptConfig 提示词配置
// 创建分析器时注入，之后不再修改
type PromptConfig struct {
	ExtractionSystem     string // 结构化抽取系统提示词
	SummarySystem        string // 摘要合并系统提示词
	CrossReferenceSystem string // 交叉引用系统提示词
}

// DefaultPromptConfig 返回默认提示词配置
func DefaultPromptConfig() PromptConfig {
	return PromptConfig{
		ExtractionSystem:     DefaultExtractionSystemPrompt,
		SummarySystem:        DefaultSummarySystemPrompt,
		CrossReferenceSystem: DefaultCrossReferenceSystemPrompt,
	}
}

// buildExtractionPrompt 构造结构化抽取的用户提示词
func buildExtractionPrompt(content string, meta DocumentMeta) string {
	return fmt.Sprintf(`Analyze this document:

Filename: %s
File Type: %s

Content:
%s

Please extract the structured information as specified.`, meta.Name, meta.FileType, content)
}

// buildSummaryPrompt 构造摘要合并的用户提示词
// 每个局部摘要按顺序编号列出
func buildSummaryPrompt(summaries []string, documentName string) string {
	var summariesText strings.Builder
	for i, summary := range summaries {
		summariesText.WriteString(fmt.Sprintf("\nSummary %d:\n%s\n", i+1, summary))
	}

	context := ""
	if documentName != "" {
		context = fmt.Sprintf(" for document '%s'", documentName)
	}

	return fmt.Sprintf(`Please combine these %d partial summaries%s into one coherent summary:
%s
Final combined summary:`, len(summaries), context, summariesText.String())
}

// buildCrossReferencePrompt 构造交叉引用分析的用户提示词
func buildCrossReferencePrompt(docs []CrossRefDocument) string {
	summaries, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		summaries = []byte("[]")
	}

	return fmt.Sprintf(`Analyze relationships between these %d documents:

%s

Find all relationships and connections between these documents.`, len(docs), string(summaries))
}
