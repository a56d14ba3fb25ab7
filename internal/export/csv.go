package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fyerfyer/doc-analyzer-system/internal/analyzer"
)

// Document 参与CSV导出的一篇文档：分析结果加上文件层面的元信息
type Document struct {
	Result        *analyzer.AnalysisResult // 文档的分析结果
	FilePath      string                   // 文件存储路径
	FileSizeBytes int64                    // 文件大小(字节)
}

// csvHeader CSV表头，列顺序固定
var csvHeader = []string{
	"filename",
	"file_path",
	"file_type",
	"file_size_kb",
	"document_type",
	"document_date",
	"summary",
	"organizations",
	"people",
	"dates",
	"locations",
	"referenced_documents",
	"properties",
	"financial_amounts",
	"key_information",
	"content_length",
	"analysis_status",
	"analysis_error",
	"analysis_model",
	"analysis_timestamp",
	"analysis_method",
	"chunk_count",
	"content_tokens_estimated",
}

// WriteCSV 把多篇文档的分析结果写成CSV
// 列表字段用逗号加空格拼接成单元格，失败的分析也占一行，
// 状态列和错误列记录失败原因
func WriteCSV(w io.Writer, docs []Document) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %v", err)
	}

	for _, doc := range docs {
		if doc.Result == nil {
			continue
		}
		if err := writer.Write(buildRow(doc)); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %v", doc.Result.Filename, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// buildRow 把一篇文档转成一行CSV记录，顺序与csvHeader一致
func buildRow(doc Document) []string {
	r := doc.Result

	status := "Success"
	if r.Failed() {
		status = "Error"
	}

	return []string{
		r.Filename,
		doc.FilePath,
		fileTypeOf(r.Filename),
		formatKB(doc.FileSizeBytes),
		r.DocumentType,
		r.DocumentDate,
		r.Summary,
		joinList(r.Organizations),
		joinList(r.People),
		joinList(r.Dates),
		joinList(r.Locations),
		joinList(r.ReferencedDocuments),
		joinList(r.Properties),
		joinList(r.FinancialAmounts),
		joinList(r.KeyInformation),
		strconv.Itoa(r.TotalContentLength),
		status,
		r.Error,
		r.ModelName,
		r.AnalyzedAt.Format(time.RFC3339),
		r.AnalysisMethod,
		strconv.Itoa(r.ChunkCount),
		strconv.Itoa(r.TokensEstimated),
	}
}

// joinList 列表字段拼成单元格文本
func joinList(items []string) string {
	return strings.Join(items, ", ")
}

// formatKB 字节数转成保留两位小数的KB
func formatKB(bytes int64) string {
	return strconv.FormatFloat(float64(bytes)/1024, 'f', 2, 64)
}

// fileTypeOf 从文件名提取扩展名作为文件类型
func fileTypeOf(filename string) string {
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		return filename[idx:]
	}
	return ""
}
