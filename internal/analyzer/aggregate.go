package analyzer

// AggregateResults 将多个分块结果按顺序折叠为一个聚合结果
// 标量字段取首个非空值，列表字段按首次出现顺序精确去重合并；
// 非空summary不参与合并，按顺序收集后返回，等待摘要合并器处理。
// 这一步不丢弃、不截断任何字段
func AggregateResults(results []*ExtractionResult, totalLength int) (*AnalysisResult, []string) {
	agg := &AnalysisResult{
		ChunkCount:         len(results),
		TotalContentLength: totalLength,
		AnalysisMethod:     MethodSingle,
	}
	if len(results) > 1 {
		agg.AnalysisMethod = MethodChunked
	}

	var partialSummaries []string
	for _, result := range results {
		reduceResult(&agg.ExtractionResult, result)
		if result.Summary != "" {
			partialSummaries = append(partialSummaries, result.Summary)
		}
		agg.ChunkResults = append(agg.ChunkResults, result)
	}

	return agg, partialSummaries
}

// reduceResult 单步归并：把一个分块结果并入累加器
// 标量字段首个非空值胜出，列表字段去重追加
// summary由调用方单独收集，不在这里合并
func reduceResult(acc *ExtractionResult, next *ExtractionResult) {
	if acc.DocumentType == "" && next.DocumentType != "" {
		acc.DocumentType = next.DocumentType
	}
	if acc.DocumentDate == "" && next.DocumentDate != "" {
		acc.DocumentDate = next.DocumentDate
	}

	acc.Organizations = appendUnique(acc.Organizations, next.Organizations)
	acc.People = appendUnique(acc.People, next.People)
	acc.Dates = appendUnique(acc.Dates, next.Dates)
	acc.Locations = appendUnique(acc.Locations, next.Locations)
	acc.ReferencedDocuments = appendUnique(acc.ReferencedDocuments, next.ReferencedDocuments)
	acc.Properties = appendUnique(acc.Properties, next.Properties)
	acc.FinancialAmounts = appendUnique(acc.FinancialAmounts, next.FinancialAmounts)
	acc.KeyInformation = appendUnique(acc.KeyInformation, next.KeyInformation)
}

// appendUnique 追加items中尚未出现过的元素，保持原有顺序
// 去重按精确匹配（区分大小写）
func appendUnique(dst []string, items []string) []string {
	for _, item := range items {
		exists := false
		for _, existing := range dst {
			if existing == item {
				exists = true
				break
			}
		}
		if !exists {
			dst = append(dst, item)
		}
	}
	return dst
}
