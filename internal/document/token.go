package document

// EstimateTokens 粗略估算文本的token数量
// 经验比例：1 token ≈ 0.75个单词 ≈ 4个字符
// 只用于判断是否需要分块以及计算分块大小，不要求精确
func EstimateTokens(text string) int {
	return len(text) / 4
}
