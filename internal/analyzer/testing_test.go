package analyzer

import (
	"context"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/doc-analyzer-system/internal/llm"
)

// fakeLLMClient 实现llm.Client接口的测试替身
// 按消息内容区分抽取请求和摘要合并请求，分别计数
type fakeLLMClient struct {
	extractResponses []string // 依次返回的抽取响应
	summaryResponse  string   // 摘要合并响应
	extractErr       error    // 非nil时抽取调用失败
	summaryErr       error    // 非nil时摘要合并调用失败

	extractCalls []string // 记录每次抽取请求的用户提示词
	summaryCalls []string // 记录每次摘要合并请求的用户提示词
}

func (f *fakeLLMClient) Chat(ctx context.Context, messages []llm.Message, options ...llm.ChatOption) (*llm.Response, error) {
	system := messages[0].Content
	user := messages[len(messages)-1].Content

	if strings.Contains(system, "summarization expert") {
		f.summaryCalls = append(f.summaryCalls, user)
		if f.summaryErr != nil {
			return nil, f.summaryErr
		}
		return &llm.Response{Text: f.summaryResponse, ModelName: f.Name()}, nil
	}

	f.extractCalls = append(f.extractCalls, user)
	if f.extractErr != nil {
		return nil, f.extractErr
	}

	idx := len(f.extractCalls) - 1
	if idx >= len(f.extractResponses) {
		idx = len(f.extractResponses) - 1
	}
	return &llm.Response{Text: f.extractResponses[idx], ModelName: f.Name()}, nil
}

func (f *fakeLLMClient) Name() string {
	return "fake-model"
}

// quietLogger 测试用的静默日志记录器
func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
