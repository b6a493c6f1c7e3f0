package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIProvider OpenAI 兼容提供商
// baseURL 指向 OpenRouter 等兼容网关时同样适用。
type OpenAIProvider struct {
	llm       llms.Model
	model     string
	maxTokens int
}

// NewOpenAIProvider 创建 OpenAI 提供商
func NewOpenAIProvider(apiKey, baseURL, model string, maxTokens int) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if model == "" {
		model = "gpt-4o"
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return &OpenAIProvider{
		llm:       llm,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Chat 聊天
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, tools []ToolDefinition, options ...ChatOption) (*Response, error) {
	opts := &ChatOptions{
		Model:       p.model,
		Temperature: 0.7,
		MaxTokens:   p.maxTokens,
	}
	for _, opt := range options {
		opt(opts)
	}

	completion, err := p.llm.GenerateContent(ctx, convertMessages(messages), buildCallOptions(opts, tools)...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	return parseResponse(completion)
}

// Close 关闭连接
func (p *OpenAIProvider) Close() error {
	return nil
}
