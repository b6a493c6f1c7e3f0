package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// AnthropicProvider Anthropic 提供商
type AnthropicProvider struct {
	llm       llms.Model
	model     string
	maxTokens int
}

// NewAnthropicProvider 创建 Anthropic 提供商
func NewAnthropicProvider(apiKey, baseURL, model string, maxTokens int) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	opts := []anthropic.Option{
		anthropic.WithToken(apiKey),
		anthropic.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}

	llm, err := anthropic.New(opts...)
	if err != nil {
		return nil, err
	}

	return &AnthropicProvider{
		llm:       llm,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Chat 聊天
func (p *AnthropicProvider) Chat(ctx context.Context, messages []Message, tools []ToolDefinition, options ...ChatOption) (*Response, error) {
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
func (p *AnthropicProvider) Close() error {
	return nil
}
