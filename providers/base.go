package providers

import (
	"context"
	"encoding/json"
	"io"

	"github.com/tmc/langchaingo/llms"
)

// Message 消息
type Message struct {
	Role       string     `json:"role"` // user, assistant, system, tool
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool role
	ToolName   string     `json:"tool_name,omitempty"`    // For tool role
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For assistant role
}

// ToolCall 工具调用
type ToolCall struct {
	ID     string                 `json:"id"`
	Name   string                 `json:"name"`
	Params map[string]interface{} `json:"params"`
}

// Response LLM 响应
type Response struct {
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason"`
}

// ToolDefinition 工具定义
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Provider LLM 提供商接口
type Provider interface {
	// Chat 聊天，opts 里带 StreamSink 时模型增量文本会实时写入该 sink
	Chat(ctx context.Context, messages []Message, tools []ToolDefinition, options ...ChatOption) (*Response, error)

	// Close 关闭连接
	Close() error
}

// ChatOption 聊天选项
type ChatOption func(*ChatOptions)

// ChatOptions 聊天配置
type ChatOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	StreamSink  io.Writer
}

// WithModel 设置模型
func WithModel(model string) ChatOption {
	return func(o *ChatOptions) {
		o.Model = model
	}
}

// WithTemperature 设置温度
func WithTemperature(temp float64) ChatOption {
	return func(o *ChatOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens 设置最大 tokens
func WithMaxTokens(maxTokens int) ChatOption {
	return func(o *ChatOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithStreamSink 安装流式输出 sink
func WithStreamSink(sink io.Writer) ChatOption {
	return func(o *ChatOptions) {
		o.StreamSink = sink
	}
}

// convertMessages 转换为 LangChain 消息格式
// assistant 消息需要把历史工具调用带回去，tool 消息承载工具执行结果，
// 否则带工具的多轮对话会被模型拒绝。
func convertMessages(messages []Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "tool":
			result = append(result, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: msg.ToolCallID,
						Name:       msg.ToolName,
						Content:    msg.Content,
					},
				},
			})
		case "assistant":
			parts := []llms.ContentPart{}
			if msg.Content != "" {
				parts = append(parts, llms.TextPart(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				args, err := json.Marshal(tc.Params)
				if err != nil {
					args = []byte("{}")
				}
				parts = append(parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
			result = append(result, llms.MessageContent{
				Role:  llms.ChatMessageTypeAI,
				Parts: parts,
			})
		case "system":
			result = append(result, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))
		default:
			result = append(result, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))
		}
	}
	return result
}

// buildCallOptions 组装 LangChain 调用选项
func buildCallOptions(opts *ChatOptions, tools []ToolDefinition) []llms.CallOption {
	var llmOpts []llms.CallOption

	if opts.Model != "" {
		llmOpts = append(llmOpts, llms.WithModel(opts.Model))
	}
	if opts.Temperature > 0 {
		llmOpts = append(llmOpts, llms.WithTemperature(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		llmOpts = append(llmOpts, llms.WithMaxTokens(opts.MaxTokens))
	}

	if len(tools) > 0 {
		langchainTools := make([]llms.Tool, len(tools))
		for i, tool := range tools {
			langchainTools[i] = llms.Tool{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        tool.Name,
					Description: tool.Description,
					Parameters:  tool.Parameters,
				},
			}
		}
		llmOpts = append(llmOpts, llms.WithTools(langchainTools))
	}

	if opts.StreamSink != nil {
		sink := opts.StreamSink
		llmOpts = append(llmOpts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			// sink 错误不终止生成，流式投递是尽力而为
			_, _ = sink.Write(chunk)
			return nil
		}))
	}

	return llmOpts
}

// parseResponse 解析 LangChain 响应
func parseResponse(completion *llms.ContentResponse) (*Response, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return &Response{FinishReason: "stop"}, nil
	}

	choice := completion.Choices[0]

	var toolCalls []ToolCall
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		var params map[string]interface{}
		if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &params); err != nil {
			params = map[string]interface{}{}
		}
		toolCalls = append(toolCalls, ToolCall{
			ID:     tc.ID,
			Name:   tc.FunctionCall.Name,
			Params: params,
		})
	}

	return &Response{
		Content:      choice.Content,
		ToolCalls:    toolCalls,
		FinishReason: "stop",
	}, nil
}
