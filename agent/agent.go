package agent

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/smallnest/relayclaw/agent/tools"
	"github.com/smallnest/relayclaw/internal/logger"
	"github.com/smallnest/relayclaw/providers"
	"go.uber.org/zap"
)

const defaultMaxIterations = 10

// Agent 工具增强的问答 agent
// 一次 Invoke 对应一次完整的工具调用循环。生成过程中模型的增量
// 文本和工具调用标记会实时写入注入的 sink，最终应答单独返回。
type Agent struct {
	provider      providers.Provider
	registry      *tools.Registry
	systemPrompt  string
	maxIterations int
	temperature   float64
	maxTokens     int
}

// Config Agent 配置
type Config struct {
	Provider      providers.Provider
	Tools         *tools.Registry
	SystemPrompt  string
	MaxIterations int
	Temperature   float64
	MaxTokens     int
}

// New 创建 Agent
func New(cfg *Config) (*Agent, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}

	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	registry := cfg.Tools
	if registry == nil {
		registry = tools.NewRegistry()
	}

	return &Agent{
		provider:      cfg.Provider,
		registry:      registry,
		systemPrompt:  cfg.SystemPrompt,
		maxIterations: maxIterations,
		temperature:   cfg.Temperature,
		maxTokens:     cfg.MaxTokens,
	}, nil
}

// Invoke 处理一条 prompt，返回最终应答文本
// sink 可以为 nil，此时不输出流式内容。
func (a *Agent) Invoke(ctx context.Context, prompt string, sink io.Writer) (string, error) {
	messages := []providers.Message{}
	if a.systemPrompt != "" {
		messages = append(messages, providers.Message{Role: "system", Content: a.systemPrompt})
	}
	messages = append(messages, providers.Message{Role: "user", Content: prompt})

	toolDefs := a.toolDefinitions()

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		logger.Info("Agent iteration",
			zap.Int("iteration", iteration),
			zap.Int("message_count", len(messages)))

		opts := []providers.ChatOption{
			providers.WithTemperature(a.temperature),
			providers.WithMaxTokens(a.maxTokens),
		}
		if sink != nil {
			opts = append(opts, providers.WithStreamSink(sink))
		}

		resp, err := a.provider.Chat(ctx, messages, toolDefs, opts...)
		if err != nil {
			return "", fmt.Errorf("LLM call failed: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			logger.Info("Agent finished",
				zap.Int("iteration", iteration),
				zap.Int("response_length", len(resp.Content)))
			return strings.TrimSpace(resp.Content), nil
		}

		messages = append(messages, providers.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			if sink != nil {
				fmt.Fprintf(sink, "[调用工具 %s]\n", tc.Name)
			}

			result, err := a.registry.Execute(ctx, tc.Name, tc.Params)
			if err != nil {
				// 工具失败不终止循环，把错误作为工具结果交还模型
				result = fmt.Sprintf("tool %s failed: %v", tc.Name, err)
			}

			messages = append(messages, providers.Message{
				Role:       "tool",
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
				Content:    result,
			})
		}
	}

	return "", fmt.Errorf("no final response after %d iterations", a.maxIterations)
}

// ToolCount 返回可用工具数量
func (a *Agent) ToolCount() int {
	return a.registry.Count()
}

func (a *Agent) toolDefinitions() []providers.ToolDefinition {
	list := a.registry.List()
	defs := make([]providers.ToolDefinition, 0, len(list))
	for _, t := range list {
		defs = append(defs, providers.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}
