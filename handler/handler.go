package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/smallnest/relayclaw/agent"
	"github.com/smallnest/relayclaw/agent/tools"
	"github.com/smallnest/relayclaw/config"
	"github.com/smallnest/relayclaw/discord"
	"github.com/smallnest/relayclaw/envelope"
	"github.com/smallnest/relayclaw/internal/logger"
	"github.com/smallnest/relayclaw/providers"
	"github.com/smallnest/relayclaw/relay"
	"go.uber.org/zap"
)

// Invoker 处理一条 prompt 并返回最终应答
type Invoker interface {
	Invoke(ctx context.Context, prompt string, sink io.Writer) (string, error)
}

// Result 一次事件处理的结果，镜像通知回调的返回结构
type Result struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Handler 事件入口
// 解析通知信封、校验 prompt、驱动 agent，并把结果送回 Discord。
type Handler struct {
	webhook         *discord.WebhookClient
	agent           Invoker
	streaming       config.StreamingConfig
	maxPromptLength int
}

// New 按配置装配完整的处理链
func New(cfg *config.Config) (*Handler, error) {
	webhook, err := discord.NewWebhookClient(cfg.Discord.ApplicationID, cfg.Discord.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook client: %w", err)
	}

	provider, err := providers.NewProvider(
		providers.ProviderType(cfg.Provider.Name),
		cfg.Provider.APIKey,
		cfg.Provider.BaseURL,
		cfg.Provider.Model,
		cfg.Provider.MaxTokens,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	registry, err := buildRegistry(&cfg.Tools)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}

	a, err := agent.New(&agent.Config{
		Provider:      provider,
		Tools:         registry,
		SystemPrompt:  cfg.Agent.SystemPrompt,
		MaxIterations: cfg.Agent.MaxIterations,
		Temperature:   cfg.Provider.Temperature,
		MaxTokens:     cfg.Provider.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	logger.Info("Handler assembled",
		zap.String("provider", cfg.Provider.Name),
		zap.Int("tool_count", a.ToolCount()),
		zap.Bool("streaming", cfg.Streaming.Enabled))

	return &Handler{
		webhook:         webhook,
		agent:           a,
		streaming:       cfg.Streaming,
		maxPromptLength: cfg.Agent.MaxPromptLength,
	}, nil
}

// buildRegistry 按开关注册工具
func buildRegistry(cfg *config.ToolsConfig) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	register := func(enabled bool, tool tools.Tool) error {
		if !enabled {
			return nil
		}
		return registry.Register(tool)
	}

	httpTimeout := time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}

	steps := []error{
		register(cfg.EnableCalculator, tools.NewCalculatorTool()),
		register(cfg.EnableCurrentTime, tools.NewCurrentTimeTool()),
		register(cfg.EnableHTTPRequest, tools.NewHTTPRequestTool(httpTimeout)),
		register(cfg.EnableCustomTools && cfg.EnableHashGenerator, tools.NewHashTool()),
		register(cfg.EnableCustomTools && cfg.EnableJSONFormatter, tools.NewJSONFormatterTool()),
		register(cfg.EnableCustomTools && cfg.EnableTextAnalyzer, tools.NewTextAnalyzerTool()),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// Handle 处理一条通知事件
// 只要 token 解析成功，目标通道一定会收到一条最终消息：正常应答、
// 校验失败的说明，或者脱敏后的内部错误提示。
func (h *Handler) Handle(ctx context.Context, event []byte) *Result {
	req, err := envelope.Parse(event)
	if err != nil {
		logger.Warn("Failed to parse event envelope", zap.Error(err))
		if req != nil && req.Token != "" {
			h.reply(ctx, req.Token, fmt.Sprintf("请求格式错误: %s", err.Error()))
		}
		return errorResult(400, err.Error())
	}

	if err := ValidatePrompt(req.Prompt, h.maxPromptLength); err != nil {
		logger.Warn("Prompt validation failed", zap.Error(err))
		h.reply(ctx, req.Token, fmt.Sprintf("请求被拒绝: %s", err.Error()))
		return errorResult(400, err.Error())
	}

	logger.Info("Processing request",
		zap.Int("prompt_length", len(req.Prompt)),
		zap.Bool("streaming", h.streaming.Enabled))

	var writer *relay.StreamWriter
	var sink io.Writer
	if h.streaming.Enabled {
		writer = relay.NewStreamWriter(
			h.webhook.StreamSink(req.Token),
			h.streaming.MinLines,
			h.streaming.MaxBufferSize,
		)
		defer writer.Close()
		sink = writer
	}

	response, err := h.agent.Invoke(ctx, req.Prompt, sink)
	if err != nil {
		logger.Error("Agent invocation failed", zap.String("error", SanitizeError(err)))
		h.reply(ctx, req.Token, "处理请求时发生内部错误，请稍后重试。")
		return errorResult(500, "Internal Server Error")
	}

	if writer != nil {
		// 先排空缓冲，保证完成消息排在所有增量块之后
		writer.FlushRemaining()
		h.reply(ctx, req.Token, fmt.Sprintf("**处理完成**\n最终响应: %s", response))
	} else {
		h.reply(ctx, req.Token, response)
	}

	body, _ := json.Marshal(map[string]interface{}{
		"message":         "Request processed successfully",
		"response_length": len(response),
	})
	return &Result{StatusCode: 200, Body: string(body)}
}

// reply 发送一条 webhook 消息，失败只记日志
func (h *Handler) reply(ctx context.Context, token, content string) {
	outcome, err := h.webhook.Execute(ctx, token, content)
	if err != nil {
		logger.Error("Failed to deliver reply", zap.Error(err))
		return
	}
	if outcome.StatusCode != 204 {
		logger.Warn("Reply delivery returned unexpected status",
			zap.Int("status", outcome.StatusCode))
	}
}

func errorResult(status int, message string) *Result {
	body, _ := json.Marshal(map[string]string{"error": message})
	return &Result{StatusCode: status, Body: string(body)}
}
