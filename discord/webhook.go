package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smallnest/relayclaw/internal/logger"
	"github.com/smallnest/relayclaw/relay"
	"go.uber.org/zap"
)

const (
	defaultAPIBase = "https://discord.com/api/v10"

	// Discord 单条消息上限 2000 字符；代码块 chunk 的正文
	// 截断到 1900，留出围栏和截断标记的余量。
	maxMessageLength   = 2000
	maxCodeBlockLength = 1900

	truncationMarker = "..."
)

// WebhookClient Discord webhook 客户端
// 通过 interaction token 把消息投递到发起交互的会话。
type WebhookClient struct {
	applicationID string
	botToken      string
	baseURL       string
	httpClient    *http.Client
}

// ClientOption 客户端选项
type ClientOption func(*WebhookClient)

// WithBaseURL 覆盖 API 地址（测试用）
func WithBaseURL(baseURL string) ClientOption {
	return func(c *WebhookClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient 覆盖 HTTP 客户端
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *WebhookClient) {
		c.httpClient = client
	}
}

// NewWebhookClient 创建 webhook 客户端
func NewWebhookClient(applicationID, botToken string, opts ...ClientOption) (*WebhookClient, error) {
	if applicationID == "" {
		return nil, fmt.Errorf("discord application id is required")
	}
	if botToken == "" {
		return nil, fmt.Errorf("discord bot token is required")
	}

	c := &WebhookClient{
		applicationID: applicationID,
		botToken:      botToken,
		baseURL:       defaultAPIBase,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Execute 投递一条普通消息
// 超过 2000 字符的内容截断到上限并以截断标记结尾，投递总会被尝试。
func (c *WebhookClient) Execute(ctx context.Context, token, content string) (*relay.DeliveryOutcome, error) {
	return c.post(ctx, token, truncateRunes(content, maxMessageLength))
}

func (c *WebhookClient) post(ctx context.Context, token, content string) (*relay.DeliveryOutcome, error) {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	url := fmt.Sprintf("%s/webhooks/%s/%s", c.baseURL, c.applicationID, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	outcome := &relay.DeliveryOutcome{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}

	if resp.StatusCode != http.StatusNoContent {
		logger.Warn("Discord API returned non-204",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", outcome.Body))
	}

	return outcome, nil
}

// streamSink 把 webhook 客户端适配成流式 chunk 的投递端
type streamSink struct {
	client *WebhookClient
	token  string
}

// StreamSink 创建绑定到单个 interaction token 的 relay.DeliverySink
// 每个 chunk 以代码块形式展示，正文先按 1900 字符截断再包围栏。
func (c *WebhookClient) StreamSink(token string) relay.DeliverySink {
	return &streamSink{client: c, token: token}
}

// Deliver 投递单个流式 chunk
func (s *streamSink) Deliver(ctx context.Context, content string) (*relay.DeliveryOutcome, error) {
	wrapped := fmt.Sprintf("```\n%s\n```", truncateRunes(content, maxCodeBlockLength))
	return s.client.post(ctx, s.token, wrapped)
}

// truncateRunes 按 rune 数截断，保证结尾带截断标记
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-len(truncationMarker)]) + truncationMarker
}
