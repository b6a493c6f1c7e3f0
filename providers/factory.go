package providers

import "fmt"

// ProviderType 提供商类型
type ProviderType string

const (
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
	ProviderTypeOpenRouter ProviderType = "openrouter"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// NewProvider 按类型创建提供商
func NewProvider(providerType ProviderType, apiKey, baseURL, model string, maxTokens int) (Provider, error) {
	switch providerType {
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(apiKey, baseURL, model, maxTokens)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(apiKey, baseURL, model, maxTokens)
	case ProviderTypeOpenRouter:
		if baseURL == "" {
			baseURL = openRouterBaseURL
		}
		return NewOpenAIProvider(apiKey, baseURL, model, maxTokens)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
