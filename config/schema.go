package config

import "time"

// Config 应用配置
type Config struct {
	Log       LogConfig       `mapstructure:"log" json:"log"`
	Discord   DiscordConfig   `mapstructure:"discord" json:"discord"`
	Provider  ProviderConfig  `mapstructure:"provider" json:"provider"`
	Agent     AgentConfig     `mapstructure:"agent" json:"agent"`
	Streaming StreamingConfig `mapstructure:"streaming" json:"streaming"`
	Tools     ToolsConfig     `mapstructure:"tools" json:"tools"`
	Server    ServerConfig    `mapstructure:"server" json:"server"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `mapstructure:"level" json:"level"`
	Development bool   `mapstructure:"development" json:"development"`
}

// DiscordConfig Discord 凭证配置
type DiscordConfig struct {
	ApplicationID string `mapstructure:"application_id" json:"application_id"`
	BotToken      string `mapstructure:"bot_token" json:"bot_token"`
}

// ProviderConfig LLM 提供商配置
type ProviderConfig struct {
	Name        string  `mapstructure:"name" json:"name"` // openai, anthropic, openrouter
	APIKey      string  `mapstructure:"api_key" json:"api_key"`
	BaseURL     string  `mapstructure:"base_url" json:"base_url"`
	Model       string  `mapstructure:"model" json:"model"`
	Temperature float64 `mapstructure:"temperature" json:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" json:"max_tokens"`
}

// AgentConfig Agent 配置
type AgentConfig struct {
	SystemPrompt    string `mapstructure:"system_prompt" json:"system_prompt"`
	MaxIterations   int    `mapstructure:"max_iterations" json:"max_iterations"`
	MaxPromptLength int    `mapstructure:"max_prompt_length" json:"max_prompt_length"`
}

// StreamingConfig 流式输出配置
type StreamingConfig struct {
	Enabled       bool `mapstructure:"enabled" json:"enabled"`
	MinLines      int  `mapstructure:"min_lines" json:"min_lines"`
	MaxBufferSize int  `mapstructure:"max_buffer_size" json:"max_buffer_size"`
}

// ToolsConfig 工具开关配置
type ToolsConfig struct {
	EnableCalculator    bool `mapstructure:"enable_calculator" json:"enable_calculator"`
	EnableCurrentTime   bool `mapstructure:"enable_current_time" json:"enable_current_time"`
	EnableHTTPRequest   bool `mapstructure:"enable_http_request" json:"enable_http_request"`
	HTTPTimeoutSeconds  int  `mapstructure:"http_timeout_seconds" json:"http_timeout_seconds"`
	EnableCustomTools   bool `mapstructure:"enable_custom_tools" json:"enable_custom_tools"`
	EnableHashGenerator bool `mapstructure:"enable_hash_generator" json:"enable_hash_generator"`
	EnableJSONFormatter bool `mapstructure:"enable_json_formatter" json:"enable_json_formatter"`
	EnableTextAnalyzer  bool `mapstructure:"enable_text_analyzer" json:"enable_text_analyzer"`
}

// ServerConfig 接入服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host" json:"host"`
	Port         int           `mapstructure:"port" json:"port"`
	AuthToken    string        `mapstructure:"auth_token" json:"auth_token"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
}
