package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var globalConfig *Config

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	// 创建 viper 实例
	v := viper.New()

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认配置文件搜索路径（按优先级）
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		// 1) 当前工作目录下 .relayclaw/config.json
		v.AddConfigPath(filepath.Join(".", ".relayclaw"))
		// 2) 当前工作目录 ./config.json
		v.AddConfigPath(".")
		// 3) 用户目录 ~/.relayclaw/config.json
		v.AddConfigPath(filepath.Join(home, ".relayclaw"))
		v.SetConfigName("config")
		v.SetConfigType("json")
	}

	// 设置环境变量前缀
	v.SetEnvPrefix("RELAYCLAW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// 配置文件不存在，使用默认值和环境变量
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	// 提供商默认配置
	v.SetDefault("provider.name", "anthropic")
	v.SetDefault("provider.temperature", 0.7)
	v.SetDefault("provider.max_tokens", 4096)

	// Agent 默认配置
	v.SetDefault("agent.max_iterations", 10)
	v.SetDefault("agent.max_prompt_length", 10000)
	v.SetDefault("agent.system_prompt",
		"你是一个乐于助人的智能助手。回答要准确、简洁。"+
			"需要计算、查询时间或访问网页时请使用提供的工具。")

	// 流式输出默认配置
	v.SetDefault("streaming.enabled", true)
	v.SetDefault("streaming.min_lines", 1)
	v.SetDefault("streaming.max_buffer_size", 1500)

	// 工具默认配置
	v.SetDefault("tools.enable_calculator", true)
	v.SetDefault("tools.enable_current_time", true)
	v.SetDefault("tools.enable_http_request", true)
	v.SetDefault("tools.http_timeout_seconds", 10)
	v.SetDefault("tools.enable_custom_tools", true)
	v.SetDefault("tools.enable_hash_generator", true)
	v.SetDefault("tools.enable_json_formatter", true)
	v.SetDefault("tools.enable_text_analyzer", true)

	// 服务器默认配置
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	// Use time.Duration defaults; plain integers would become nanoseconds when unmarshaled.
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
}

// Get 获取全局配置
func Get() *Config {
	return globalConfig
}

// Validate 验证配置
func Validate(cfg *Config) error {
	if err := validateDiscord(cfg); err != nil {
		return fmt.Errorf("discord config invalid: %w", err)
	}

	if err := validateProvider(cfg); err != nil {
		return fmt.Errorf("provider config invalid: %w", err)
	}

	if err := validateAgent(cfg); err != nil {
		return fmt.Errorf("agent config invalid: %w", err)
	}

	if err := validateStreaming(cfg); err != nil {
		return fmt.Errorf("streaming config invalid: %w", err)
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("server config invalid: %w", err)
	}

	return nil
}

// validateDiscord 验证 Discord 凭证配置
func validateDiscord(cfg *Config) error {
	if strings.TrimSpace(cfg.Discord.ApplicationID) == "" {
		return fmt.Errorf("application_id cannot be empty")
	}
	if strings.TrimSpace(cfg.Discord.BotToken) == "" {
		return fmt.Errorf("bot_token cannot be empty")
	}
	return nil
}

// validateProvider 验证 LLM 提供商配置
func validateProvider(cfg *Config) error {
	switch cfg.Provider.Name {
	case "openai", "anthropic", "openrouter":
	default:
		return fmt.Errorf("name must be openai, anthropic, or openrouter")
	}

	key := strings.TrimSpace(cfg.Provider.APIKey)
	if len(key) < 10 {
		return fmt.Errorf("API key too short (minimum 10 characters)")
	}
	if strings.Contains(key, " ") {
		return fmt.Errorf("API key cannot contain spaces")
	}

	if cfg.Provider.Temperature < 0 || cfg.Provider.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if cfg.Provider.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}

	return nil
}

// validateAgent 验证 Agent 配置
func validateAgent(cfg *Config) error {
	if cfg.Agent.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive")
	}
	if cfg.Agent.MaxPromptLength <= 0 {
		return fmt.Errorf("max_prompt_length must be positive")
	}
	return nil
}

// validateStreaming 验证流式输出配置
func validateStreaming(cfg *Config) error {
	if cfg.Streaming.MinLines < 1 {
		return fmt.Errorf("min_lines must be at least 1")
	}
	if cfg.Streaming.MaxBufferSize <= 0 {
		return fmt.Errorf("max_buffer_size must be positive")
	}
	return nil
}

// validateServer 验证服务器配置
func validateServer(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}
	return nil
}
