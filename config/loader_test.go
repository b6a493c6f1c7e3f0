package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected non-nil config")
	}

	if cfg.Provider.Name == "" {
		t.Error("Expected default provider name to be set")
	}
	if cfg.Agent.MaxIterations == 0 {
		t.Error("Expected default max_iterations to be set")
	}
	if cfg.Streaming.MinLines != 1 {
		t.Errorf("Expected default min_lines 1, got %d", cfg.Streaming.MinLines)
	}
	if cfg.Streaming.MaxBufferSize != 1500 {
		t.Errorf("Expected default max_buffer_size 1500, got %d", cfg.Streaming.MaxBufferSize)
	}
	if !cfg.Streaming.Enabled {
		t.Error("Expected streaming enabled by default")
	}
	if cfg.Server.Port == 0 {
		t.Error("Expected default server port to be set")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `{
		"discord": {
			"application_id": "123456789",
			"bot_token": "bot-token-abcdef"
		},
		"provider": {
			"name": "openai",
			"api_key": "test-key-12345",
			"model": "gpt-4o-mini",
			"temperature": 0.2,
			"max_tokens": 2048
		},
		"streaming": {
			"enabled": false,
			"min_lines": 3,
			"max_buffer_size": 800
		},
		"server": {
			"host": "0.0.0.0",
			"port": 9000
		}
	}`

	configPath := filepath.Join(tmpDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Discord.ApplicationID != "123456789" {
		t.Errorf("Expected application_id '123456789', got '%s'", cfg.Discord.ApplicationID)
	}
	if cfg.Provider.Name != "openai" {
		t.Errorf("Expected provider 'openai', got '%s'", cfg.Provider.Name)
	}
	if cfg.Provider.Temperature != 0.2 {
		t.Errorf("Expected temperature 0.2, got %f", cfg.Provider.Temperature)
	}
	if cfg.Streaming.Enabled {
		t.Error("Expected streaming disabled")
	}
	if cfg.Streaming.MinLines != 3 {
		t.Errorf("Expected min_lines 3, got %d", cfg.Streaming.MinLines)
	}
	if cfg.Streaming.MaxBufferSize != 800 {
		t.Errorf("Expected max_buffer_size 800, got %d", cfg.Streaming.MaxBufferSize)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	// 未出现在文件中的字段落回默认值
	if cfg.Agent.MaxPromptLength != 10000 {
		t.Errorf("Expected default max_prompt_length, got %d", cfg.Agent.MaxPromptLength)
	}
}

func validConfig() *Config {
	return &Config{
		Discord: DiscordConfig{
			ApplicationID: "123456789",
			BotToken:      "bot-token-abcdef",
		},
		Provider: ProviderConfig{
			Name:        "anthropic",
			APIKey:      "sk-test-key-123456789",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Agent: AgentConfig{
			MaxIterations:   10,
			MaxPromptLength: 10000,
		},
		Streaming: StreamingConfig{
			Enabled:       true,
			MinLines:      1,
			MaxBufferSize: 1500,
		},
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing application id", mutate: func(c *Config) { c.Discord.ApplicationID = "" }, wantErr: true},
		{name: "missing bot token", mutate: func(c *Config) { c.Discord.BotToken = "  " }, wantErr: true},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider.Name = "bard" }, wantErr: true},
		{name: "short api key", mutate: func(c *Config) { c.Provider.APIKey = "short" }, wantErr: true},
		{name: "temperature out of range", mutate: func(c *Config) { c.Provider.Temperature = 2.5 }, wantErr: true},
		{name: "zero min lines", mutate: func(c *Config) { c.Streaming.MinLines = 0 }, wantErr: true},
		{name: "negative buffer", mutate: func(c *Config) { c.Streaming.MaxBufferSize = -1 }, wantErr: true},
		{name: "zero prompt limit", mutate: func(c *Config) { c.Agent.MaxPromptLength = 0 }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
