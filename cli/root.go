// Package cli 提供 relayclaw 的命令行入口
package cli

import (
	"fmt"
	"os"

	"github.com/smallnest/relayclaw/config"
	"github.com/smallnest/relayclaw/internal/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relayclaw",
	Short: "Relay AI agent responses to Discord",
	Long: `relayclaw consumes notification events carrying a Discord interaction
token and a prompt, runs a tool-enabled AI agent, and streams the
response back through the Discord webhook API.`,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")
}

// Execute 运行根命令
func Execute() error {
	return rootCmd.Execute()
}

// setup 加载配置并初始化日志
func setup() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	return cfg
}
