package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/smallnest/relayclaw/config"
	"github.com/smallnest/relayclaw/internal/logger"
	"go.uber.org/zap"
)

const maxEventSize = 1 << 20 // 1MB

// Server HTTP 接入服务器
// 在本地扮演通知触发器的角色，把 POST /invoke 的事件体交给 Handler。
type Server struct {
	config  *config.ServerConfig
	handler *Handler
	server  *http.Server
	mu      sync.RWMutex
	running bool
}

// NewServer 创建接入服务器
func NewServer(cfg *config.ServerConfig, h *Handler) *Server {
	return &Server{
		config:  cfg,
		handler: h,
	}
}

// Start 启动服务器
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/invoke", s.handleInvoke)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      mux,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go func() {
		logger.Info("Ingestion server started", zap.String("addr", s.server.Addr))

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Ingestion server error", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop 停止服务器
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown ingestion server", zap.Error(err))
			return err
		}
	}

	logger.Info("Ingestion server stopped")
	return nil
}

// IsRunning 检查是否运行中
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// handleHealth 健康检查处理器
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleInvoke 事件接入处理器
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.authenticate(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	event, err := io.ReadAll(io.LimitReader(r.Body, maxEventSize))
	if err != nil {
		logger.Error("Failed to read event body", zap.Error(err))
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	logger.Info("Received event", zap.Int("content_length", len(event)))

	result := s.handler.Handle(r.Context(), event)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.StatusCode)
	w.Write([]byte(result.Body))
}

// authenticate 验证请求
// 未配置 auth_token 时放行所有请求。
func (s *Server) authenticate(r *http.Request) bool {
	if s.config.AuthToken == "" {
		return true
	}

	token := ""
	auth := r.Header.Get("Authorization")
	// 支持 "Bearer <token>" 格式
	if len(auth) > 7 && auth[:7] == "Bearer " {
		token = auth[7:]
	}
	if token == "" {
		return false
	}

	// 使用恒定时间比较防止时序攻击
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.config.AuthToken)) == 1
}
