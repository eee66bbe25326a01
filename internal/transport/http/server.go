// Package http serves the gateway's JSON-RPC router over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// DefaultAddr はAddr未設定時のlisten address
	DefaultAddr = "127.0.0.1:8765"
	// MaxBodySize はリクエストボディの上限（1MB）
	MaxBodySize = 1024 * 1024
	// ReadHeaderTimeout はヘッダー読み取りのタイムアウト
	ReadHeaderTimeout = 10 * time.Second
	// ShutdownTimeout はGraceful Shutdownの待ち時間
	ShutdownTimeout = 5 * time.Second
)

// Handler はJSON-RPCリクエストを処理する
type Handler interface {
	Handle(ctx context.Context, requestBytes []byte) []byte
}

// HealthFunc は /healthz に含める状態を返す
type HealthFunc func() any

// Config はHTTPサーバー設定
type Config struct {
	Addr        string   // listen address (例: "127.0.0.1:8765")
	CORSOrigins []string // 許可するオリジンリスト、空ならCORS無効
}

// Server はHTTP JSON-RPCサーバー
type Server struct {
	handler Handler
	config  Config
	health  HealthFunc
	logger  *slog.Logger
	router  chi.Router
	srv     *http.Server
}

// Option はServerのオプション
type Option func(*Server)

// WithHealth は /healthz の状態取得関数を設定
func WithHealth(fn HealthFunc) Option {
	return func(s *Server) {
		s.health = fn
	}
}

// WithLogger はloggerを設定
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New は新しいServerを生成
func New(handler Handler, config Config, opts ...Option) *Server {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	s := &Server{
		handler: handler,
		config:  config,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Post("/rpc", s.handleRPC)
	r.Options("/rpc", s.handlePreflight)
	r.Get("/healthz", s.handleHealth)
	s.router = r

	s.srv = &http.Server{
		Addr:              config.Addr,
		Handler:           r,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
	return s
}

// ServeHTTP はルーターに委譲する
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run はサーバーを起動し、contextがキャンセルされるまで実行
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http shutdown failed", "error", err)
		}
	}()

	s.logger.Info("http transport listening", "addr", s.config.Addr)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		// Graceful shutdownはエラーではない
		return nil
	}
	return err
}

// handleRPC はJSON-RPCリクエストを処理
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	respBytes := s.handler.Handle(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(respBytes)
}

// handlePreflight はOPTIONSリクエストに応答
func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleHealth は稼働状態を返す
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.health != nil {
		body["quota"] = s.health()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}
