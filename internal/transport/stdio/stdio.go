// Package stdio serves the gateway's JSON-RPC router over line-delimited
// stdin/stdout.
package stdio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// MaxBufferSize はScannerの最大バッファサイズ（1MB）
const MaxBufferSize = 1024 * 1024

// ErrLineTooLong は1行がMaxBufferSizeを超えた場合のエラー
var ErrLineTooLong = errors.New("request line exceeds buffer size")

// Handler はJSON-RPCリクエストを処理するインターフェース
type Handler interface {
	Handle(ctx context.Context, requestBytes []byte) []byte
}

// Server はstdio JSON-RPCサーバー
type Server struct {
	handler Handler
	reader  io.Reader
	writer  io.Writer
	logger  *slog.Logger
}

// Option はサーバーオプション
type Option func(*Server)

// WithReader はreaderを設定（テスト用）
func WithReader(r io.Reader) Option {
	return func(s *Server) {
		s.reader = r
	}
}

// WithWriter はwriterを設定（テスト用）
func WithWriter(w io.Writer) Option {
	return func(s *Server) {
		s.writer = w
	}
}

// WithLogger はloggerを設定
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New は新しいServerを生成
func New(handler Handler, opts ...Option) *Server {
	s := &Server{
		handler: handler,
		reader:  os.Stdin,
		writer:  os.Stdout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run はEOFまたはcontextがキャンセルされるまでリクエストを1行ずつ処理する
// レスポンスも1行ずつ、リクエストと同じ順序で書き出す
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 64*1024), MaxBufferSize)

	s.logger.Info("stdio transport started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !scanner.Scan() {
			err := scanner.Err()
			if errors.Is(err, bufio.ErrTooLong) {
				return fmt.Errorf("%w: %v", ErrLineTooLong, err)
			}
			if err != nil {
				return err
			}
			// EOF: 正常終了
			s.logger.Info("stdio transport reached EOF")
			return nil
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		response := s.handler.Handle(ctx, line)

		// レスポンスは1回のWriteで改行まで書き込む
		out := make([]byte, 0, len(response)+1)
		out = append(out, response...)
		out = append(out, '\n')
		if _, err := s.writer.Write(out); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
}
