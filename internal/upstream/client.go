// Package upstream sends GraphQL requests to the upstream API under the rate limiter.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/ratelimit"
)

// Executor はクエリを実行してdataを返す
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error)
}

// Client はRateLimiterで保護されたUpstreamClient
type Client struct {
	sender  Sender
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// ClientOption はClientのオプション
type ClientOption func(*Client)

// WithLogger はloggerを設定
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient は新しいClientを生成
func NewClient(sender Sender, limiter *ratelimit.Limiter, opts ...ClientOption) *Client {
	c := &Client{
		sender:  sender,
		limiter: limiter,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute はpermitを取得してクエリを送信する
// permitは成功・失敗・panicのいずれでも1回だけ解放される。リトライは行わない
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	permit, err := c.limiter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer permit.Release()

	callID := uuid.NewString()
	ctx = withCallID(ctx, callID)
	started := time.Now()
	logger := c.logger.With("call_id", callID, "permit_id", permit.ID)
	logger.Debug("upstream call started")

	resp, err := c.sender.Send(ctx, query, variables)
	if err != nil {
		logger.Warn("upstream call failed", "error", err, "duration", time.Since(started))
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}
	if len(resp.Errors) > 0 {
		logger.Warn("upstream returned errors", "count", len(resp.Errors), "first", resp.Errors[0].Message)
		return nil, &UpstreamError{Message: resp.Errors[0].Message, Errors: resp.Errors}
	}

	logger.Debug("upstream call finished", "duration", time.Since(started))
	return resp.Data, nil
}

type callIDKey struct{}

func withCallID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callIDKey{}, id)
}

func callIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey{}).(string)
	return id
}
