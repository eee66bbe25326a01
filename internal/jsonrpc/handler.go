// Package jsonrpc routes ListResources, ReadResource, ListTools, CallTool,
// ListPrompts and ReadPrompt requests to the handler registry and wraps every
// outcome in a JSON-RPC 2.0 envelope.
package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/ratelimit"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/registry"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/service"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/upstream"
)

// Handler はJSON-RPCリクエストを処理する
// リクエスト間で状態を持たない
type Handler struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// Option はHandlerのオプション
type Option func(*Handler)

// WithLogger はloggerを設定
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// New は新しいHandlerを生成
func New(reg *registry.Registry, opts ...Option) *Handler {
	h := &Handler{
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle はJSON-RPCリクエストをパースしてディスパッチ
// 戻り値は *model.Response または *model.ErrorResponse のJSON bytes
func (h *Handler) Handle(ctx context.Context, requestBytes []byte) []byte {
	// 1. パース
	var req model.Request
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		h.logger.Debug("parse error", "error", err)
		return h.encodeError(model.NewParseError(err.Error()))
	}

	// 2. バージョン確認（省略可）
	if req.JSONRPC != "" && req.JSONRPC != "2.0" {
		return h.encodeError(model.NewInvalidRequest(req.ID, "jsonrpc must be 2.0"))
	}

	// 3. method確認
	if req.Method == "" {
		return h.encodeError(model.NewInvalidRequest(req.ID, "method is required"))
	}

	// 4. ディスパッチ
	started := time.Now()
	result, err := h.safeDispatch(ctx, req.Method, req.Params)
	if err != nil {
		resp := h.mapError(req.ID, err)
		h.logError(req.Method, resp, err)
		return h.encodeError(resp)
	}
	h.logger.Debug("request completed", "method", req.Method, "duration", time.Since(started))

	// 5. 成功レスポンス
	return h.encodeResponse(model.NewResponse(req.ID, result))
}

// safeDispatch はハンドラー内のpanicをエラーに変換する
func (h *Handler) safeDispatch(ctx context.Context, name string, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()

	method, ok := ParseMethod(name)
	if !ok {
		return nil, &unsupportedMethodError{method: name}
	}
	return h.dispatch(ctx, method, params)
}

// dispatch はメソッドに応じて適切なハンドラーを呼び出す
func (h *Handler) dispatch(ctx context.Context, method Method, params json.RawMessage) (any, error) {
	switch method {
	case MethodListResources:
		return h.handleListResources(ctx)
	case MethodReadResource:
		return h.handleReadResource(ctx, params)
	case MethodListTools:
		return h.handleListTools(ctx)
	case MethodCallTool:
		return h.handleCallTool(ctx, params)
	case MethodListPrompts:
		return h.handleListPrompts(ctx)
	case MethodReadPrompt:
		return h.handleReadPrompt(ctx, params)
	default:
		return nil, &unsupportedMethodError{method: method.String()}
	}
}

// mapError はエラーをJSON-RPCエラーに変換
func (h *Handler) mapError(id any, err error) *model.ErrorResponse {
	// unsupported method
	var umErr *unsupportedMethodError
	if errors.As(err, &umErr) {
		return model.NewUnsupportedMethod(id, umErr.method)
	}

	// missing / invalid params
	var mpErr *model.MissingParameterError
	if errors.As(err, &mpErr) {
		return model.NewMissingParameter(id, mpErr.Field)
	}
	if errors.Is(err, model.ErrInvalidParameter) {
		resp := model.NewInvalidParams(id, err.Error())
		var ipErr *model.InvalidParameterError
		if errors.As(err, &ipErr) {
			resp.Error.Data.Field = ipErr.Field
		}
		return resp
	}

	// not found
	if errors.Is(err, registry.ErrNotFound) || service.IsNotFound(err) {
		return model.NewErrorResponse(id, model.ErrCodeNotFound, err.Error(), &model.ErrorData{
			Kind: model.KindNotFound,
		})
	}

	// rate limit
	var quotaErr *ratelimit.QuotaExhaustedError
	if errors.As(err, &quotaErr) {
		resetAt := quotaErr.ResetAt.UTC()
		return model.NewErrorResponse(id, model.ErrCodeRateLimitExceeded, err.Error(), &model.ErrorData{
			Kind:    model.KindRateLimitExceeded,
			ResetAt: &resetAt,
		})
	}
	if errors.Is(err, ratelimit.ErrConcurrencyCeilingExceeded) {
		return model.NewErrorResponse(id, model.ErrCodeConcurrencyCeiling, err.Error(), &model.ErrorData{
			Kind: model.KindConcurrencyCeilingExceeded,
		})
	}
	if errors.Is(err, ratelimit.ErrThrottled) {
		return model.NewErrorResponse(id, model.ErrCodeThrottled, err.Error(), &model.ErrorData{
			Kind: model.KindThrottled,
		})
	}

	// upstream
	var upErr *upstream.UpstreamError
	if errors.As(err, &upErr) {
		return model.NewErrorResponse(id, model.ErrCodeUpstreamError, err.Error(), &model.ErrorData{
			Kind:   model.KindUpstreamError,
			Detail: upErr.Message,
		})
	}
	if errors.Is(err, upstream.ErrTransport) || errors.Is(err, upstream.ErrInvalidResponse) {
		return model.NewErrorResponse(id, model.ErrCodeUpstreamError, err.Error(), &model.ErrorData{
			Kind: model.KindUpstreamError,
		})
	}

	// internal error
	return model.NewInternalError(id, err.Error())
}

func (h *Handler) logError(method string, resp *model.ErrorResponse, err error) {
	kind := model.KindInternal
	if resp.Error.Data != nil {
		kind = resp.Error.Data.Kind
	}
	if kind == model.KindInternal {
		h.logger.Error("request failed", "method", method, "kind", kind, "error", err)
		return
	}
	h.logger.Warn("request failed", "method", method, "kind", kind, "error", err)
}

func (h *Handler) encodeResponse(resp *model.Response) []byte {
	b, err := json.Marshal(resp)
	if err != nil {
		return h.encodeError(model.NewInternalError(resp.ID, "failed to encode result: "+err.Error()))
	}
	return b
}

func (h *Handler) encodeError(resp *model.ErrorResponse) []byte {
	b, _ := json.Marshal(resp)
	return b
}

// unsupportedMethodError は未対応メソッドエラー
type unsupportedMethodError struct {
	method string
}

func (e *unsupportedMethodError) Error() string {
	return "Unsupported method: " + e.method
}

// panicError はハンドラー内のpanic
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("internal error: %v", e.value)
}
