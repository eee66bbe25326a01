package model

import (
	"encoding/json"
	"time"
)

// Request はJSON-RPCリクエスト
// jsonrpc は省略可（指定する場合は "2.0"）
type Request struct {
	JSONRPC string          `json:"jsonrpc,omitempty"` // "2.0" または省略
	ID      any             `json:"id,omitempty"`      // string | number | null
	Method  string          `json:"method"`            // メソッド名
	Params  json.RawMessage `json:"params,omitempty"`  // 任意のオブジェクト、省略可
}

// Response はJSON-RPC 2.0レスポンス（成功時）
type Response struct {
	JSONRPC string `json:"jsonrpc"` // 常に "2.0"
	ID      any    `json:"id"`      // リクエストのIDと同一
	Result  any    `json:"result"`  // 結果エンベロープ
}

// ErrorResponse はJSON-RPC 2.0エラーレスポンス
type ErrorResponse struct {
	JSONRPC string   `json:"jsonrpc"` // 常に "2.0"
	ID      any      `json:"id"`      // リクエストのIDと同一（パース失敗時はnull）
	Error   RPCError `json:"error"`   // エラーオブジェクト
}

// RPCError はJSON-RPC 2.0エラーオブジェクト
type RPCError struct {
	Code    int        `json:"code"`           // エラーコード
	Message string     `json:"message"`        // エラーメッセージ
	Data    *ErrorData `json:"data,omitempty"` // エラー種別と追加情報
}

// ErrorData はエラーの種別と付随情報
type ErrorData struct {
	Kind    ErrorKind  `json:"kind"`
	Field   string     `json:"field,omitempty"`   // MissingParameter / InvalidParameter
	Method  string     `json:"method,omitempty"`  // UnsupportedMethod
	ResetAt *time.Time `json:"resetAt,omitempty"` // RateLimitExceeded
	Detail  string     `json:"detail,omitempty"`
}

// ErrorKind はエラー種別
type ErrorKind string

// エラー種別
const (
	KindParseError                 ErrorKind = "ParseError"
	KindInvalidRequest             ErrorKind = "InvalidRequest"
	KindUnsupportedMethod          ErrorKind = "UnsupportedMethod"
	KindMissingParameter           ErrorKind = "MissingParameter"
	KindInvalidParameter           ErrorKind = "InvalidParameter"
	KindNotFound                   ErrorKind = "NotFound"
	KindUpstreamError              ErrorKind = "UpstreamError"
	KindRateLimitExceeded          ErrorKind = "RateLimitExceeded"
	KindConcurrencyCeilingExceeded ErrorKind = "ConcurrencyCeilingExceeded"
	KindThrottled                  ErrorKind = "Throttled"
	KindInternal                   ErrorKind = "Internal"
)

// JSON-RPC 2.0 標準エラーコード
const (
	ErrCodeParseError     = -32700 // Invalid JSON
	ErrCodeInvalidRequest = -32600 // Invalid Request
	ErrCodeMethodNotFound = -32601 // Method not found
	ErrCodeInvalidParams  = -32602 // Invalid params
	ErrCodeInternalError  = -32603 // Internal error
)

// カスタムエラーコード（-32000 〜 -32099 はサーバー予約）
const (
	ErrCodeNotFound           = -32003 // Resource / tool / prompt not found
	ErrCodeUpstreamError      = -32004 // Upstream API error
	ErrCodeRateLimitExceeded  = -32010 // Daily quota exhausted
	ErrCodeConcurrencyCeiling = -32011 // Too many concurrent requests
	ErrCodeThrottled          = -32012 // Request rate too high
)

// NewResponse は成功レスポンスを生成
func NewResponse(id any, result any) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse はエラーレスポンスを生成
func NewErrorResponse(id any, code int, message string, data *ErrorData) *ErrorResponse {
	return &ErrorResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// NewParseError はパースエラーレスポンスを生成（IDはnull）
func NewParseError(detail string) *ErrorResponse {
	return NewErrorResponse(nil, ErrCodeParseError, "Parse error", &ErrorData{
		Kind:   KindParseError,
		Detail: detail,
	})
}

// NewInvalidRequest は無効リクエストエラーレスポンスを生成
func NewInvalidRequest(id any, detail string) *ErrorResponse {
	return NewErrorResponse(id, ErrCodeInvalidRequest, "Invalid Request", &ErrorData{
		Kind:   KindInvalidRequest,
		Detail: detail,
	})
}

// NewUnsupportedMethod は未対応メソッドエラーレスポンスを生成
func NewUnsupportedMethod(id any, method string) *ErrorResponse {
	return NewErrorResponse(id, ErrCodeMethodNotFound, "Unsupported method: "+method, &ErrorData{
		Kind:   KindUnsupportedMethod,
		Method: method,
	})
}

// NewMissingParameter は必須パラメータ欠落エラーレスポンスを生成
func NewMissingParameter(id any, field string) *ErrorResponse {
	return NewErrorResponse(id, ErrCodeInvalidParams, field+" parameter is required", &ErrorData{
		Kind:  KindMissingParameter,
		Field: field,
	})
}

// NewInvalidParams は無効パラメータエラーレスポンスを生成
func NewInvalidParams(id any, message string) *ErrorResponse {
	return NewErrorResponse(id, ErrCodeInvalidParams, message, &ErrorData{
		Kind: KindInvalidParameter,
	})
}

// NewInternalError は内部エラーレスポンスを生成
func NewInternalError(id any, message string) *ErrorResponse {
	return NewErrorResponse(id, ErrCodeInternalError, message, &ErrorData{
		Kind: KindInternal,
	})
}
