package upstream

import (
	"errors"
	"fmt"
)

// エラー定義
var (
	ErrUpstream         = errors.New("upstream API error")
	ErrTransport        = errors.New("upstream request failed")
	ErrInvalidResponse  = errors.New("invalid upstream response")
	ErrAPITokenRequired = errors.New("api token is required")
)

// GraphQLError はレスポンスのerrors配列の要素
type GraphQLError struct {
	Message   string         `json:"message"`
	Path      []any          `json:"path,omitempty"`
	Locations []any          `json:"locations,omitempty"`
	Extension map[string]any `json:"extensions,omitempty"`
}

// UpstreamError はアプリケーションレベルのエラー
// Message は errors 配列の先頭メッセージをそのまま保持する
type UpstreamError struct {
	Message string
	Errors  []GraphQLError
}

func (e *UpstreamError) Error() string {
	return "Monday.com API Error: " + e.Message
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// APIError はHTTPステータスが200以外の場合のエラー
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrTransport
}
