package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultEndpoint = "https://api.monday.com/v2"
	DefaultTimeout  = 30 * time.Second
)

// Response はGraphQLレスポンス
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// Sender は1つのGraphQLリクエストを送信する
type Sender interface {
	Send(ctx context.Context, query string, variables map[string]any) (*Response, error)
}

// SenderFunc は関数をSenderとして使うためのアダプタ
type SenderFunc func(ctx context.Context, query string, variables map[string]any) (*Response, error)

// Send はfを呼び出す
func (f SenderFunc) Send(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	return f(ctx, query, variables)
}

// HTTPSender はHTTP POSTでGraphQLを送信するSender実装
type HTTPSender struct {
	httpClient *http.Client
	endpoint   string
	apiToken   string
	apiVersion string
}

// HTTPOption はHTTPSenderのオプション
type HTTPOption func(*HTTPSender)

// WithEndpoint はエンドポイントURLを設定
func WithEndpoint(url string) HTTPOption {
	return func(s *HTTPSender) {
		s.endpoint = url
	}
}

// WithAPIVersion はAPI-Versionヘッダーを設定
func WithAPIVersion(version string) HTTPOption {
	return func(s *HTTPSender) {
		s.apiVersion = version
	}
}

// WithHTTPClient はHTTPクライアントを設定
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSender) {
		s.httpClient = client
	}
}

// NewHTTPSender は新しいHTTPSenderを生成
func NewHTTPSender(apiToken string, opts ...HTTPOption) (*HTTPSender, error) {
	if apiToken == "" {
		return nil, ErrAPITokenRequired
	}

	s := &HTTPSender{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		endpoint:   DefaultEndpoint,
		apiToken:   apiToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Send はGraphQLリクエストを送信する
func (s *HTTPSender) Send(ctx context.Context, query string, variables map[string]any) (*Response, error) {
	if variables == nil {
		variables = map[string]any{}
	}
	reqJSON, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.apiToken)
	if s.apiVersion != "" {
		req.Header.Set("API-Version", s.apiVersion)
	}
	if id := callIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// context.Canceledやcontext.DeadlineExceededはそのまま返す
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}

	var gqlResp Response
	if resp.StatusCode != http.StatusOK {
		// GraphQLのエラー本文が返ってきた場合はそちらを優先
		if json.Unmarshal(body, &gqlResp) == nil && len(gqlResp.Errors) > 0 {
			return &gqlResp, nil
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &gqlResp, nil
}
