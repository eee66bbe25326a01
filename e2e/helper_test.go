//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/bootstrap"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/config"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
	transporthttp "github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/transport/http"
)

const testToken = "e2e-token"

// graphQLCall は偽Monday APIが受け取ったリクエスト
type graphQLCall struct {
	Query         string
	Variables     map[string]any
	Authorization string
	APIVersion    string
	RequestID     string
}

// fakeMonday はクエリ内容に応じて固定レスポンスを返すGraphQLサーバー
type fakeMonday struct {
	mu     sync.Mutex
	calls  []graphQLCall
	server *httptest.Server
	// failWith が設定されている場合はGraphQLエラーを返す
	failWith string
}

func newFakeMonday(t *testing.T) *fakeMonday {
	t.Helper()
	f := &fakeMonday{}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeMonday) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	body, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls = append(f.calls, graphQLCall{
		Query:         req.Query,
		Variables:     req.Variables,
		Authorization: r.Header.Get("Authorization"),
		APIVersion:    r.Header.Get("API-Version"),
		RequestID:     r.Header.Get("X-Request-Id"),
	})
	failWith := f.failWith
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failWith != "" {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": failWith}},
		})
		return
	}
	io.WriteString(w, `{"data":`+cannedData(req.Query)+`}`)
}

// cannedData はクエリの種類ごとの固定data
func cannedData(query string) string {
	switch {
	case strings.Contains(query, "create_item("):
		return `{"create_item":{"id":"987","name":"Implement MCP integration"}}`
	case strings.Contains(query, "change_column_value("):
		return `{"change_column_value":{"id":"987","name":"Implement MCP integration"}}`
	case strings.Contains(query, "create_update("):
		return `{"create_update":{"id":"555"}}`
	case strings.Contains(query, "items_by_person_id("):
		return `{"items_by_person_id":[{"id":"1","name":"Design","board":{"id":"12345678","name":"Roadmap"},"column_values":[]}]}`
	case strings.Contains(query, "items_by_column_values("):
		return `{"items_by_column_values":[]}`
	case strings.Contains(query, "users("):
		return `{"users":[{"id":"12345","name":"Ada","email":"ada@example.com"}]}`
	case strings.Contains(query, "columns {"):
		return `{"boards":[{"columns":[{"id":"status","title":"Status","type":"status","settings_str":"{}"}],"groups":[{"id":"topics","title":"Topics","color":"#579bfc","position":"1"}]}]}`
	case strings.Contains(query, "column_values(ids:"):
		return `{"boards":[{"items":[{"id":"1","name":"Design","column_values":[{"text":"Done"}]},{"id":"2","name":"Build","column_values":[{"text":"Working on it"}]}]}]}`
	case strings.Contains(query, "items {"):
		return `{"boards":[{"name":"Roadmap","items":[{"id":"1","name":"Design","column_values":[]}]}]}`
	default:
		return `{"boards":[{"id":"12345678","name":"Roadmap","state":"active","board_kind":"public"}]}`
	}
}

func (f *fakeMonday) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeMonday) lastCall() graphQLCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeMonday) setFailure(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = message
}

// testGateway はHTTP transport越しのゲートウェイ
type testGateway struct {
	url    string
	monday *fakeMonday
	gw     *bootstrap.Gateway
}

// setupGateway は偽Monday APIに向けたゲートウェイをHTTPで起動する
func setupGateway(t *testing.T, configJSON string) *testGateway {
	t.Helper()
	monday := newFakeMonday(t)

	for _, name := range []string{config.EnvDailyLimit, config.EnvMaxConcurrent, config.EnvCacheTTL, config.EnvRedisAddr, config.EnvLogLevel} {
		t.Setenv(name, "")
	}
	t.Setenv(config.EnvAPIToken, testToken)
	t.Setenv(config.EnvAPIURL, monday.server.URL)

	configPath := filepath.Join(t.TempDir(), "config.json")
	if configJSON != "" {
		if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}

	gw, cleanup, err := bootstrap.Initialize(context.Background(), configPath, bootstrap.WithLogWriter(io.Discard))
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(cleanup)

	server := transporthttp.New(gw.Handler, transporthttp.Config{},
		transporthttp.WithLogger(gw.Logger),
		transporthttp.WithHealth(func() any { return gw.Limiter.Snapshot() }))
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	return &testGateway{url: ts.URL, monday: monday, gw: gw}
}

// rpcResponse はJSON-RPCレスポンス
type rpcResponse struct {
	ID     any             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *model.RPCError `json:"error"`
}

// call は /rpc にリクエストを送る
func (g *testGateway) call(t *testing.T, method string, params any) rpcResponse {
	t.Helper()
	req := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		req["params"] = params
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	resp, err := http.Post(g.url+"/rpc", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /rpc failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

// content はReadResource/ReadPromptのcontentを指定の型にデコードする
func content(t *testing.T, resp rpcResponse, out any) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error response: %+v", resp.Error)
	}
	var result model.ContentResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if err := json.Unmarshal([]byte(result.Content), out); err != nil {
		t.Fatalf("content is not valid JSON: %v (%q)", err, result.Content)
	}
}
