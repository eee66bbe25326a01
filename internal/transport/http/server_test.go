package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
)

// mockHandler はテスト用のJSON-RPCハンドラー
type mockHandler struct {
	responses map[string]any
	panicOn   string
}

func newMockHandler() *mockHandler {
	return &mockHandler{
		responses: make(map[string]any),
	}
}

func (h *mockHandler) Handle(ctx context.Context, requestBytes []byte) []byte {
	var req model.Request
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		b, _ := json.Marshal(model.NewParseError(err.Error()))
		return b
	}

	if req.Method == h.panicOn && h.panicOn != "" {
		panic("boom")
	}

	if response, ok := h.responses[req.Method]; ok {
		b, _ := json.Marshal(model.NewResponse(req.ID, response))
		return b
	}

	b, _ := json.Marshal(model.NewUnsupportedMethod(req.ID, req.Method))
	return b
}

func (h *mockHandler) SetResponse(method string, response any) {
	h.responses[method] = response
}

// postRPC は /rpc へのPOSTを実行する
func postRPC(server *Server, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/rpc", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// TestServer_BasicJSONRPCCall は基本的なJSON-RPC呼び出しをテスト
func TestServer_BasicJSONRPCCall(t *testing.T) {
	handler := newMockHandler()
	handler.SetResponse("ListResources", map[string]any{"resources": []any{}})

	server := New(handler, Config{Addr: "127.0.0.1:0"})

	w := postRPC(server, `{"jsonrpc":"2.0","id":1,"method":"ListResources"}`, nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var resp model.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.ID != float64(1) {
		t.Errorf("expected id 1, got %v", resp.ID)
	}
}

// TestServer_InvalidJSON は不正なJSONをテスト
func TestServer_InvalidJSON(t *testing.T) {
	server := New(newMockHandler(), Config{Addr: "127.0.0.1:0"})

	w := postRPC(server, `{invalid json}`, nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	if resp.Error.Code != model.ErrCodeParseError {
		t.Errorf("expected ParseError code %d, got %d", model.ErrCodeParseError, resp.Error.Code)
	}
}

// TestServer_InvalidHTTPMethod は不正なHTTPメソッドをテスト
func TestServer_InvalidHTTPMethod(t *testing.T) {
	server := New(newMockHandler(), Config{Addr: "127.0.0.1:0"})

	req := httptest.NewRequest("GET", "/rpc", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

// TestServer_InvalidContentType は不正なContent-Typeをテスト
func TestServer_InvalidContentType(t *testing.T) {
	server := New(newMockHandler(), Config{Addr: "127.0.0.1:0"})

	w := postRPC(server, `{"jsonrpc":"2.0","id":1,"method":"ListTools"}`, map[string]string{
		"Content-Type": "text/plain",
	})

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected status 415, got %d", w.Code)
	}
}

// TestServer_EmptyBody は空ボディをテスト
func TestServer_EmptyBody(t *testing.T) {
	server := New(newMockHandler(), Config{Addr: "127.0.0.1:0"})

	w := postRPC(server, "", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	if resp.Error.Code != model.ErrCodeParseError {
		t.Errorf("expected ParseError code %d, got %d", model.ErrCodeParseError, resp.Error.Code)
	}
}

// TestServer_UnsupportedMethod は未対応メソッドがJSON-RPCエラーで返ることをテスト
func TestServer_UnsupportedMethod(t *testing.T) {
	server := New(newMockHandler(), Config{Addr: "127.0.0.1:0"})

	w := postRPC(server, `{"jsonrpc":"2.0","id":"a","method":"DeleteBoard"}`, nil)

	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	if resp.Error.Code != model.ErrCodeMethodNotFound {
		t.Errorf("expected code %d, got %d", model.ErrCodeMethodNotFound, resp.Error.Code)
	}
}

// TestServer_HandlerPanic はハンドラーのpanicが500に変換されることをテスト
func TestServer_HandlerPanic(t *testing.T) {
	handler := newMockHandler()
	handler.panicOn = "CallTool"
	server := New(handler, Config{Addr: "127.0.0.1:0"})

	w := postRPC(server, `{"jsonrpc":"2.0","id":1,"method":"CallTool"}`, nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
}

// TestServer_Healthz はヘルスチェックをテスト
func TestServer_Healthz(t *testing.T) {
	server := New(newMockHandler(), Config{Addr: "127.0.0.1:0"}, WithHealth(func() any {
		return map[string]int{"remaining": 998}
	}))

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body struct {
		Status string         `json:"status"`
		Quota  map[string]int `json:"quota"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse health response: %v", err)
	}
	if body.Status != "ok" || body.Quota["remaining"] != 998 {
		t.Errorf("unexpected health response: %s", w.Body.String())
	}
}

// TestServer_HealthzWithoutQuota は状態関数未設定時のヘルスチェックをテスト
func TestServer_HealthzWithoutQuota(t *testing.T) {
	server := New(newMockHandler(), Config{Addr: "127.0.0.1:0"})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if strings.TrimSpace(w.Body.String()) != `{"status":"ok"}` {
		t.Errorf("unexpected health response: %s", w.Body.String())
	}
}

// TestServer_GracefulShutdown はGraceful Shutdownをテスト
func TestServer_GracefulShutdown(t *testing.T) {
	server := New(newMockHandler(), Config{Addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(ctx)
	}()

	// サーバーが起動するまで待機
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for server to stop")
	}
}

// TestServer_LargeJSON は大きなJSONをテスト
func TestServer_LargeJSON(t *testing.T) {
	handler := newMockHandler()
	handler.SetResponse("CallTool", map[string]any{"result": map[string]any{"id": "123"}})

	server := New(handler, Config{Addr: "127.0.0.1:0"})

	// 約900KBのテキスト
	reqBytes, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "CallTool",
		"params": map[string]any{
			"name": "add_update_to_item",
			"parameters": map[string]any{
				"item_id":     1,
				"update_text": strings.Repeat("a", 900*1024),
			},
		},
	})

	req := httptest.NewRequest("POST", "/rpc", bytes.NewReader(reqBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp model.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Errorf("failed to parse response: %v", err)
	}
}

// TestServer_ReadBodyError は本体読み取りエラーをテスト
func TestServer_ReadBodyError(t *testing.T) {
	server := New(newMockHandler(), Config{Addr: "127.0.0.1:0"})

	req := httptest.NewRequest("POST", "/rpc", &errorReader{err: io.ErrUnexpectedEOF})
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

// errorReader はエラーを返すReader
type errorReader struct {
	err error
}

func (r *errorReader) Read(p []byte) (n int, err error) {
	return 0, r.err
}

// TestServer_TooLargeBody はサイズ制限を超えるボディをテスト
func TestServer_TooLargeBody(t *testing.T) {
	server := New(newMockHandler(), Config{Addr: "127.0.0.1:0"})

	w := postRPC(server, strings.Repeat("a", MaxBodySize+1), nil)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413, got %d", w.Code)
	}
}

// TestServer_DefaultAddr はAddr未設定時のデフォルト値をテスト
func TestServer_DefaultAddr(t *testing.T) {
	server := New(newMockHandler(), Config{})

	if server.srv.Addr != DefaultAddr {
		t.Errorf("expected default addr %s, got %s", DefaultAddr, server.srv.Addr)
	}
}

// TestServer_ReadHeaderTimeout はReadHeaderTimeoutが設定されていることをテスト
func TestServer_ReadHeaderTimeout(t *testing.T) {
	server := New(newMockHandler(), Config{})

	if server.srv.ReadHeaderTimeout == 0 {
		t.Error("expected ReadHeaderTimeout to be set")
	}
}
