package jsonrpc

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/cache"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/clock"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/ratelimit"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/registry"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/service"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/upstream"
)

// allInOneData は全クエリのデコードを満たすレスポンス
const allInOneData = `{
	"boards": [{
		"id": "12345678", "name": "Roadmap", "state": "active", "board_kind": "public",
		"columns": [{"id": "status", "title": "Status", "type": "status", "settings_str": "{}"}],
		"groups": [{"id": "topics", "title": "Topics", "color": "#579bfc", "position": "1"}],
		"items": [{"id": "1", "name": "Design", "column_values": [{"text": "Done"}]}]
	}],
	"users": [{"id": "12345", "name": "Ada", "email": "ada@example.com"}],
	"items_by_column_values": [],
	"items_by_person_id": [],
	"create_item": {"id": "987", "name": "Task"}
}`

type gateway struct {
	handler *Handler
	limiter *ratelimit.Limiter
	clock   *clock.Manual
	sends   *atomic.Int32
}

func newGateway(t *testing.T, limiterOpts ...ratelimit.Option) *gateway {
	t.Helper()
	clk := clock.NewManual(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))
	sends := &atomic.Int32{}

	limiter, err := ratelimit.New(ratelimit.Config{
		DailyAllowance: 1000,
		Period:         24 * time.Hour,
		MaxConcurrent:  10,
	}, append([]ratelimit.Option{ratelimit.WithClock(clk), ratelimit.WithLogger(discardLogger())}, limiterOpts...)...)
	if err != nil {
		t.Fatalf("ratelimit.New failed: %v", err)
	}

	sender := upstream.SenderFunc(func(ctx context.Context, query string, variables map[string]any) (*upstream.Response, error) {
		sends.Add(1)
		return &upstream.Response{Data: json.RawMessage(allInOneData)}, nil
	})
	client := upstream.NewClient(sender, limiter, upstream.WithLogger(discardLogger()))
	rc := cache.New(cache.NewMemoryStore(), cache.DefaultTTL, cache.WithClock(clk), cache.WithLogger(discardLogger()))

	reg := registry.New()
	monday := service.NewMondayService(client, rc, service.WithLogger(discardLogger()))
	if err := service.Register(reg, monday, service.NewPromptService()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	return &gateway{
		handler: New(reg, WithLogger(discardLogger())),
		limiter: limiter,
		clock:   clk,
		sends:   sends,
	}
}

func TestGateway_ListThenReadEveryResource(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	var list struct {
		Result model.ResourcesListResult `json:"result"`
	}
	if err := json.Unmarshal(gw.handler.Handle(ctx, makeRequest("ListResources", nil)), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Result.Resources) != 7 {
		t.Fatalf("expected 7 resources, got %d", len(list.Result.Resources))
	}

	parameters := map[string]any{"board_id": 12345678, "user_id": 12345, "status": "done"}
	for _, r := range list.Result.Resources {
		t.Run(r.ID, func(t *testing.T) {
			resp := parseResponse(t, gw.handler.Handle(ctx, makeRequest("ReadResource", map[string]any{
				"resourceId": r.ID,
				"parameters": parameters,
			})))
			content, ok := resp["result"].(map[string]any)["content"].(string)
			if !ok || !json.Valid([]byte(content)) {
				t.Errorf("expected JSON string content, got %v", resp["result"])
			}
		})
	}

	if q := gw.limiter.Snapshot(); q.ActiveCount != 0 {
		t.Errorf("expected every permit released, active=%d", q.ActiveCount)
	}
}

func TestGateway_ListThenReadEveryPrompt(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	var list struct {
		Result model.PromptsListResult `json:"result"`
	}
	if err := json.Unmarshal(gw.handler.Handle(ctx, makeRequest("ListPrompts", nil)), &list); err != nil {
		t.Fatal(err)
	}
	for _, p := range list.Result.Prompts {
		parseResponse(t, gw.handler.Handle(ctx, makeRequest("ReadPrompt", map[string]any{"promptId": p.ID})))
	}
	if gw.sends.Load() != 0 {
		t.Errorf("prompts must not call upstream, got %d sends", gw.sends.Load())
	}
}

func TestGateway_BoardsCacheWindow(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()
	read := func() {
		parseResponse(t, gw.handler.Handle(ctx, makeRequest("ReadResource", map[string]any{"resourceId": "list_boards"})))
	}

	read()
	gw.clock.Advance(299 * time.Second)
	read()
	if got := gw.sends.Load(); got != 1 {
		t.Errorf("expected cached read at t+299s, got %d sends", got)
	}

	gw.clock.Advance(2 * time.Second)
	read()
	if got := gw.sends.Load(); got != 2 {
		t.Errorf("expected fresh fetch at t+301s, got %d sends", got)
	}
	if q := gw.limiter.Snapshot(); q.Remaining != 998 {
		t.Errorf("expected 2 permits consumed, remaining=%d", q.Remaining)
	}
}

func TestGateway_QuotaExhausted(t *testing.T) {
	resetAt := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	gw := newGateway(t, ratelimit.WithInitialQuota(0, resetAt))

	resp := parseErrorResponse(t, gw.handler.Handle(context.Background(), makeRequest("CallTool", map[string]any{
		"name":       "create_item",
		"parameters": map[string]any{"board_id": 1, "item_name": "Task"},
	})))
	if resp.Error.Code != model.ErrCodeRateLimitExceeded {
		t.Fatalf("expected rate limit error, got %+v", resp.Error)
	}
	if resp.Error.Data.ResetAt == nil || !resp.Error.Data.ResetAt.Equal(resetAt) {
		t.Errorf("expected resetAt %v, got %v", resetAt, resp.Error.Data.ResetAt)
	}
	if gw.sends.Load() != 0 {
		t.Error("upstream must not be called when the quota is exhausted")
	}
}

func TestGateway_CallTool(t *testing.T) {
	gw := newGateway(t)

	resp := parseResponse(t, gw.handler.Handle(context.Background(), makeRequest("CallTool", map[string]any{
		"name": "create_item",
		"parameters": map[string]any{
			"board_id":  12345678,
			"group_id":  "topics",
			"item_name": "Implement MCP integration",
		},
	})))
	result := resp["result"].(map[string]any)["result"].(map[string]any)
	if result["id"] != "987" || result["message"] != service.MessageItemCreated {
		t.Errorf("unexpected result: %v", result)
	}
}

func TestGateway_NonNumericIDRejectedBeforeUpstream(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	resp := parseErrorResponse(t, gw.handler.Handle(ctx, makeRequest("ReadResource", map[string]any{
		"resourceId": "get_board_structure",
		"parameters": map[string]any{"board_id": "abc"},
	})))
	if resp.Error.Code != model.ErrCodeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
	if resp.Error.Data == nil || resp.Error.Data.Kind != model.KindInvalidParameter || resp.Error.Data.Field != "board_id" {
		t.Errorf("unexpected error data: %+v", resp.Error.Data)
	}

	resp = parseErrorResponse(t, gw.handler.Handle(ctx, makeRequest("CallTool", map[string]any{
		"name":       "update_item_status",
		"parameters": map[string]any{"item_id": "abc", "status_column_id": "status", "new_status": "Done"},
	})))
	if resp.Error.Code != model.ErrCodeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}

	if gw.sends.Load() != 0 {
		t.Errorf("upstream must not be called, got %d sends", gw.sends.Load())
	}
	if q := gw.limiter.Snapshot(); q.Remaining != 1000 {
		t.Errorf("expected no quota consumed, remaining=%d", q.Remaining)
	}
}
