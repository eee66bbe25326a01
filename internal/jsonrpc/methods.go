package jsonrpc

import (
	"context"
	"encoding/json"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/registry"
)

// handleListResources は ListResources を処理
func (h *Handler) handleListResources(ctx context.Context) (any, error) {
	return &model.ResourcesListResult{Resources: h.registry.Resources()}, nil
}

// handleReadResource は ReadResource を処理
func (h *Handler) handleReadResource(ctx context.Context, params json.RawMessage) (any, error) {
	var p ReadResourceParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	entry, err := h.registry.Resolve(registry.CategoryResource, *p.ResourceID)
	if err != nil {
		return nil, err
	}
	result, err := entry.Invoke(ctx, orEmpty(p.Parameters))
	if err != nil {
		return nil, err
	}
	return toContent(result)
}

// handleListTools は ListTools を処理
func (h *Handler) handleListTools(ctx context.Context) (any, error) {
	return &model.ToolsListResult{Tools: h.registry.Tools()}, nil
}

// handleCallTool は CallTool を処理
func (h *Handler) handleCallTool(ctx context.Context, params json.RawMessage) (any, error) {
	var p CallToolParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	entry, err := h.registry.Resolve(registry.CategoryTool, *p.Name)
	if err != nil {
		return nil, err
	}
	result, err := entry.Invoke(ctx, p.Parameters)
	if err != nil {
		return nil, err
	}
	return &model.ToolCallResult{Result: result}, nil
}

// handleListPrompts は ListPrompts を処理
func (h *Handler) handleListPrompts(ctx context.Context) (any, error) {
	return &model.PromptsListResult{Prompts: h.registry.Prompts()}, nil
}

// handleReadPrompt は ReadPrompt を処理
// プロンプトはid以外のパラメータを取らない
func (h *Handler) handleReadPrompt(ctx context.Context, params json.RawMessage) (any, error) {
	var p ReadPromptParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	entry, err := h.registry.Resolve(registry.CategoryPrompt, *p.PromptID)
	if err != nil {
		return nil, err
	}
	result, err := entry.Invoke(ctx, emptyObject)
	if err != nil {
		return nil, err
	}
	return toContent(result)
}

// toContent はハンドラーの結果をJSON文字列のcontentに包む
func toContent(result any) (*model.ContentResult, error) {
	switch v := result.(type) {
	case json.RawMessage:
		return model.NewContentResult(v), nil
	case []byte:
		return model.NewContentResult(v), nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return model.NewContentResult(b), nil
}
