package jsonrpc

import (
	"bytes"
	"encoding/json"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
)

// ReadResourceParams は ReadResource のパラメータ
type ReadResourceParams struct {
	ResourceID *string         `json:"resourceId"`
	Parameters json.RawMessage `json:"parameters"`
}

// Validate は必須項目を検証
func (p *ReadResourceParams) Validate() error {
	if p.ResourceID == nil || *p.ResourceID == "" {
		return model.Missing("resourceId")
	}
	return nil
}

// CallToolParams は CallTool のパラメータ
type CallToolParams struct {
	Name       *string         `json:"name"`
	Parameters json.RawMessage `json:"parameters"`
}

// Validate は必須項目を検証
func (p *CallToolParams) Validate() error {
	if p.Name == nil || *p.Name == "" {
		return model.Missing("name")
	}
	if isAbsent(p.Parameters) {
		return model.Missing("parameters")
	}
	return nil
}

// ReadPromptParams は ReadPrompt のパラメータ
type ReadPromptParams struct {
	PromptID *string `json:"promptId"`
}

// Validate は必須項目を検証
func (p *ReadPromptParams) Validate() error {
	if p.PromptID == nil || *p.PromptID == "" {
		return model.Missing("promptId")
	}
	return nil
}

// emptyObject は parameters 省略時のデフォルト
var emptyObject = json.RawMessage(`{}`)

// orEmpty は未指定またはnullの場合に空オブジェクトを返す
func orEmpty(raw json.RawMessage) json.RawMessage {
	if isAbsent(raw) {
		return emptyObject
	}
	return raw
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// mapParams はparamsを構造体にデコードする
// params省略時は空オブジェクトとして扱う
func mapParams(params json.RawMessage, target any) error {
	if isAbsent(params) {
		return nil
	}
	if err := json.Unmarshal(params, target); err != nil {
		return &model.InvalidParameterError{Field: "params", Reason: err.Error()}
	}
	return nil
}
