package model

import "encoding/json"

// ServerInfo はサーバー情報
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ResourceInfo はリソースカタログの1エントリ
type ResourceInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolInfo はツールカタログの1エントリ
type ToolInfo struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

// PromptInfo はプロンプトカタログの1エントリ
type PromptInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// JSONSchema はJSON Schemaの定義
type JSONSchema struct {
	Type       string                `json:"type,omitempty"`
	Properties map[string]JSONSchema `json:"properties,omitempty"`
	Required   []string              `json:"required,omitempty"`
	Items      *JSONSchema           `json:"items,omitempty"`
	// 追加プロパティ
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// ResourcesListResult は ListResources の結果
type ResourcesListResult struct {
	Resources []ResourceInfo `json:"resources"`
}

// ToolsListResult は ListTools の結果
type ToolsListResult struct {
	Tools []ToolInfo `json:"tools"`
}

// PromptsListResult は ListPrompts の結果
type PromptsListResult struct {
	Prompts []PromptInfo `json:"prompts"`
}

// ContentResult は ReadResource / ReadPrompt の結果
// content はJSONエンコードされた文字列
type ContentResult struct {
	Content string `json:"content"`
}

// NewContentResult はJSONをcontent文字列に包む
func NewContentResult(payload json.RawMessage) *ContentResult {
	return &ContentResult{Content: string(payload)}
}

// ToolCallResult は CallTool の結果
type ToolCallResult struct {
	Result any `json:"result"`
}

// ToolResult はツールが返す結果
type ToolResult struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}
