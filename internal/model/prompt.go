package model

// PromptDescriptor はワークフローの定義
type PromptDescriptor struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Steps       []PromptStep `json:"steps"`
}

// PromptStep はワークフローの1ステップ
type PromptStep struct {
	ID              string        `json:"id"`
	Type            string        `json:"type"` // "input" | "display"
	Label           string        `json:"label"`
	Fields          []PromptField `json:"fields,omitempty"`
	ComputedContent string        `json:"computedContent,omitempty"`
}

// PromptField はステップの入力項目
type PromptField struct {
	ID             string        `json:"id"`
	Label          string        `json:"label"`
	Type           string        `json:"type"` // text | select | multiselect | textarea | date
	Required       bool          `json:"required"`
	Options        []FieldOption `json:"options,omitempty"`
	DynamicOptions string        `json:"dynamicOptions,omitempty"`
	Placeholder    string        `json:"placeholder,omitempty"`
}

// FieldOption は select の選択肢
type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ステップ種別
const (
	StepTypeInput   = "input"
	StepTypeDisplay = "display"
)
