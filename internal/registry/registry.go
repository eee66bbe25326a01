// Package registry holds the resource, tool and prompt handlers exposed by the gateway.
//
// Handlers are registered once at construction and are immutable afterwards.
// Each id is unique within its category; the same id may appear in different
// categories.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
)

// Category はハンドラーの種別
type Category string

// ハンドラー種別
const (
	CategoryResource Category = "resource"
	CategoryTool     Category = "tool"
	CategoryPrompt   Category = "prompt"
)

// Valid は既知の種別かどうかを返す
func (c Category) Valid() bool {
	switch c {
	case CategoryResource, CategoryTool, CategoryPrompt:
		return true
	}
	return false
}

// エラー定義
var (
	ErrNotFound        = errors.New("handler not found")
	ErrDuplicate       = errors.New("handler already registered")
	ErrInvalidEntry    = errors.New("invalid handler entry")
	ErrUnknownCategory = errors.New("unknown category")
)

// NotFoundError は指定されたidのハンドラーが存在しない場合のエラー
type NotFoundError struct {
	Category Category
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", categoryLabel(e.Category), e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func categoryLabel(c Category) string {
	switch c {
	case CategoryResource:
		return "Resource"
	case CategoryTool:
		return "Tool"
	case CategoryPrompt:
		return "Prompt"
	}
	return string(c)
}

// HandlerFunc はパラメータを受け取って結果を返すハンドラー
// params は未指定の場合 "{}" が渡される
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Entry は登録されたハンドラー
type Entry struct {
	ID          string
	Category    Category
	Name        string
	Description string
	Parameters  *model.JSONSchema // ツールのみ
	Invoke      HandlerFunc
}

// Registry はカテゴリ別のハンドラーテーブル
type Registry struct {
	mu      sync.RWMutex
	entries map[Category]map[string]*Entry
	order   map[Category][]string
}

// New は空のRegistryを生成
func New() *Registry {
	return &Registry{
		entries: make(map[Category]map[string]*Entry),
		order:   make(map[Category][]string),
	}
}

// Register はハンドラーを登録する
// 同一カテゴリ内でidが重複する場合はErrDuplicateを返し、上書きしない
func (r *Registry) Register(e Entry) error {
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, e.Category)
	}
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	}
	if e.Invoke == nil {
		return fmt.Errorf("%w: %s %s has no handler", ErrInvalidEntry, e.Category, e.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byID, ok := r.entries[e.Category]
	if !ok {
		byID = make(map[string]*Entry)
		r.entries[e.Category] = byID
	}
	if _, exists := byID[e.ID]; exists {
		return fmt.Errorf("%w: %s %s", ErrDuplicate, e.Category, e.ID)
	}

	entry := e
	byID[e.ID] = &entry
	r.order[e.Category] = append(r.order[e.Category], e.ID)
	return nil
}

// MustRegister はRegisterが失敗した場合にpanicする
func (r *Registry) MustRegister(entries ...Entry) {
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
}

// Resolve はカテゴリとidからハンドラーを取得
func (r *Registry) Resolve(category Category, id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[category][id]
	if !ok {
		return Entry{}, &NotFoundError{Category: category, ID: id}
	}
	return *e, nil
}

// List は登録順にエントリを返す
func (r *Registry) List(category Category) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.order[category]
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.entries[category][id])
	}
	return out
}

// Resources はリソースカタログを返す
func (r *Registry) Resources() []model.ResourceInfo {
	entries := r.List(CategoryResource)
	out := make([]model.ResourceInfo, len(entries))
	for i, e := range entries {
		out[i] = model.ResourceInfo{ID: e.ID, Name: e.Name, Description: e.Description}
	}
	return out
}

// Tools はツールカタログを返す
func (r *Registry) Tools() []model.ToolInfo {
	entries := r.List(CategoryTool)
	out := make([]model.ToolInfo, len(entries))
	for i, e := range entries {
		info := model.ToolInfo{Name: e.ID, Description: e.Description}
		if e.Parameters != nil {
			info.Parameters = *e.Parameters
		} else {
			info.Parameters = model.JSONSchema{Type: "object"}
		}
		out[i] = info
	}
	return out
}

// Prompts はプロンプトカタログを返す
func (r *Registry) Prompts() []model.PromptInfo {
	entries := r.List(CategoryPrompt)
	out := make([]model.PromptInfo, len(entries))
	for i, e := range entries {
		out[i] = model.PromptInfo{ID: e.ID, Name: e.Name, Description: e.Description}
	}
	return out
}
