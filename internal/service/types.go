package service

import (
	"encoding/json"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
)

// BoardRequest は board_id を受け取るリソースのパラメータ
type BoardRequest struct {
	BoardID model.ID `json:"board_id"`
}

// Validate は必須項目を検証
func (r *BoardRequest) Validate() error {
	if err := r.BoardID.Validate("board_id"); err != nil {
		return err
	}
	return nil
}

// StatusRequest は list_items_by_status のパラメータ
type StatusRequest struct {
	BoardID model.ID `json:"board_id"`
	Status  string   `json:"status"`
}

// Validate は必須項目を検証
func (r *StatusRequest) Validate() error {
	if err := r.BoardID.Validate("board_id"); err != nil {
		return err
	}
	if r.Status == "" {
		return model.Missing("status")
	}
	return nil
}

// UserRequest は user_id を受け取るリソースのパラメータ
type UserRequest struct {
	UserID model.ID `json:"user_id"`
}

// Validate は必須項目を検証
func (r *UserRequest) Validate() error {
	if err := r.UserID.Validate("user_id"); err != nil {
		return err
	}
	return nil
}

// CreateItemRequest は create_item のパラメータ
type CreateItemRequest struct {
	BoardID      model.ID       `json:"board_id"`
	GroupID      string         `json:"group_id"`
	ItemName     string         `json:"item_name"`
	ColumnValues map[string]any `json:"column_values"`
}

// Validate は必須項目を検証
func (r *CreateItemRequest) Validate() error {
	if err := r.BoardID.Validate("board_id"); err != nil {
		return err
	}
	if r.ItemName == "" {
		return model.Missing("item_name")
	}
	return nil
}

// UpdateItemStatusRequest は update_item_status のパラメータ
type UpdateItemStatusRequest struct {
	ItemID         model.ID `json:"item_id"`
	StatusColumnID string   `json:"status_column_id"`
	NewStatus      string   `json:"new_status"`
}

// Validate は必須項目を検証
func (r *UpdateItemStatusRequest) Validate() error {
	if err := r.ItemID.Validate("item_id"); err != nil {
		return err
	}
	if r.StatusColumnID == "" {
		return model.Missing("status_column_id")
	}
	if r.NewStatus == "" {
		return model.Missing("new_status")
	}
	return nil
}

// AssignUserRequest は assign_user_to_item のパラメータ
type AssignUserRequest struct {
	ItemID         model.ID `json:"item_id"`
	UserID         model.ID `json:"user_id"`
	PersonColumnID string   `json:"person_column_id"`
}

// Validate は必須項目を検証
func (r *AssignUserRequest) Validate() error {
	if err := r.ItemID.Validate("item_id"); err != nil {
		return err
	}
	if err := r.UserID.Validate("user_id"); err != nil {
		return err
	}
	if r.PersonColumnID == "" {
		return model.Missing("person_column_id")
	}
	return nil
}

// AddUpdateRequest は add_update_to_item のパラメータ
type AddUpdateRequest struct {
	ItemID     model.ID `json:"item_id"`
	UpdateText string   `json:"update_text"`
}

// Validate は必須項目を検証
func (r *AddUpdateRequest) Validate() error {
	if err := r.ItemID.Validate("item_id"); err != nil {
		return err
	}
	if r.UpdateText == "" {
		return model.Missing("update_text")
	}
	return nil
}

// Board はボードの概要
type Board struct {
	ID          model.ID `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	State       string   `json:"state"`
	BoardKind   string   `json:"board_kind"`
	UpdatedAt   string   `json:"updated_at"`
}

// BoardStructure はボードのカラムとグループ
type BoardStructure struct {
	Columns []Column `json:"columns"`
	Groups  []Group  `json:"groups"`
}

// StatusColumn は最初のstatus型カラムを返す
func (b *BoardStructure) StatusColumn() (Column, bool) {
	for _, c := range b.Columns {
		if c.Type == ColumnTypeStatus {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnTypeStatus はstatusカラムの型名
const ColumnTypeStatus = "status"

// Column はボードのカラム定義
type Column struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	SettingsStr string `json:"settings_str"`
}

// Group はボードのグループ
type Group struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Color    string `json:"color"`
	Position string `json:"position"`
}

// BoardItems はボード名とアイテム一覧
type BoardItems struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item はボード上のアイテム
type Item struct {
	ID           model.ID      `json:"id"`
	Name         string        `json:"name"`
	State        string        `json:"state,omitempty"`
	Board        *BoardRef     `json:"board,omitempty"`
	ColumnValues []ColumnValue `json:"column_values"`
	CreatedAt    string        `json:"created_at,omitempty"`
	UpdatedAt    string        `json:"updated_at,omitempty"`
}

// StatusText は先頭カラムのテキストを返す
// itemsByColumnQuery が column_values(ids: $columnIds) でstatusカラムだけを取得している前提
func (i *Item) StatusText() (string, bool) {
	if len(i.ColumnValues) == 0 || i.ColumnValues[0].Text == nil {
		return "", false
	}
	return *i.ColumnValues[0].Text, true
}

// BoardRef はアイテムが属するボード
type BoardRef struct {
	ID   model.ID `json:"id"`
	Name string   `json:"name"`
}

// ColumnValue はアイテムのカラム値
type ColumnValue struct {
	ID    string          `json:"id,omitempty"`
	Title string          `json:"title,omitempty"`
	Text  *string         `json:"text"`
	Value json.RawMessage `json:"value,omitempty"`
}

// User はチームメンバー
type User struct {
	ID         model.ID `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Title      *string  `json:"title"`
	PhotoThumb string   `json:"photo_thumb"`
	CreatedAt  string   `json:"created_at"`
}
