package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
)

// ツールの結果メッセージ
const (
	MessageItemCreated   = "Item created successfully"
	MessageStatusUpdated = "Status updated successfully"
	MessageUserAssigned  = "User assigned successfully"
	MessageUpdateAdded   = "Update added successfully"
)

type mutatedItem struct {
	ID   model.ID `json:"id"`
	Name string   `json:"name"`
}

// CreateItem はボードにアイテムを作成する
func (s *mondayService) CreateItem(ctx context.Context, req *CreateItemRequest) (*model.ToolResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	columnValues := req.ColumnValues
	if columnValues == nil {
		columnValues = map[string]any{}
	}
	encoded, err := json.Marshal(columnValues)
	if err != nil {
		return nil, &model.InvalidParameterError{Field: "column_values", Reason: err.Error()}
	}

	vars := map[string]any{
		"boardId":      req.BoardID.String(),
		"itemName":     req.ItemName,
		"columnValues": string(encoded),
	}
	if req.GroupID != "" {
		vars["groupId"] = req.GroupID
	}

	var data struct {
		CreateItem *mutatedItem `json:"create_item"`
	}
	if err := s.query(ctx, createItemMutation, vars, &data); err != nil {
		return nil, err
	}
	if data.CreateItem == nil {
		return nil, upstreamInvalid("create_item returned no item")
	}

	s.logger.Info("item created", "board_id", req.BoardID, "item_id", data.CreateItem.ID)
	return &model.ToolResult{
		ID:      data.CreateItem.ID.String(),
		Name:    data.CreateItem.Name,
		Message: MessageItemCreated,
	}, nil
}

// UpdateItemStatus はアイテムのstatusカラムを変更する
func (s *mondayService) UpdateItemStatus(ctx context.Context, req *UpdateItemStatusRequest) (*model.ToolResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	value, err := json.Marshal(map[string]string{"label": req.NewStatus})
	if err != nil {
		return nil, err
	}
	item, err := s.changeColumnValue(ctx, req.ItemID, req.StatusColumnID, value)
	if err != nil {
		return nil, err
	}

	s.logger.Info("item status updated", "item_id", item.ID, "column_id", req.StatusColumnID)
	return &model.ToolResult{ID: item.ID.String(), Message: MessageStatusUpdated}, nil
}

// AssignUserToItem はアイテムのpersonカラムにユーザーを割り当てる
func (s *mondayService) AssignUserToItem(ctx context.Context, req *AssignUserRequest) (*model.ToolResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	value, err := json.Marshal(map[string]any{
		"personsAndTeams": []map[string]any{
			{"id": json.Number(req.UserID.String()), "kind": "person"},
		},
	})
	if err != nil {
		return nil, err
	}
	item, err := s.changeColumnValue(ctx, req.ItemID, req.PersonColumnID, value)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user assigned to item", "item_id", item.ID, "user_id", req.UserID)
	return &model.ToolResult{ID: item.ID.String(), Message: MessageUserAssigned}, nil
}

func (s *mondayService) changeColumnValue(ctx context.Context, itemID model.ID, columnID string, value []byte) (*mutatedItem, error) {
	vars := map[string]any{
		"itemId":   itemID.String(),
		"columnId": columnID,
		"value":    string(value),
	}
	var data struct {
		ChangeColumnValue *mutatedItem `json:"change_column_value"`
	}
	if err := s.query(ctx, changeColumnValueMutation, vars, &data); err != nil {
		return nil, err
	}
	if data.ChangeColumnValue == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	return data.ChangeColumnValue, nil
}

// AddUpdateToItem はアイテムにアップデート（コメント）を追加する
func (s *mondayService) AddUpdateToItem(ctx context.Context, req *AddUpdateRequest) (*model.ToolResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	vars := map[string]any{
		"itemId": req.ItemID.String(),
		"body":   req.UpdateText,
	}
	var data struct {
		CreateUpdate *struct {
			ID   model.ID `json:"id"`
			Text string   `json:"text"`
		} `json:"create_update"`
	}
	if err := s.query(ctx, createUpdateMutation, vars, &data); err != nil {
		return nil, err
	}
	if data.CreateUpdate == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, req.ItemID)
	}

	s.logger.Info("update added to item", "item_id", req.ItemID, "update_id", data.CreateUpdate.ID)
	return &model.ToolResult{ID: data.CreateUpdate.ID.String(), Message: MessageUpdateAdded}, nil
}
