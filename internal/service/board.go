package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// キャッシュキー
const (
	boardsCacheKey         = "boards:all"
	structureCachePrefix   = "structure-"
	userDetailsCachePrefix = "user-"
)

// ListBoards はアクセス可能なボード一覧を返す（キャッシュあり）
func (s *mondayService) ListBoards(ctx context.Context) (json.RawMessage, error) {
	return s.cache.GetOrLoad(ctx, boardsCacheKey, func(ctx context.Context) ([]byte, error) {
		var data struct {
			Boards []Board `json:"boards"`
		}
		if err := s.query(ctx, listBoardsQuery, nil, &data); err != nil {
			return nil, err
		}
		return marshalList(data.Boards)
	})
}

// GetBoardStructure はボードのカラムとグループを返す（キャッシュあり）
func (s *mondayService) GetBoardStructure(ctx context.Context, req *BoardRequest) (json.RawMessage, error) {
	return s.boardStructure(ctx, req)
}

func (s *mondayService) boardStructure(ctx context.Context, req *BoardRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := structureCachePrefix + req.BoardID.String()
	return s.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]byte, error) {
		var data struct {
			Boards []BoardStructure `json:"boards"`
		}
		vars := map[string]any{"boardIds": []string{req.BoardID.String()}}
		if err := s.query(ctx, boardStructureQuery, vars, &data); err != nil {
			return nil, err
		}
		if len(data.Boards) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, req.BoardID)
		}
		return json.Marshal(data.Boards[0])
	})
}

// ListItemsByBoard はボード上の全アイテムを返す
func (s *mondayService) ListItemsByBoard(ctx context.Context, req *BoardRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var data struct {
		Boards []BoardItems `json:"boards"`
	}
	vars := map[string]any{"boardIds": []string{req.BoardID.String()}}
	if err := s.query(ctx, itemsByBoardQuery, vars, &data); err != nil {
		return nil, err
	}
	if len(data.Boards) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, req.BoardID)
	}
	board := data.Boards[0]
	if board.Items == nil {
		board.Items = []Item{}
	}
	return json.Marshal(board)
}

// ListItemsByStatus はstatusカラムの値が一致するアイテムを返す
// 比較は大文字小文字を区別しない
func (s *mondayService) ListItemsByStatus(ctx context.Context, req *StatusRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	raw, err := s.boardStructure(ctx, &BoardRequest{BoardID: req.BoardID})
	if err != nil {
		return nil, err
	}
	var structure BoardStructure
	if err := json.Unmarshal(raw, &structure); err != nil {
		return nil, fmt.Errorf("failed to decode board structure: %w", err)
	}
	column, ok := structure.StatusColumn()
	if !ok {
		return nil, ErrStatusColumnNotFound
	}

	var data struct {
		Boards []BoardItems `json:"boards"`
	}
	vars := map[string]any{
		"boardIds":  []string{req.BoardID.String()},
		"columnIds": []string{column.ID},
	}
	if err := s.query(ctx, itemsByColumnQuery, vars, &data); err != nil {
		return nil, err
	}
	if len(data.Boards) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, req.BoardID)
	}

	filtered := make([]Item, 0, len(data.Boards[0].Items))
	for _, item := range data.Boards[0].Items {
		text, ok := item.StatusText()
		if ok && strings.EqualFold(text, req.Status) {
			filtered = append(filtered, item)
		}
	}
	s.logger.Debug("items filtered by status",
		"board_id", req.BoardID, "column_id", column.ID, "status", req.Status,
		"matched", len(filtered), "total", len(data.Boards[0].Items))
	return json.Marshal(filtered)
}

// ListOverdueItems は期限切れのアイテムを返す
func (s *mondayService) ListOverdueItems(ctx context.Context) (json.RawMessage, error) {
	var data struct {
		Items []Item `json:"items_by_column_values"`
	}
	if err := s.query(ctx, overdueItemsQuery, nil, &data); err != nil {
		return nil, err
	}
	return marshalList(data.Items)
}

// GetUserDetails はユーザーの詳細を返す（キャッシュあり）
func (s *mondayService) GetUserDetails(ctx context.Context, req *UserRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key := userDetailsCachePrefix + req.UserID.String()
	return s.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]byte, error) {
		var data struct {
			Users []User `json:"users"`
		}
		vars := map[string]any{"userIds": []string{req.UserID.String()}}
		if err := s.query(ctx, userDetailsQuery, vars, &data); err != nil {
			return nil, err
		}
		if len(data.Users) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, req.UserID)
		}
		return json.Marshal(data.Users[0])
	})
}

// GetUserWorkload はユーザーに割り当てられたアイテムを返す
func (s *mondayService) GetUserWorkload(ctx context.Context, req *UserRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var data struct {
		Items []Item `json:"items_by_person_id"`
	}
	vars := map[string]any{"personId": req.UserID.String()}
	if err := s.query(ctx, userWorkloadQuery, vars, &data); err != nil {
		return nil, err
	}
	return marshalList(data.Items)
}

// marshalList はnilスライスを空配列としてエンコードする
func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
