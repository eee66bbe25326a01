// Package service implements the Monday.com resources, tools and prompts served by the gateway.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/cache"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/upstream"
)

// BoardService はボード・アイテム・ユーザーの読み取りを提供
// 戻り値はcontentとしてそのまま返せるJSON
type BoardService interface {
	ListBoards(ctx context.Context) (json.RawMessage, error)
	GetBoardStructure(ctx context.Context, req *BoardRequest) (json.RawMessage, error)
	ListItemsByBoard(ctx context.Context, req *BoardRequest) (json.RawMessage, error)
	ListItemsByStatus(ctx context.Context, req *StatusRequest) (json.RawMessage, error)
	ListOverdueItems(ctx context.Context) (json.RawMessage, error)
	GetUserDetails(ctx context.Context, req *UserRequest) (json.RawMessage, error)
	GetUserWorkload(ctx context.Context, req *UserRequest) (json.RawMessage, error)
}

// ItemService はアイテムを変更するツールを提供
type ItemService interface {
	CreateItem(ctx context.Context, req *CreateItemRequest) (*model.ToolResult, error)
	UpdateItemStatus(ctx context.Context, req *UpdateItemStatusRequest) (*model.ToolResult, error)
	AssignUserToItem(ctx context.Context, req *AssignUserRequest) (*model.ToolResult, error)
	AddUpdateToItem(ctx context.Context, req *AddUpdateRequest) (*model.ToolResult, error)
}

// PromptService はワークフロー定義を提供
type PromptService interface {
	GetPrompt(ctx context.Context, id string) (*model.PromptDescriptor, error)
}

// エラー定義
var (
	ErrBoardNotFound        = errors.New("board not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrStatusColumnNotFound = errors.New("status column not found on this board")
	ErrPromptNotFound       = errors.New("prompt not found")
)

// IsNotFound は対象が存在しないことを表すエラーかどうかを返す
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBoardNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrStatusColumnNotFound) ||
		errors.Is(err, ErrPromptNotFound)
}

// Option はmondayServiceのオプション
type Option func(*mondayService)

// WithLogger はloggerを設定
func WithLogger(logger *slog.Logger) Option {
	return func(s *mondayService) {
		s.logger = logger
	}
}

// mondayService はBoardServiceとItemServiceの実装
type mondayService struct {
	exec   upstream.Executor
	cache  *cache.ResponseCache
	logger *slog.Logger
}

// Monday はBoardServiceとItemServiceを併せ持つ
type Monday interface {
	BoardService
	ItemService
}

// NewMondayService は新しいMondayサービスを生成
func NewMondayService(exec upstream.Executor, c *cache.ResponseCache, opts ...Option) Monday {
	s := &mondayService{
		exec:   exec,
		cache:  c,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// query はクエリを実行してdataを out にデコードする
func (s *mondayService) query(ctx context.Context, q string, variables map[string]any, out any) error {
	data, err := s.exec.Execute(ctx, q, variables)
	if err != nil {
		return err
	}
	return decodeData(data, out)
}

func decodeData(data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return upstreamInvalid("response has no data")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return upstreamInvalid(err.Error())
	}
	return nil
}

func upstreamInvalid(detail string) error {
	return fmt.Errorf("%w: %s", upstream.ErrInvalidResponse, detail)
}
