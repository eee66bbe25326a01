package service

import (
	"context"
	"encoding/json"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/registry"
)

// noParams はパラメータを取らないハンドラー用
type noParams struct{}

// Register はリソース・ツール・プロンプトを登録順にRegistryへ登録する
func Register(reg *registry.Registry, monday Monday, prompts PromptService) error {
	entries := []registry.Entry{
		// resources
		{
			ID:          "list_boards",
			Category:    registry.CategoryResource,
			Name:        "Boards",
			Description: "List all accessible boards",
			Invoke: registry.Typed(func(ctx context.Context, _ noParams) (any, error) {
				return monday.ListBoards(ctx)
			}),
		},
		{
			ID:          "get_board_structure",
			Category:    registry.CategoryResource,
			Name:        "Board Structure",
			Description: "Get the structure of a specific board",
			Invoke: registry.Typed(func(ctx context.Context, p BoardRequest) (any, error) {
				return monday.GetBoardStructure(ctx, &p)
			}),
		},
		{
			ID:          "list_items_by_board",
			Category:    registry.CategoryResource,
			Name:        "Items by Board",
			Description: "List all items in a specific board",
			Invoke: registry.Typed(func(ctx context.Context, p BoardRequest) (any, error) {
				return monday.ListItemsByBoard(ctx, &p)
			}),
		},
		{
			ID:          "list_items_by_status",
			Category:    registry.CategoryResource,
			Name:        "Items by Status",
			Description: "List items filtered by status",
			Invoke: registry.Typed(func(ctx context.Context, p StatusRequest) (any, error) {
				return monday.ListItemsByStatus(ctx, &p)
			}),
		},
		{
			ID:          "list_overdue_items",
			Category:    registry.CategoryResource,
			Name:        "Overdue Items",
			Description: "List items past their due dates",
			Invoke: registry.Typed(func(ctx context.Context, _ noParams) (any, error) {
				return monday.ListOverdueItems(ctx)
			}),
		},
		{
			ID:          "get_user_details",
			Category:    registry.CategoryResource,
			Name:        "User Details",
			Description: "Get details about team members",
			Invoke: registry.Typed(func(ctx context.Context, p UserRequest) (any, error) {
				return monday.GetUserDetails(ctx, &p)
			}),
		},
		{
			ID:          "get_user_workload",
			Category:    registry.CategoryResource,
			Name:        "User Workload",
			Description: "View task distribution across team members",
			Invoke: registry.Typed(func(ctx context.Context, p UserRequest) (any, error) {
				return monday.GetUserWorkload(ctx, &p)
			}),
		},

		// tools
		{
			ID:          "create_item",
			Category:    registry.CategoryTool,
			Description: "Create a new item on a board",
			Parameters: objectSchema([]string{"board_id", "item_name"}, map[string]model.JSONSchema{
				"board_id":      {Type: "number", Description: "The ID of the board"},
				"group_id":      {Type: "string", Description: "The ID of the group to add the item to"},
				"item_name":     {Type: "string", Description: "The name of the item to create"},
				"column_values": {Type: "object", Description: "Column values for the new item"},
			}),
			Invoke: registry.Typed(func(ctx context.Context, p CreateItemRequest) (any, error) {
				return monday.CreateItem(ctx, &p)
			}),
		},
		{
			ID:          "update_item_status",
			Category:    registry.CategoryTool,
			Description: "Update the status of an item",
			Parameters: objectSchema([]string{"item_id", "status_column_id", "new_status"}, map[string]model.JSONSchema{
				"item_id":          {Type: "number", Description: "The ID of the item"},
				"status_column_id": {Type: "string", Description: "The ID of the status column"},
				"new_status":       {Type: "string", Description: "The new status value"},
			}),
			Invoke: registry.Typed(func(ctx context.Context, p UpdateItemStatusRequest) (any, error) {
				return monday.UpdateItemStatus(ctx, &p)
			}),
		},
		{
			ID:          "assign_user_to_item",
			Category:    registry.CategoryTool,
			Description: "Assign a user to an item",
			Parameters: objectSchema([]string{"item_id", "user_id", "person_column_id"}, map[string]model.JSONSchema{
				"item_id":          {Type: "number", Description: "The ID of the item"},
				"user_id":          {Type: "number", Description: "The ID of the user to assign"},
				"person_column_id": {Type: "string", Description: "The ID of the person column"},
			}),
			Invoke: registry.Typed(func(ctx context.Context, p AssignUserRequest) (any, error) {
				return monday.AssignUserToItem(ctx, &p)
			}),
		},
		{
			ID:          "add_update_to_item",
			Category:    registry.CategoryTool,
			Description: "Add an update/comment to an item",
			Parameters: objectSchema([]string{"item_id", "update_text"}, map[string]model.JSONSchema{
				"item_id":     {Type: "number", Description: "The ID of the item"},
				"update_text": {Type: "string", Description: "The text of the update"},
			}),
			Invoke: registry.Typed(func(ctx context.Context, p AddUpdateRequest) (any, error) {
				return monday.AddUpdateToItem(ctx, &p)
			}),
		},

		// prompts
		promptEntry(prompts, PromptProjectInitiation, "Project Initiation",
			"Start a new project with initial tasks and team assignments"),
		promptEntry(prompts, PromptSprintPlanning, "Sprint Planning",
			"Move items from backlog to current sprint with estimates and priorities"),
		promptEntry(prompts, PromptRiskManagement, "Risk Management",
			"Identify and escalate tasks at risk"),
	}

	for _, e := range entries {
		if err := reg.Register(e); err != nil {
			return err
		}
	}
	return nil
}

func promptEntry(prompts PromptService, id, name, description string) registry.Entry {
	return registry.Entry{
		ID:          id,
		Category:    registry.CategoryPrompt,
		Name:        name,
		Description: description,
		Invoke: func(ctx context.Context, _ json.RawMessage) (any, error) {
			return prompts.GetPrompt(ctx, id)
		},
	}
}

func objectSchema(required []string, properties map[string]model.JSONSchema) *model.JSONSchema {
	return &model.JSONSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}
