package service

import (
	"context"
	"fmt"

	"github.com/TMHSDigital/Model-Context-Protocol-For-Dummies/internal/model"
)

// Prompt ID
const (
	PromptProjectInitiation = "project_initiation"
	PromptSprintPlanning    = "sprint_planning"
	PromptRiskManagement    = "risk_management"
)

// promptService はPromptServiceの実装（静的な定義を返す）
type promptService struct {
	prompts map[string]*model.PromptDescriptor
}

// NewPromptService は新しいPromptServiceを生成
func NewPromptService() PromptService {
	return &promptService{prompts: builtinPrompts()}
}

// GetPrompt はidに対応するワークフロー定義を返す
func (s *promptService) GetPrompt(ctx context.Context, id string) (*model.PromptDescriptor, error) {
	p, ok := s.prompts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPromptNotFound, id)
	}
	return p, nil
}

func builtinPrompts() map[string]*model.PromptDescriptor {
	return map[string]*model.PromptDescriptor{
		PromptProjectInitiation: {
			Name:        "Project Initiation",
			Description: "Start a new project with initial tasks and team assignments",
			Steps: []model.PromptStep{
				{
					ID:    "create_board",
					Type:  model.StepTypeInput,
					Label: "Create a new project board",
					Fields: []model.PromptField{
						{ID: "board_name", Label: "Project Name", Type: "text", Required: true},
						{
							ID:    "template_id",
							Label: "Template",
							Type:  "select",
							Options: []model.FieldOption{
								{Label: "Basic Project", Value: "1"},
								{Label: "Scrum", Value: "2"},
								{Label: "Kanban", Value: "3"},
							},
							Required: true,
						},
					},
				},
				{
					ID:    "assign_team",
					Type:  model.StepTypeInput,
					Label: "Assign Team Members",
					Fields: []model.PromptField{
						{ID: "team_members", Label: "Team Members", Type: "multiselect", DynamicOptions: "users", Required: true},
					},
				},
				{
					ID:    "setup_tasks",
					Type:  model.StepTypeInput,
					Label: "Set Up Initial Tasks",
					Fields: []model.PromptField{
						{ID: "tasks", Label: "Tasks", Type: "textarea", Placeholder: "Enter tasks (one per line)", Required: true},
					},
				},
			},
		},
		PromptSprintPlanning: {
			Name:        "Sprint Planning",
			Description: "Move items from backlog to current sprint with estimates and priorities",
			Steps: []model.PromptStep{
				{
					ID:    "select_board",
					Type:  model.StepTypeInput,
					Label: "Select Project Board",
					Fields: []model.PromptField{
						{ID: "board_id", Label: "Board", Type: "select", DynamicOptions: "boards", Required: true},
					},
				},
				{
					ID:    "select_backlog_items",
					Type:  model.StepTypeInput,
					Label: "Select Backlog Items for Sprint",
					Fields: []model.PromptField{
						{ID: "backlog_items", Label: "Backlog Items", Type: "multiselect", DynamicOptions: "items_by_status", Required: true},
					},
				},
				{
					ID:    "set_estimates",
					Type:  model.StepTypeInput,
					Label: "Set Estimates and Priorities",
					Fields: []model.PromptField{
						{ID: "due_date", Label: "Sprint End Date", Type: "date", Required: true},
					},
				},
			},
		},
		PromptRiskManagement: {
			Name:        "Risk Management",
			Description: "Identify and escalate tasks at risk",
			Steps: []model.PromptStep{
				{
					ID:    "select_project",
					Type:  model.StepTypeInput,
					Label: "Select Project",
					Fields: []model.PromptField{
						{ID: "board_id", Label: "Board", Type: "select", DynamicOptions: "boards", Required: true},
					},
				},
				{
					ID:              "identify_risks",
					Type:            model.StepTypeDisplay,
					Label:           "Identifying Tasks at Risk...",
					ComputedContent: "delayed_tasks",
				},
				{
					ID:    "escalate_risks",
					Type:  model.StepTypeInput,
					Label: "Escalate Selected Risks",
					Fields: []model.PromptField{
						{ID: "risk_items", Label: "Items at Risk", Type: "multiselect", DynamicOptions: "delayed_tasks", Required: true},
						{ID: "notify_users", Label: "Notify", Type: "multiselect", DynamicOptions: "users", Required: true},
						{ID: "escalation_message", Label: "Message", Type: "textarea", Required: true},
					},
				},
			},
		},
	}
}
