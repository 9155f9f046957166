package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LabelBulkInput selects a project's open tasks by label.
type LabelBulkInput struct {
	ProjectID   int64  `json:"project_id" jsonschema:"ID of the project"`
	LabelFilter string `json:"label_filter" jsonschema:"label name to match (case-insensitive partial match)"`
}

// LabelMoveInput represents the MCP tool input for moving tasks by label.
type LabelMoveInput struct {
	ProjectID   int64  `json:"project_id" jsonschema:"ID of the project"`
	LabelFilter string `json:"label_filter" jsonschema:"label name to match (case-insensitive partial match)"`
	ViewID      int64  `json:"view_id" jsonschema:"ID of the kanban view"`
	BucketID    int64  `json:"bucket_id" jsonschema:"ID of the target bucket"`
}

// CompleteByLabelResult represents the MCP tool output for completing tasks by label.
type CompleteByLabelResult struct {
	Completed int       `json:"completed"`
	Tasks     []TaskRef `json:"tasks"`
	Errors    []string  `json:"errors"`
}

// MoveByLabelResult represents the MCP tool output for moving tasks by label.
type MoveByLabelResult struct {
	Moved  int       `json:"moved"`
	Tasks  []TaskRef `json:"tasks"`
	Errors []string  `json:"errors"`
}

// CompleteByLabelTool defines the MCP tool schema for completing tasks by label.
func CompleteByLabelTool() *mcp.Tool {
	return &mcp.Tool{Name: "complete_tasks_by_label", Description: "Mark all open tasks matching a label filter as complete"}
}

// MoveByLabelTool defines the MCP tool schema for moving tasks by label.
func MoveByLabelTool() *mcp.Tool {
	return &mcp.Tool{Name: "move_tasks_by_label", Description: "Move all open tasks matching a label filter to a kanban bucket"}
}

// CompleteByLabelHandler completes every open task carrying a matching label.
func CompleteByLabelHandler(svc *Services) mcp.ToolHandlerFor[LabelBulkInput, CompleteByLabelResult] {
	return instrument(svc, "complete_tasks_by_label", func(ctx context.Context, input LabelBulkInput) (CompleteByLabelResult, error) {
		tasks, err := svc.filteredTasks(ctx, input.ProjectID, false, input.LabelFilter)
		if err != nil {
			return CompleteByLabelResult{}, err
		}
		result := CompleteByLabelResult{Tasks: []TaskRef{}, Errors: []string{}}
		for _, t := range tasks {
			if _, err := svc.completeTask(ctx, t.ID); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to complete task %d: %v", t.ID, err))
				continue
			}
			result.Completed++
			result.Tasks = append(result.Tasks, TaskRef{ID: t.ID, Title: t.Title})
		}
		return result, nil
	})
}

// MoveByLabelHandler moves every open task carrying a matching label into a bucket.
func MoveByLabelHandler(svc *Services) mcp.ToolHandlerFor[LabelMoveInput, MoveByLabelResult] {
	return instrument(svc, "move_tasks_by_label", func(ctx context.Context, input LabelMoveInput) (MoveByLabelResult, error) {
		tasks, err := svc.filteredTasks(ctx, input.ProjectID, false, input.LabelFilter)
		if err != nil {
			return MoveByLabelResult{}, err
		}
		result := MoveByLabelResult{Tasks: []TaskRef{}, Errors: []string{}}
		for _, t := range tasks {
			_, err := svc.moveToBucket(ctx, TaskPositionInput{
				TaskID:    t.ID,
				ProjectID: input.ProjectID,
				ViewID:    input.ViewID,
				BucketID:  input.BucketID,
			})
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to move task %d: %v", t.ID, err))
				continue
			}
			result.Moved++
			result.Tasks = append(result.Tasks, TaskRef{ID: t.ID, Title: t.Title})
		}
		return result, nil
	})
}
