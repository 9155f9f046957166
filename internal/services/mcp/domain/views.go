package domain

import (
	"context"
	"fmt"

	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ViewListResult represents the MCP tool output for listing views.
type ViewListResult struct {
	Views []ViewRecord `json:"views" jsonschema:"views of the project"`
}

// ViewInput addresses a single project view.
type ViewInput struct {
	ProjectID int64 `json:"project_id" jsonschema:"ID of the project"`
	ViewID    int64 `json:"view_id" jsonschema:"ID of the view (get from list_views)"`
}

// ViewTask is a task listed through a view. Kanban entries carry their bucket.
type ViewTask struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Done        bool          `json:"done"`
	Priority    int64         `json:"priority"`
	Position    *float64      `json:"position"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	DueDate     string        `json:"due_date"`
	Reminders   []string      `json:"reminders"`
	ProjectID   int64         `json:"project_id"`
	BucketID    int64         `json:"bucket_id"`
	BucketTitle string        `json:"bucket_title,omitempty"`
	Labels      []LabelRef    `json:"labels"`
	Assignees   []AssigneeRef `json:"assignees"`
}

func viewTask(rec TaskRecord) ViewTask {
	return ViewTask{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Done:        rec.Done,
		Priority:    rec.Priority,
		Position:    rec.Position,
		StartDate:   rec.StartDate,
		EndDate:     rec.EndDate,
		DueDate:     rec.DueDate,
		Reminders:   rec.Reminders,
		ProjectID:   rec.ProjectID,
		BucketID:    rec.BucketID,
		Labels:      rec.Labels,
		Assignees:   rec.Assignees,
	}
}

// ViewTasksResult represents the MCP tool output for listing a view's tasks.
type ViewTasksResult struct {
	Tasks []ViewTask `json:"tasks" jsonschema:"tasks in view order; kanban buckets are flattened"`
}

// BucketTaskGroup is one bucket's tasks.
type BucketTaskGroup struct {
	BucketID int64        `json:"bucket_id"`
	Tasks    []TaskRecord `json:"tasks"`
}

// TasksByBucketResult maps bucket titles to their tasks.
type TasksByBucketResult map[string]BucketTaskGroup

// ViewPositionInput represents the MCP tool input for setting a view position.
type ViewPositionInput struct {
	TaskID   int64   `json:"task_id" jsonschema:"ID of the task"`
	ViewID   int64   `json:"view_id" jsonschema:"ID of the view (Gantt, List, etc.)"`
	Position float64 `json:"position" jsonschema:"position value (lower = earlier in list)"`
}

// ViewListTool defines the MCP tool schema for listing views.
func ViewListTool() *mcp.Tool {
	return &mcp.Tool{Name: "list_views", Description: "List all views for a project (list, gantt, table, kanban)"}
}

// ViewTasksTool defines the MCP tool schema for listing a view's tasks.
func ViewTasksTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_view_tasks",
		Description: "Get tasks via a specific view. Kanban views include bucket_id and bucket_title per task",
	}
}

// TasksByBucketTool defines the MCP tool schema for grouping tasks by bucket.
func TasksByBucketTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_tasks_by_bucket",
		Description: "Get tasks grouped by kanban bucket: {bucket title: {bucket_id, tasks}}",
	}
}

// ViewPositionTool defines the MCP tool schema for setting a view position.
func ViewPositionTool() *mcp.Tool {
	return &mcp.Tool{Name: "set_view_position", Description: "Set a task's position within a specific view"}
}

// KanbanViewTool defines the MCP tool schema for finding the kanban view.
func KanbanViewTool() *mcp.Tool {
	return &mcp.Tool{Name: "get_kanban_view", Description: "Get the kanban view for a project (needed for bucket operations)"}
}

// ViewListHandler lists a project's views.
func ViewListHandler(svc *Services) mcp.ToolHandlerFor[ProjectIDInput, ViewListResult] {
	return instrument(svc, "list_views", func(ctx context.Context, input ProjectIDInput) (ViewListResult, error) {
		views, err := svc.Vikunja.ListViews(ctx, input.ProjectID)
		if err != nil {
			return ViewListResult{}, err
		}
		result := ViewListResult{Views: make([]ViewRecord, 0, len(views))}
		for _, v := range views {
			result.Views = append(result.Views, viewRecord(v))
		}
		return result, nil
	})
}

// ViewTasksHandler lists a view's tasks, flattening kanban buckets.
func ViewTasksHandler(svc *Services) mcp.ToolHandlerFor[ViewInput, ViewTasksResult] {
	return instrument(svc, "get_view_tasks", func(ctx context.Context, input ViewInput) (ViewTasksResult, error) {
		items, err := svc.Vikunja.ViewTasks(ctx, input.ProjectID, input.ViewID)
		if err != nil {
			return ViewTasksResult{}, err
		}
		result := ViewTasksResult{Tasks: []ViewTask{}}
		for _, item := range items {
			if item.Bucket == nil {
				result.Tasks = append(result.Tasks, viewTask(taskRecord(*item.Task)))
				continue
			}
			for _, t := range item.Bucket.Tasks {
				entry := viewTask(taskRecord(t))
				entry.BucketID = item.Bucket.ID
				entry.BucketTitle = item.Bucket.Title
				result.Tasks = append(result.Tasks, entry)
			}
		}
		return result, nil
	})
}

// TasksByBucketHandler groups a kanban view's tasks by bucket title.
func TasksByBucketHandler(svc *Services) mcp.ToolHandlerFor[ViewInput, TasksByBucketResult] {
	return instrument(svc, "list_tasks_by_bucket", func(ctx context.Context, input ViewInput) (TasksByBucketResult, error) {
		items, err := svc.Vikunja.ViewTasks(ctx, input.ProjectID, input.ViewID)
		if err != nil {
			return nil, err
		}
		result := TasksByBucketResult{}
		for _, item := range items {
			if item.Bucket == nil {
				continue
			}
			result[item.Bucket.Title] = BucketTaskGroup{
				BucketID: item.Bucket.ID,
				Tasks:    taskRecords(item.Bucket.Tasks),
			}
		}
		return result, nil
	})
}

// ViewPositionHandler sets a task's position in one view.
func ViewPositionHandler(svc *Services) mcp.ToolHandlerFor[ViewPositionInput, vikunja.TaskPosition] {
	return instrument(svc, "set_view_position", func(ctx context.Context, input ViewPositionInput) (vikunja.TaskPosition, error) {
		return svc.Vikunja.SetTaskPosition(ctx, input.TaskID, input.ViewID, input.Position)
	})
}

// KanbanViewHandler returns the project's first kanban view.
func KanbanViewHandler(svc *Services) mcp.ToolHandlerFor[ProjectIDInput, ViewRecord] {
	return instrument(svc, "get_kanban_view", func(ctx context.Context, input ProjectIDInput) (ViewRecord, error) {
		view, err := svc.kanbanView(ctx, input.ProjectID)
		if err != nil {
			return ViewRecord{}, err
		}
		return viewRecord(view), nil
	})
}

func (s *Services) kanbanView(ctx context.Context, projectID int64) (vikunja.View, error) {
	views, err := s.Vikunja.ListViews(ctx, projectID)
	if err != nil {
		return vikunja.View{}, err
	}
	for _, v := range views {
		if v.ViewKind == vikunja.ViewKindKanban {
			return v, nil
		}
	}
	return vikunja.View{}, fmt.Errorf("No kanban view found for project %d", projectID)
}
