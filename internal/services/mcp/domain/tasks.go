package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/projectconfig"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TaskListInput represents the MCP tool input for listing tasks.
type TaskListInput struct {
	ProjectID        int64  `json:"project_id" jsonschema:"ID of the project to list tasks from"`
	IncludeCompleted bool   `json:"include_completed,omitempty" jsonschema:"whether to include completed tasks"`
	LabelFilter      string `json:"label_filter,omitempty" jsonschema:"filter by label name (case-insensitive partial match)"`
}

// TaskListResult represents the MCP tool output for listing tasks.
type TaskListResult struct {
	Tasks []TaskRecord `json:"tasks" jsonschema:"matching tasks"`
}

// TaskIDInput addresses a single task.
type TaskIDInput struct {
	TaskID int64 `json:"task_id" jsonschema:"ID of the task"`
}

// TaskCreateInput represents the MCP tool input for task creation.
type TaskCreateInput struct {
	ProjectID   int64  `json:"project_id" jsonschema:"ID of the project to create the task in"`
	Title       string `json:"title" jsonschema:"title of the task"`
	Description string `json:"description,omitempty" jsonschema:"optional task description"`
	StartDate   string `json:"start_date,omitempty" jsonschema:"start date in ISO format (Gantt)"`
	EndDate     string `json:"end_date,omitempty" jsonschema:"end date in ISO format (Gantt)"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"due date in ISO format (deadlines)"`
	Priority    int64  `json:"priority,omitempty" jsonschema:"priority: 0=none, 1=low, 2=medium, 3=high, 4=urgent, 5=critical"`
}

// TaskUpdateInput represents the MCP tool input for task updates. Empty
// strings keep the current values.
type TaskUpdateInput struct {
	TaskID      int64  `json:"task_id" jsonschema:"ID of the task to update"`
	Title       string `json:"title,omitempty" jsonschema:"new title (empty keeps current)"`
	Description string `json:"description,omitempty" jsonschema:"new description (empty keeps current)"`
	StartDate   string `json:"start_date,omitempty" jsonschema:"start date in ISO format (empty keeps current)"`
	EndDate     string `json:"end_date,omitempty" jsonschema:"end date in ISO format (empty keeps current)"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"due date in ISO format (empty keeps current)"`
	Priority    *int64 `json:"priority,omitempty" jsonschema:"new priority 0-5 (omit or -1 keeps current)"`
}

// TaskDeleteResult represents the MCP tool output for task deletion.
type TaskDeleteResult struct {
	Deleted bool  `json:"deleted" jsonschema:"true when the task was deleted"`
	TaskID  int64 `json:"task_id" jsonschema:"deleted task identifier"`
}

// TaskPositionInput represents the MCP tool input for moving a task into a bucket.
type TaskPositionInput struct {
	TaskID    int64 `json:"task_id" jsonschema:"ID of the task to move"`
	ProjectID int64 `json:"project_id" jsonschema:"ID of the project containing the task"`
	ViewID    int64 `json:"view_id" jsonschema:"ID of the kanban view (get from get_kanban_view)"`
	BucketID  int64 `json:"bucket_id" jsonschema:"ID of the target bucket (get from list_buckets)"`
	ApplySort bool  `json:"apply_sort,omitempty" jsonschema:"compute the position from the bucket's sort strategy in the project config"`
}

// TaskPositionResult represents the MCP tool output for moving a task into a bucket.
type TaskPositionResult struct {
	TaskID      int64    `json:"task_id" jsonschema:"moved task identifier"`
	BucketID    int64    `json:"bucket_id" jsonschema:"target bucket identifier"`
	ViewID      int64    `json:"view_id" jsonschema:"kanban view identifier"`
	PositionSet bool     `json:"position_set" jsonschema:"true when a sorted position was applied"`
	Position    *float64 `json:"position,omitempty" jsonschema:"applied position"`
}

// TaskLabelInput represents the MCP tool input for attaching a label.
type TaskLabelInput struct {
	TaskID  int64 `json:"task_id" jsonschema:"ID of the task"`
	LabelID int64 `json:"label_id" jsonschema:"ID of the label to add (get from list_labels)"`
}

// TaskLabelResult represents the MCP tool output for attaching a label.
type TaskLabelResult struct {
	TaskID  int64 `json:"task_id"`
	LabelID int64 `json:"label_id"`
	Added   bool  `json:"added"`
}

// TaskAssigneeInput represents the MCP tool input for (un)assigning a user.
type TaskAssigneeInput struct {
	TaskID int64 `json:"task_id" jsonschema:"ID of the task"`
	UserID int64 `json:"user_id" jsonschema:"ID of the user"`
}

// TaskAssignResult represents the MCP tool output for assigning a user.
type TaskAssignResult struct {
	TaskID   int64 `json:"task_id"`
	UserID   int64 `json:"user_id"`
	Assigned bool  `json:"assigned"`
}

// TaskUnassignResult represents the MCP tool output for unassigning a user.
type TaskUnassignResult struct {
	TaskID     int64 `json:"task_id"`
	UserID     int64 `json:"user_id"`
	Unassigned bool  `json:"unassigned"`
}

// TaskRemindersInput represents the MCP tool input for replacing reminders.
type TaskRemindersInput struct {
	TaskID    int64    `json:"task_id" jsonschema:"ID of the task"`
	Reminders []string `json:"reminders" jsonschema:"reminder datetimes in ISO format; empty list clears all reminders"`
}

// TaskMoveInput represents the MCP tool input for moving a task between projects.
type TaskMoveInput struct {
	TaskID          int64 `json:"task_id" jsonschema:"ID of the task to move"`
	TargetProjectID int64 `json:"target_project_id" jsonschema:"ID of the project to move the task to"`
}

// TaskMoveResult represents the MCP tool output for moving a task between projects.
type TaskMoveResult struct {
	TaskID       int64  `json:"task_id"`
	Title        string `json:"title"`
	OldProjectID int64  `json:"old_project_id"`
	NewProjectID int64  `json:"new_project_id"`
	Moved        bool   `json:"moved"`
}

// TaskListTool defines the MCP tool schema for listing tasks.
func TaskListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks in a Vikunja project. Completed tasks are excluded unless include_completed is set",
	}
}

// TaskGetTool defines the MCP tool schema for reading a task.
func TaskGetTool() *mcp.Tool {
	return &mcp.Tool{Name: "get_task", Description: "Get details of a specific task"}
}

// TaskCreateTool defines the MCP tool schema for creating a task.
func TaskCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_task",
		Description: "Create a new task in a Vikunja project. Use start_date/end_date for Gantt and due_date for deadlines",
	}
}

// TaskUpdateTool defines the MCP tool schema for updating a task.
func TaskUpdateTool() *mcp.Tool {
	return &mcp.Tool{Name: "update_task", Description: "Update an existing task; only provided fields change"}
}

// TaskCompleteTool defines the MCP tool schema for completing a task.
func TaskCompleteTool() *mcp.Tool {
	return &mcp.Tool{Name: "complete_task", Description: "Mark a task as complete (done=true)"}
}

// TaskDeleteTool defines the MCP tool schema for deleting a task.
func TaskDeleteTool() *mcp.Tool {
	return &mcp.Tool{Name: "delete_task", Description: "Delete a task permanently"}
}

// TaskPositionTool defines the MCP tool schema for moving a task into a bucket.
func TaskPositionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "set_task_position",
		Description: "Move a task to a kanban bucket. With apply_sort, position it according to the bucket's sort strategy",
	}
}

// TaskAddLabelTool defines the MCP tool schema for attaching a label.
func TaskAddLabelTool() *mcp.Tool {
	return &mcp.Tool{Name: "add_label_to_task", Description: "Add a label to a task"}
}

// TaskAssignTool defines the MCP tool schema for assigning a user.
func TaskAssignTool() *mcp.Tool {
	return &mcp.Tool{Name: "assign_user", Description: "Assign a user to a task"}
}

// TaskUnassignTool defines the MCP tool schema for unassigning a user.
func TaskUnassignTool() *mcp.Tool {
	return &mcp.Tool{Name: "unassign_user", Description: "Remove a user from a task"}
}

// TaskRemindersTool defines the MCP tool schema for replacing reminders.
func TaskRemindersTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "set_reminders",
		Description: "Set reminders on a task, replacing all existing ones. Pass an empty list to clear",
	}
}

// TaskMoveTool defines the MCP tool schema for moving a task between projects.
func TaskMoveTool() *mcp.Tool {
	return &mcp.Tool{Name: "move_task_to_project", Description: "Move a task from its current project to a different project"}
}

// TaskListHandler lists a project's tasks with optional filters.
func TaskListHandler(svc *Services) mcp.ToolHandlerFor[TaskListInput, TaskListResult] {
	return instrument(svc, "list_tasks", func(ctx context.Context, input TaskListInput) (TaskListResult, error) {
		tasks, err := svc.filteredTasks(ctx, input.ProjectID, input.IncludeCompleted, input.LabelFilter)
		if err != nil {
			return TaskListResult{}, err
		}
		return TaskListResult{Tasks: taskRecords(tasks)}, nil
	})
}

// filteredTasks drops done tasks unless includeCompleted and keeps only
// tasks with a label matching labelFilter when it is set.
func (s *Services) filteredTasks(ctx context.Context, projectID int64, includeCompleted bool, labelFilter string) ([]vikunja.Task, error) {
	tasks, err := s.Vikunja.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	filtered := make([]vikunja.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Done && !includeCompleted {
			continue
		}
		if labelFilter != "" && !labelMatches(t.Labels, labelFilter) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered, nil
}

// TaskGetHandler reads one task.
func TaskGetHandler(svc *Services) mcp.ToolHandlerFor[TaskIDInput, TaskRecord] {
	return instrument(svc, "get_task", func(ctx context.Context, input TaskIDInput) (TaskRecord, error) {
		task, err := svc.Vikunja.GetTask(ctx, input.TaskID)
		if err != nil {
			return TaskRecord{}, err
		}
		return taskRecord(task), nil
	})
}

// TaskCreateHandler creates a task, sending only the provided fields.
func TaskCreateHandler(svc *Services) mcp.ToolHandlerFor[TaskCreateInput, TaskRecord] {
	return instrument(svc, "create_task", func(ctx context.Context, input TaskCreateInput) (TaskRecord, error) {
		if strings.TrimSpace(input.Title) == "" {
			return TaskRecord{}, fmt.Errorf("title is required")
		}
		task, err := svc.Vikunja.CreateTask(ctx, input.ProjectID, vikunja.NewTask{
			Title:       input.Title,
			Description: input.Description,
			StartDate:   input.StartDate,
			EndDate:     input.EndDate,
			DueDate:     input.DueDate,
			Priority:    input.Priority,
		})
		if err != nil {
			return TaskRecord{}, err
		}
		return taskRecord(task), nil
	})
}

// TaskUpdateHandler merges the provided fields into the current task.
func TaskUpdateHandler(svc *Services) mcp.ToolHandlerFor[TaskUpdateInput, TaskRecord] {
	return instrument(svc, "update_task", func(ctx context.Context, input TaskUpdateInput) (TaskRecord, error) {
		task, err := svc.Vikunja.UpdateTask(ctx, input.TaskID, func(doc vikunja.Document) {
			setIfNotEmpty(doc, "title", input.Title)
			setIfNotEmpty(doc, "description", input.Description)
			setIfNotEmpty(doc, "start_date", input.StartDate)
			setIfNotEmpty(doc, "end_date", input.EndDate)
			setIfNotEmpty(doc, "due_date", input.DueDate)
			if input.Priority != nil && *input.Priority >= 0 {
				doc["priority"] = *input.Priority
			}
		})
		if err != nil {
			return TaskRecord{}, err
		}
		return taskRecord(task), nil
	})
}

func setIfNotEmpty(doc vikunja.Document, key, value string) {
	if value != "" {
		doc[key] = value
	}
}

// TaskCompleteHandler marks a task done, keeping every other field.
func TaskCompleteHandler(svc *Services) mcp.ToolHandlerFor[TaskIDInput, TaskRecord] {
	return instrument(svc, "complete_task", func(ctx context.Context, input TaskIDInput) (TaskRecord, error) {
		task, err := svc.completeTask(ctx, input.TaskID)
		if err != nil {
			return TaskRecord{}, err
		}
		return taskRecord(task), nil
	})
}

func (s *Services) completeTask(ctx context.Context, taskID int64) (vikunja.Task, error) {
	return s.Vikunja.UpdateTask(ctx, taskID, func(doc vikunja.Document) {
		doc["done"] = true
	})
}

// TaskDeleteHandler deletes a task.
func TaskDeleteHandler(svc *Services) mcp.ToolHandlerFor[TaskIDInput, TaskDeleteResult] {
	return instrument(svc, "delete_task", func(ctx context.Context, input TaskIDInput) (TaskDeleteResult, error) {
		if err := svc.Vikunja.DeleteTask(ctx, input.TaskID); err != nil {
			return TaskDeleteResult{}, err
		}
		return TaskDeleteResult{Deleted: true, TaskID: input.TaskID}, nil
	})
}

// TaskPositionHandler moves a task into a bucket.
func TaskPositionHandler(svc *Services) mcp.ToolHandlerFor[TaskPositionInput, TaskPositionResult] {
	return instrument(svc, "set_task_position", func(ctx context.Context, input TaskPositionInput) (TaskPositionResult, error) {
		return svc.moveToBucket(ctx, input)
	})
}

// moveToBucket adds the task to the bucket and, when asked, positions it
// among the bucket's tasks following the configured strategy. A missing
// config, unknown bucket or manual strategy leaves Vikunja's placement.
func (s *Services) moveToBucket(ctx context.Context, input TaskPositionInput) (TaskPositionResult, error) {
	if err := s.Vikunja.AddTaskToBucket(ctx, input.ProjectID, input.ViewID, input.BucketID, input.TaskID); err != nil {
		return TaskPositionResult{}, err
	}
	result := TaskPositionResult{TaskID: input.TaskID, BucketID: input.BucketID, ViewID: input.ViewID}
	if !input.ApplySort {
		return result, nil
	}

	settings, err := s.Configs.Settings(input.ProjectID)
	if err != nil {
		return TaskPositionResult{}, err
	}
	if settings == nil {
		return result, nil
	}
	buckets, err := s.Vikunja.ListBuckets(ctx, input.ProjectID, input.ViewID)
	if err != nil {
		return TaskPositionResult{}, err
	}
	bucketTitle := ""
	for _, b := range buckets {
		if b.ID == input.BucketID {
			bucketTitle = b.Title
			break
		}
	}
	if bucketTitle == "" {
		return result, nil
	}
	strategy := settings.StrategyFor(bucketTitle)
	if strategy == projectconfig.StrategyManual {
		return result, nil
	}

	task, err := s.Vikunja.GetTask(ctx, input.TaskID)
	if err != nil {
		return TaskPositionResult{}, err
	}
	existing, err := s.Vikunja.BucketTasks(ctx, input.ProjectID, input.ViewID, input.BucketID)
	if err != nil {
		return TaskPositionResult{}, err
	}
	others := make([]vikunja.Task, 0, len(existing))
	for _, t := range existing {
		if t.ID != input.TaskID {
			others = append(others, t)
		}
	}

	position := newBucketOrder(others, strategy).place(fieldsOf(task))
	if _, err := s.Vikunja.SetTaskPosition(ctx, input.TaskID, input.ViewID, position); err != nil {
		return TaskPositionResult{}, err
	}
	result.PositionSet = true
	result.Position = &position
	return result, nil
}

// TaskAddLabelHandler attaches a label to a task.
func TaskAddLabelHandler(svc *Services) mcp.ToolHandlerFor[TaskLabelInput, TaskLabelResult] {
	return instrument(svc, "add_label_to_task", func(ctx context.Context, input TaskLabelInput) (TaskLabelResult, error) {
		if err := svc.Vikunja.AddLabelToTask(ctx, input.TaskID, input.LabelID); err != nil {
			return TaskLabelResult{}, err
		}
		return TaskLabelResult{TaskID: input.TaskID, LabelID: input.LabelID, Added: true}, nil
	})
}

// TaskAssignHandler assigns a user to a task.
func TaskAssignHandler(svc *Services) mcp.ToolHandlerFor[TaskAssigneeInput, TaskAssignResult] {
	return instrument(svc, "assign_user", func(ctx context.Context, input TaskAssigneeInput) (TaskAssignResult, error) {
		if err := svc.Vikunja.AssignUser(ctx, input.TaskID, input.UserID); err != nil {
			return TaskAssignResult{}, err
		}
		return TaskAssignResult{TaskID: input.TaskID, UserID: input.UserID, Assigned: true}, nil
	})
}

// TaskUnassignHandler removes a user from a task.
func TaskUnassignHandler(svc *Services) mcp.ToolHandlerFor[TaskAssigneeInput, TaskUnassignResult] {
	return instrument(svc, "unassign_user", func(ctx context.Context, input TaskAssigneeInput) (TaskUnassignResult, error) {
		if err := svc.Vikunja.UnassignUser(ctx, input.TaskID, input.UserID); err != nil {
			return TaskUnassignResult{}, err
		}
		return TaskUnassignResult{TaskID: input.TaskID, UserID: input.UserID, Unassigned: true}, nil
	})
}

// TaskRemindersHandler replaces a task's reminders with absolute ones.
func TaskRemindersHandler(svc *Services) mcp.ToolHandlerFor[TaskRemindersInput, TaskRecord] {
	return instrument(svc, "set_reminders", func(ctx context.Context, input TaskRemindersInput) (TaskRecord, error) {
		task, err := svc.Vikunja.UpdateTask(ctx, input.TaskID, func(doc vikunja.Document) {
			doc["reminders"] = vikunja.AbsoluteReminders(input.Reminders)
		})
		if err != nil {
			return TaskRecord{}, err
		}
		return taskRecord(task), nil
	})
}

// TaskMoveHandler reassigns a task to another project.
func TaskMoveHandler(svc *Services) mcp.ToolHandlerFor[TaskMoveInput, TaskMoveResult] {
	return instrument(svc, "move_task_to_project", func(ctx context.Context, input TaskMoveInput) (TaskMoveResult, error) {
		var oldProjectID int64
		task, err := svc.Vikunja.UpdateTask(ctx, input.TaskID, func(doc vikunja.Document) {
			oldProjectID = doc.Int64("project_id")
			doc["project_id"] = input.TargetProjectID
		})
		if err != nil {
			return TaskMoveResult{}, err
		}
		return TaskMoveResult{
			TaskID:       input.TaskID,
			Title:        task.Title,
			OldProjectID: oldProjectID,
			NewProjectID: input.TargetProjectID,
			Moved:        true,
		}, nil
	})
}
