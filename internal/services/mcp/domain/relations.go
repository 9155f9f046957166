package domain

import (
	"context"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Relation kinds used by batch creation.
const (
	relationBlocked    = "blocked"
	relationBlocking   = "blocking"
	relationParentTask = "parenttask"
)

// RelationCreateInput represents the MCP tool input for relation creation.
type RelationCreateInput struct {
	TaskID       int64  `json:"task_id" jsonschema:"ID of the source task"`
	RelationKind string `json:"relation_kind" jsonschema:"relation type: subtask, parenttask, related, blocking, blocked, duplicateof, duplicates, precedes, follows, copiedfrom, copiedto"`
	OtherTaskID  int64  `json:"other_task_id" jsonschema:"ID of the target task"`
}

// RelationCreateResult represents the MCP tool output for relation creation.
type RelationCreateResult struct {
	TaskID       int64  `json:"task_id"`
	OtherTaskID  int64  `json:"other_task_id"`
	RelationKind string `json:"relation_kind"`
	Created      bool   `json:"created"`
}

// RelationListResult represents the MCP tool output for listing relations.
type RelationListResult struct {
	Relations []RelationRecord `json:"relations" jsonschema:"relations of the task"`
}

// RelationCreateTool defines the MCP tool schema for relation creation.
func RelationCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_task_relation",
		Description: "Create a relation between two tasks (blocking, subtask, related, ...)",
	}
}

// RelationListTool defines the MCP tool schema for listing relations.
func RelationListTool() *mcp.Tool {
	return &mcp.Tool{Name: "list_task_relations", Description: "List all relations of a task"}
}

// RelationCreateHandler links two tasks.
func RelationCreateHandler(svc *Services) mcp.ToolHandlerFor[RelationCreateInput, RelationCreateResult] {
	return instrument(svc, "create_task_relation", func(ctx context.Context, input RelationCreateInput) (RelationCreateResult, error) {
		if err := svc.Vikunja.CreateRelation(ctx, input.TaskID, input.RelationKind, input.OtherTaskID); err != nil {
			return RelationCreateResult{}, err
		}
		return RelationCreateResult{
			TaskID:       input.TaskID,
			OtherTaskID:  input.OtherTaskID,
			RelationKind: input.RelationKind,
			Created:      true,
		}, nil
	})
}

// RelationListHandler flattens a task's related_tasks map. Kinds are
// emitted alphabetically.
func RelationListHandler(svc *Services) mcp.ToolHandlerFor[TaskIDInput, RelationListResult] {
	return instrument(svc, "list_task_relations", func(ctx context.Context, input TaskIDInput) (RelationListResult, error) {
		task, err := svc.Vikunja.GetTask(ctx, input.TaskID)
		if err != nil {
			return RelationListResult{}, err
		}
		kinds := make([]string, 0, len(task.RelatedTasks))
		for kind := range task.RelatedTasks {
			kinds = append(kinds, kind)
		}
		slices.Sort(kinds)

		result := RelationListResult{Relations: []RelationRecord{}}
		for _, kind := range kinds {
			for _, other := range task.RelatedTasks[kind] {
				result.Relations = append(result.Relations, RelationRecord{
					TaskID:         input.TaskID,
					OtherTaskID:    other.ID,
					OtherTaskTitle: other.Title,
					RelationKind:   kind,
				})
			}
		}
		return result, nil
	})
}
