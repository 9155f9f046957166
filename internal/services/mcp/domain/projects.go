package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectListInput represents the MCP tool input for listing projects.
type ProjectListInput struct{}

// ProjectListResult represents the MCP tool output for listing projects.
type ProjectListResult struct {
	Projects []ProjectRecord `json:"projects" jsonschema:"all projects visible to the token"`
}

// ProjectIDInput addresses a single project.
type ProjectIDInput struct {
	ProjectID int64 `json:"project_id" jsonschema:"ID of the Vikunja project"`
}

// ProjectCreateInput represents the MCP tool input for project creation.
type ProjectCreateInput struct {
	Title           string `json:"title" jsonschema:"project title"`
	Description     string `json:"description,omitempty" jsonschema:"optional project description"`
	HexColor        string `json:"hex_color,omitempty" jsonschema:"optional color, e.g. 1973ff"`
	ParentProjectID int64  `json:"parent_project_id,omitempty" jsonschema:"optional parent project ID for nesting"`
}

// ProjectUpdateInput represents the MCP tool input for project updates.
// Empty strings keep the current values.
type ProjectUpdateInput struct {
	ProjectID       int64  `json:"project_id" jsonschema:"ID of the project to update"`
	Title           string `json:"title,omitempty" jsonschema:"new title (empty keeps current)"`
	Description     string `json:"description,omitempty" jsonschema:"new description (empty keeps current)"`
	HexColor        string `json:"hex_color,omitempty" jsonschema:"new color (empty keeps current)"`
	ParentProjectID *int64 `json:"parent_project_id,omitempty" jsonschema:"new parent: omit or -1 keeps current, 0 moves to root, >0 reparents"`
}

// ProjectDeleteResult represents the MCP tool output for project deletion.
type ProjectDeleteResult struct {
	Deleted   bool  `json:"deleted" jsonschema:"true when the project was deleted"`
	ProjectID int64 `json:"project_id" jsonschema:"deleted project identifier"`
}

// ProjectExportInput represents the MCP tool input for exporting projects.
type ProjectExportInput struct{}

// ExportedProject is one project with all of its tasks.
type ExportedProject struct {
	ID              int64        `json:"id" jsonschema:"project identifier"`
	Title           string       `json:"title" jsonschema:"project title"`
	Description     string       `json:"description" jsonschema:"project description"`
	ParentProjectID int64        `json:"parent_project_id" jsonschema:"parent project identifier"`
	HexColor        string       `json:"hex_color" jsonschema:"project color"`
	Tasks           []TaskRecord `json:"tasks" jsonschema:"all tasks, completed included"`
	TaskError       string       `json:"task_error,omitempty" jsonschema:"set when the tasks could not be fetched"`
}

// ProjectExportResult represents the MCP tool output for exporting projects.
type ProjectExportResult struct {
	ExportedAt   string            `json:"exported_at" jsonschema:"RFC3339 export time"`
	ProjectCount int               `json:"project_count" jsonschema:"number of exported projects"`
	TaskCount    int               `json:"task_count" jsonschema:"number of exported tasks"`
	Projects     []ExportedProject `json:"projects" jsonschema:"exported projects"`
}

// ProjectListTool defines the MCP tool schema for listing projects.
func ProjectListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_projects",
		Description: "List all Vikunja projects",
	}
}

// ProjectGetTool defines the MCP tool schema for reading a project.
func ProjectGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_project",
		Description: "Get details of a specific project",
	}
}

// ProjectCreateTool defines the MCP tool schema for creating a project.
func ProjectCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "create_project",
		Description: "Create a new Vikunja project, optionally nested under a parent project",
	}
}

// ProjectUpdateTool defines the MCP tool schema for updating a project.
func ProjectUpdateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "update_project",
		Description: "Update a project's properties including its parent (reparenting). Use parent_project_id=0 to move to root",
	}
}

// ProjectDeleteTool defines the MCP tool schema for deleting a project.
func ProjectDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "delete_project",
		Description: "Delete a project and all its tasks",
	}
}

// ProjectExportTool defines the MCP tool schema for exporting every project.
func ProjectExportTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "export_all_projects",
		Description: "Export all projects and their tasks (completed included) for backup",
	}
}

// ProjectListHandler lists projects.
func ProjectListHandler(svc *Services) mcp.ToolHandlerFor[ProjectListInput, ProjectListResult] {
	return instrument(svc, "list_projects", func(ctx context.Context, _ ProjectListInput) (ProjectListResult, error) {
		projects, err := svc.Vikunja.ListProjects(ctx)
		if err != nil {
			return ProjectListResult{}, err
		}
		return ProjectListResult{Projects: projectRecords(projects)}, nil
	})
}

// ProjectGetHandler reads one project.
func ProjectGetHandler(svc *Services) mcp.ToolHandlerFor[ProjectIDInput, ProjectRecord] {
	return instrument(svc, "get_project", func(ctx context.Context, input ProjectIDInput) (ProjectRecord, error) {
		project, err := svc.Vikunja.GetProject(ctx, input.ProjectID)
		if err != nil {
			return ProjectRecord{}, err
		}
		return projectRecord(project), nil
	})
}

// ProjectCreateHandler creates a project, sending only the provided fields.
func ProjectCreateHandler(svc *Services) mcp.ToolHandlerFor[ProjectCreateInput, ProjectRecord] {
	return instrument(svc, "create_project", func(ctx context.Context, input ProjectCreateInput) (ProjectRecord, error) {
		if strings.TrimSpace(input.Title) == "" {
			return ProjectRecord{}, fmt.Errorf("title is required")
		}
		project, err := svc.Vikunja.CreateProject(ctx, vikunja.NewProject{
			Title:           input.Title,
			Description:     input.Description,
			HexColor:        input.HexColor,
			ParentProjectID: input.ParentProjectID,
		})
		if err != nil {
			return ProjectRecord{}, err
		}
		return projectRecord(project), nil
	})
}

// ProjectUpdateHandler merges the provided fields into the current project.
func ProjectUpdateHandler(svc *Services) mcp.ToolHandlerFor[ProjectUpdateInput, ProjectRecord] {
	return instrument(svc, "update_project", func(ctx context.Context, input ProjectUpdateInput) (ProjectRecord, error) {
		project, err := svc.Vikunja.UpdateProject(ctx, input.ProjectID, func(doc vikunja.Document) {
			if input.Title != "" {
				doc["title"] = input.Title
			}
			if input.Description != "" {
				doc["description"] = input.Description
			}
			if input.HexColor != "" {
				doc["hex_color"] = input.HexColor
			}
			if input.ParentProjectID != nil && *input.ParentProjectID >= 0 {
				doc["parent_project_id"] = *input.ParentProjectID
			}
		})
		if err != nil {
			return ProjectRecord{}, err
		}
		return projectRecord(project), nil
	})
}

// ProjectDeleteHandler deletes a project.
func ProjectDeleteHandler(svc *Services) mcp.ToolHandlerFor[ProjectIDInput, ProjectDeleteResult] {
	return instrument(svc, "delete_project", func(ctx context.Context, input ProjectIDInput) (ProjectDeleteResult, error) {
		if err := svc.Vikunja.DeleteProject(ctx, input.ProjectID); err != nil {
			return ProjectDeleteResult{}, err
		}
		return ProjectDeleteResult{Deleted: true, ProjectID: input.ProjectID}, nil
	})
}

// ProjectExportHandler dumps every project with its tasks. A project whose
// tasks cannot be fetched is still exported, flagged with task_error.
func ProjectExportHandler(svc *Services) mcp.ToolHandlerFor[ProjectExportInput, ProjectExportResult] {
	return instrument(svc, "export_all_projects", func(ctx context.Context, _ ProjectExportInput) (ProjectExportResult, error) {
		projects, err := svc.Vikunja.ListProjects(ctx)
		if err != nil {
			return ProjectExportResult{}, err
		}
		result := ProjectExportResult{
			ExportedAt:   svc.now().UTC().Format(time.RFC3339),
			ProjectCount: len(projects),
			Projects:     make([]ExportedProject, 0, len(projects)),
		}
		for _, project := range projects {
			exported := ExportedProject{
				ID:              project.ID,
				Title:           project.Title,
				Description:     project.Description,
				ParentProjectID: project.ParentProjectID,
				HexColor:        project.HexColor,
			}
			tasks, err := svc.Vikunja.ListTasks(ctx, project.ID)
			if err != nil {
				svc.logger().Warn("export: fetch tasks failed", "project_id", project.ID, "error", err)
				exported.Tasks = []TaskRecord{}
				exported.TaskError = "Failed to fetch tasks"
			} else {
				exported.Tasks = taskRecords(tasks)
				result.TaskCount += len(exported.Tasks)
			}
			result.Projects = append(result.Projects, exported)
		}
		return result, nil
	})
}
