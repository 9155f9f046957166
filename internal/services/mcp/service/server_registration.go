package service

import (
	"fmt"

	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/domain"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationModule struct {
	name     string
	register func(mcpRegistrationTarget) error
}

const (
	mcpProjectToolsModuleName  = "project-tools"
	mcpTaskToolsModuleName     = "task-tools"
	mcpLabelToolsModuleName    = "label-tools"
	mcpViewToolsModuleName     = "view-tools"
	mcpKanbanToolsModuleName   = "kanban-tools"
	mcpRelationToolsModuleName = "relation-tools"
	mcpBatchToolsModuleName    = "batch-tools"
	mcpBulkToolsModuleName     = "bulk-tools"
	mcpConfigToolsModuleName   = "config-tools"
)

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

// mcpToolRegistrars lists each distinct handler signature once; tools sharing
// an input/output pair share a registrar.
var mcpToolRegistrars = []mcpToolRegistrar{
	// projects
	newMCPToolRegistrar[domain.ProjectListInput, domain.ProjectListResult](),
	newMCPToolRegistrar[domain.ProjectIDInput, domain.ProjectRecord](),
	newMCPToolRegistrar[domain.ProjectCreateInput, domain.ProjectRecord](),
	newMCPToolRegistrar[domain.ProjectUpdateInput, domain.ProjectRecord](),
	newMCPToolRegistrar[domain.ProjectIDInput, domain.ProjectDeleteResult](),
	newMCPToolRegistrar[domain.ProjectExportInput, domain.ProjectExportResult](),
	// tasks
	newMCPToolRegistrar[domain.TaskListInput, domain.TaskListResult](),
	newMCPToolRegistrar[domain.TaskIDInput, domain.TaskRecord](),
	newMCPToolRegistrar[domain.TaskCreateInput, domain.TaskRecord](),
	newMCPToolRegistrar[domain.TaskUpdateInput, domain.TaskRecord](),
	newMCPToolRegistrar[domain.TaskIDInput, domain.TaskDeleteResult](),
	newMCPToolRegistrar[domain.TaskPositionInput, domain.TaskPositionResult](),
	newMCPToolRegistrar[domain.TaskLabelInput, domain.TaskLabelResult](),
	newMCPToolRegistrar[domain.TaskAssigneeInput, domain.TaskAssignResult](),
	newMCPToolRegistrar[domain.TaskAssigneeInput, domain.TaskUnassignResult](),
	newMCPToolRegistrar[domain.TaskRemindersInput, domain.TaskRecord](),
	newMCPToolRegistrar[domain.TaskMoveInput, domain.TaskMoveResult](),
	// labels
	newMCPToolRegistrar[domain.LabelListInput, domain.LabelListResult](),
	newMCPToolRegistrar[domain.LabelCreateInput, domain.LabelRecord](),
	newMCPToolRegistrar[domain.LabelIDInput, domain.LabelDeleteResult](),
	// views
	newMCPToolRegistrar[domain.ProjectIDInput, domain.ViewListResult](),
	newMCPToolRegistrar[domain.ViewInput, domain.ViewTasksResult](),
	newMCPToolRegistrar[domain.ViewInput, domain.TasksByBucketResult](),
	newMCPToolRegistrar[domain.ViewPositionInput, vikunja.TaskPosition](),
	newMCPToolRegistrar[domain.ProjectIDInput, domain.ViewRecord](),
	// kanban
	newMCPToolRegistrar[domain.ViewInput, domain.BucketListResult](),
	newMCPToolRegistrar[domain.BucketCreateInput, domain.BucketRecord](),
	newMCPToolRegistrar[domain.BucketInput, domain.BucketDeleteResult](),
	newMCPToolRegistrar[domain.BucketInput, domain.BucketSortResult](),
	// relations
	newMCPToolRegistrar[domain.RelationCreateInput, domain.RelationCreateResult](),
	newMCPToolRegistrar[domain.TaskIDInput, domain.RelationListResult](),
	// batch and bulk
	newMCPToolRegistrar[domain.BatchCreateInput, domain.BatchCreateResult](),
	newMCPToolRegistrar[domain.BatchUpdateInput, domain.BatchUpdateResult](),
	newMCPToolRegistrar[domain.BatchPositionsInput, domain.BatchPositionsResult](),
	newMCPToolRegistrar[domain.SetupProjectInput, domain.SetupProjectResult](),
	newMCPToolRegistrar[domain.LabelBulkInput, domain.CompleteByLabelResult](),
	newMCPToolRegistrar[domain.LabelMoveInput, domain.MoveByLabelResult](),
	// project config
	newMCPToolRegistrar[domain.ConfigProjectInput, domain.ConfigGetResult](),
	newMCPToolRegistrar[domain.ConfigSetInput, domain.ConfigSetResult](),
	newMCPToolRegistrar[domain.ConfigUpdateInput, domain.ConfigUpdateResult](),
	newMCPToolRegistrar[domain.ConfigProjectInput, domain.ConfigDeleteResult](),
	newMCPToolRegistrar[domain.ConfigListInput, domain.ConfigListResult](),
	newMCPToolRegistrar[domain.TemplateInput, domain.BatchCreateResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func newMCPRegistrationModules(services *domain.Services) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpProjectToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerProjectTools(registrar, services)
			},
		},
		{
			name: mcpTaskToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerTaskTools(registrar, services)
			},
		},
		{
			name: mcpLabelToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerLabelTools(registrar, services)
			},
		},
		{
			name: mcpViewToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerViewTools(registrar, services)
			},
		},
		{
			name: mcpKanbanToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerKanbanTools(registrar, services)
			},
		},
		{
			name: mcpRelationToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerRelationTools(registrar, services)
			},
		},
		{
			name: mcpBatchToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerBatchTools(registrar, services)
			},
		},
		{
			name: mcpBulkToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerBulkTools(registrar, services)
			},
		},
		{
			name: mcpConfigToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerConfigTools(registrar, services)
			},
		},
	}
}
