package service

import (
	"fmt"

	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
}

type toolRegistration struct {
	tool    *mcp.Tool
	handler any
}

func registerAll(registrar mcpRegistrationTarget, registrations []toolRegistration) error {
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

// registerProjectTools registers project CRUD and export tools.
func registerProjectTools(registrar mcpRegistrationTarget, svc *domain.Services) error {
	return registerAll(registrar, []toolRegistration{
		{tool: domain.ProjectListTool(), handler: domain.ProjectListHandler(svc)},
		{tool: domain.ProjectGetTool(), handler: domain.ProjectGetHandler(svc)},
		{tool: domain.ProjectCreateTool(), handler: domain.ProjectCreateHandler(svc)},
		{tool: domain.ProjectUpdateTool(), handler: domain.ProjectUpdateHandler(svc)},
		{tool: domain.ProjectDeleteTool(), handler: domain.ProjectDeleteHandler(svc)},
		{tool: domain.ProjectExportTool(), handler: domain.ProjectExportHandler(svc)},
	})
}

// registerTaskTools registers single-task tools.
func registerTaskTools(registrar mcpRegistrationTarget, svc *domain.Services) error {
	return registerAll(registrar, []toolRegistration{
		{tool: domain.TaskListTool(), handler: domain.TaskListHandler(svc)},
		{tool: domain.TaskGetTool(), handler: domain.TaskGetHandler(svc)},
		{tool: domain.TaskCreateTool(), handler: domain.TaskCreateHandler(svc)},
		{tool: domain.TaskUpdateTool(), handler: domain.TaskUpdateHandler(svc)},
		{tool: domain.TaskCompleteTool(), handler: domain.TaskCompleteHandler(svc)},
		{tool: domain.TaskDeleteTool(), handler: domain.TaskDeleteHandler(svc)},
		{tool: domain.TaskPositionTool(), handler: domain.TaskPositionHandler(svc)},
		{tool: domain.TaskAddLabelTool(), handler: domain.TaskAddLabelHandler(svc)},
		{tool: domain.TaskAssignTool(), handler: domain.TaskAssignHandler(svc)},
		{tool: domain.TaskUnassignTool(), handler: domain.TaskUnassignHandler(svc)},
		{tool: domain.TaskRemindersTool(), handler: domain.TaskRemindersHandler(svc)},
		{tool: domain.TaskMoveTool(), handler: domain.TaskMoveHandler(svc)},
	})
}

func registerLabelTools(registrar mcpRegistrationTarget, svc *domain.Services) error {
	return registerAll(registrar, []toolRegistration{
		{tool: domain.LabelListTool(), handler: domain.LabelListHandler(svc)},
		{tool: domain.LabelCreateTool(), handler: domain.LabelCreateHandler(svc)},
		{tool: domain.LabelDeleteTool(), handler: domain.LabelDeleteHandler(svc)},
	})
}

func registerViewTools(registrar mcpRegistrationTarget, svc *domain.Services) error {
	return registerAll(registrar, []toolRegistration{
		{tool: domain.ViewListTool(), handler: domain.ViewListHandler(svc)},
		{tool: domain.ViewTasksTool(), handler: domain.ViewTasksHandler(svc)},
		{tool: domain.TasksByBucketTool(), handler: domain.TasksByBucketHandler(svc)},
		{tool: domain.ViewPositionTool(), handler: domain.ViewPositionHandler(svc)},
		{tool: domain.KanbanViewTool(), handler: domain.KanbanViewHandler(svc)},
	})
}

func registerKanbanTools(registrar mcpRegistrationTarget, svc *domain.Services) error {
	return registerAll(registrar, []toolRegistration{
		{tool: domain.BucketListTool(), handler: domain.BucketListHandler(svc)},
		{tool: domain.BucketCreateTool(), handler: domain.BucketCreateHandler(svc)},
		{tool: domain.BucketDeleteTool(), handler: domain.BucketDeleteHandler(svc)},
		{tool: domain.BucketSortTool(), handler: domain.BucketSortHandler(svc)},
	})
}

func registerRelationTools(registrar mcpRegistrationTarget, svc *domain.Services) error {
	return registerAll(registrar, []toolRegistration{
		{tool: domain.RelationCreateTool(), handler: domain.RelationCreateHandler(svc)},
		{tool: domain.RelationListTool(), handler: domain.RelationListHandler(svc)},
	})
}

// registerBatchTools registers the multi-task create/update/position tools and
// project setup.
func registerBatchTools(registrar mcpRegistrationTarget, svc *domain.Services) error {
	return registerAll(registrar, []toolRegistration{
		{tool: domain.BatchCreateTool(), handler: domain.BatchCreateHandler(svc)},
		{tool: domain.BatchUpdateTool(), handler: domain.BatchUpdateHandler(svc)},
		{tool: domain.BatchPositionsTool(), handler: domain.BatchPositionsHandler(svc)},
		{tool: domain.SetupProjectTool(), handler: domain.SetupProjectHandler(svc)},
	})
}

func registerBulkTools(registrar mcpRegistrationTarget, svc *domain.Services) error {
	return registerAll(registrar, []toolRegistration{
		{tool: domain.CompleteByLabelTool(), handler: domain.CompleteByLabelHandler(svc)},
		{tool: domain.MoveByLabelTool(), handler: domain.MoveByLabelHandler(svc)},
	})
}

// registerConfigTools registers the local project-config store tools and
// template instantiation.
func registerConfigTools(registrar mcpRegistrationTarget, svc *domain.Services) error {
	return registerAll(registrar, []toolRegistration{
		{tool: domain.ConfigGetTool(), handler: domain.ConfigGetHandler(svc)},
		{tool: domain.ConfigSetTool(), handler: domain.ConfigSetHandler(svc)},
		{tool: domain.ConfigUpdateTool(), handler: domain.ConfigUpdateHandler(svc)},
		{tool: domain.ConfigDeleteTool(), handler: domain.ConfigDeleteHandler(svc)},
		{tool: domain.ConfigListTool(), handler: domain.ConfigListHandler(svc)},
		{tool: domain.TemplateTool(), handler: domain.TemplateHandler(svc)},
	})
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}
