package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/projectconfig"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// anchorLayouts are the accepted anchor_time formats, most specific first.
var anchorLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ConfigProjectInput addresses one project's config.
type ConfigProjectInput struct {
	ProjectID int64 `json:"project_id" jsonschema:"ID of the Vikunja project"`
}

// ConfigGetResult represents the MCP tool output for reading a project config.
type ConfigGetResult struct {
	ProjectID int64 `json:"project_id"`
	Config    any   `json:"config" jsonschema:"project config, null when none exists"`
}

// ConfigSetInput represents the MCP tool input for replacing a project config.
type ConfigSetInput struct {
	ProjectID int64          `json:"project_id" jsonschema:"ID of the Vikunja project"`
	Config    map[string]any `json:"config" jsonschema:"configuration object: {name, sort_strategy, default_labels, default_bucket, templates}"`
}

// ConfigSetResult represents the MCP tool output for replacing a project config.
type ConfigSetResult struct {
	ProjectID int64 `json:"project_id"`
	Config    any   `json:"config"`
	Created   bool  `json:"created"`
}

// ConfigUpdateInput represents the MCP tool input for merging into a project config.
type ConfigUpdateInput struct {
	ProjectID int64          `json:"project_id" jsonschema:"ID of the Vikunja project"`
	Updates   map[string]any `json:"updates" jsonschema:"fields to update (deep merged with existing)"`
}

// ConfigUpdateResult represents the MCP tool output for merging into a project config.
type ConfigUpdateResult struct {
	ProjectID int64 `json:"project_id"`
	Config    any   `json:"config"`
}

// ConfigDeleteResult represents the MCP tool output for deleting a project config.
type ConfigDeleteResult struct {
	ProjectID int64 `json:"project_id"`
	Deleted   bool  `json:"deleted"`
}

// ConfigListInput represents the MCP tool input for listing project configs.
type ConfigListInput struct{}

// ConfigListResult represents the MCP tool output for listing project configs.
type ConfigListResult struct {
	Projects []projectconfig.Entry `json:"projects"`
}

// TemplateInput represents the MCP tool input for instantiating a template.
type TemplateInput struct {
	ProjectID   int64    `json:"project_id" jsonschema:"ID of the project to create tasks in"`
	Template    string   `json:"template" jsonschema:"template name, e.g. sourdough"`
	AnchorTime  string   `json:"anchor_time" jsonschema:"ISO datetime for the anchor task, e.g. 2025-12-21T09:00:00Z"`
	Labels      []string `json:"labels,omitempty" jsonschema:"additional labels beyond template defaults"`
	TitleSuffix string   `json:"title_suffix,omitempty" jsonschema:"appended to task titles, e.g. (Sun party)"`
	Bucket      string   `json:"bucket,omitempty" jsonschema:"override default bucket placement"`
}

// ConfigGetTool defines the MCP tool schema for reading a project config.
func ConfigGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_project_config",
		Description: "Get configuration for a project: sort strategy, default labels and bucket, templates. config is null when none exists",
	}
}

// ConfigSetTool defines the MCP tool schema for replacing a project config.
func ConfigSetTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "set_project_config",
		Description: "Set configuration for a project, replacing any existing one. " +
			"Schema: name, sort_strategy {default, buckets: {bucket: strategy}}, default_labels, default_bucket, " +
			"templates {name: {description, anchor, default_labels, tasks}}",
	}
}

// ConfigUpdateTool defines the MCP tool schema for merging into a project config.
func ConfigUpdateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "update_project_config",
		Description: "Partially update a project config. Nested objects are deep merged, e.g. {\"sort_strategy\": {\"buckets\": {\"New Bucket\": \"start_date\"}}}",
	}
}

// ConfigDeleteTool defines the MCP tool schema for deleting a project config.
func ConfigDeleteTool() *mcp.Tool {
	return &mcp.Tool{Name: "delete_project_config", Description: "Delete configuration for a project"}
}

// ConfigListTool defines the MCP tool schema for listing project configs.
func ConfigListTool() *mcp.Tool {
	return &mcp.Tool{Name: "list_project_configs", Description: "List all configured projects"}
}

// TemplateTool defines the MCP tool schema for instantiating a template.
func TemplateTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "create_from_template",
		Description: "Create tasks from a project template. Each template task starts offset_hours after anchor_time " +
			"and spans that whole day on the Gantt chart",
	}
}

// ConfigGetHandler reads a project config.
func ConfigGetHandler(svc *Services) mcp.ToolHandlerFor[ConfigProjectInput, ConfigGetResult] {
	return instrument(svc, "get_project_config", func(_ context.Context, input ConfigProjectInput) (ConfigGetResult, error) {
		cfg, err := svc.Configs.Get(input.ProjectID)
		if err != nil {
			return ConfigGetResult{}, err
		}
		result := ConfigGetResult{ProjectID: input.ProjectID}
		if cfg != nil {
			result.Config = cfg
		}
		return result, nil
	})
}

// ConfigSetHandler replaces a project config.
func ConfigSetHandler(svc *Services) mcp.ToolHandlerFor[ConfigSetInput, ConfigSetResult] {
	return instrument(svc, "set_project_config", func(_ context.Context, input ConfigSetInput) (ConfigSetResult, error) {
		cfg := input.Config
		if cfg == nil {
			cfg = map[string]any{}
		}
		created, err := svc.Configs.Set(input.ProjectID, cfg)
		if err != nil {
			return ConfigSetResult{}, err
		}
		return ConfigSetResult{ProjectID: input.ProjectID, Config: cfg, Created: created}, nil
	})
}

// ConfigUpdateHandler deep-merges updates into a project config.
func ConfigUpdateHandler(svc *Services) mcp.ToolHandlerFor[ConfigUpdateInput, ConfigUpdateResult] {
	return instrument(svc, "update_project_config", func(_ context.Context, input ConfigUpdateInput) (ConfigUpdateResult, error) {
		merged, err := svc.Configs.Update(input.ProjectID, input.Updates)
		if err != nil {
			return ConfigUpdateResult{}, err
		}
		return ConfigUpdateResult{ProjectID: input.ProjectID, Config: merged}, nil
	})
}

// ConfigDeleteHandler removes a project config.
func ConfigDeleteHandler(svc *Services) mcp.ToolHandlerFor[ConfigProjectInput, ConfigDeleteResult] {
	return instrument(svc, "delete_project_config", func(_ context.Context, input ConfigProjectInput) (ConfigDeleteResult, error) {
		deleted, err := svc.Configs.Delete(input.ProjectID)
		if err != nil {
			return ConfigDeleteResult{}, err
		}
		return ConfigDeleteResult{ProjectID: input.ProjectID, Deleted: deleted}, nil
	})
}

// ConfigListHandler lists configured projects.
func ConfigListHandler(svc *Services) mcp.ToolHandlerFor[ConfigListInput, ConfigListResult] {
	return instrument(svc, "list_project_configs", func(_ context.Context, _ ConfigListInput) (ConfigListResult, error) {
		entries, err := svc.Configs.List()
		if err != nil {
			return ConfigListResult{}, err
		}
		return ConfigListResult{Projects: entries}, nil
	})
}

// TemplateHandler expands a template around the anchor time and creates the
// tasks through the batch pipeline.
func TemplateHandler(svc *Services) mcp.ToolHandlerFor[TemplateInput, BatchCreateResult] {
	return instrument(svc, "create_from_template", func(ctx context.Context, input TemplateInput) (BatchCreateResult, error) {
		settings, err := svc.Configs.Settings(input.ProjectID)
		if err != nil {
			return BatchCreateResult{}, err
		}
		if settings == nil {
			return BatchCreateResult{}, fmt.Errorf("No config found for project %d", input.ProjectID)
		}
		tmpl, ok := settings.Templates[input.Template]
		if !ok {
			available := "none"
			if names := settings.TemplateNames(); len(names) > 0 {
				available = "[" + strings.Join(names, ", ") + "]"
			}
			return BatchCreateResult{}, fmt.Errorf("Template '%s' not found. Available: %s", input.Template, available)
		}
		anchor, err := parseAnchor(input.AnchorTime)
		if err != nil {
			return BatchCreateResult{}, err
		}

		tasks := expandTemplate(tmpl, anchor, input.Labels, input.TitleSuffix, input.Bucket)
		return svc.batchCreate(ctx, batchOptions{
			projectID:           input.ProjectID,
			tasks:               tasks,
			createMissingLabels: true,
			useProjectConfig:    true,
			applySort:           true,
		})
	})
}

func parseAnchor(value string) (time.Time, error) {
	for _, layout := range anchorLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("Invalid anchor_time %q: expected an ISO datetime", value)
}

// expandTemplate turns template tasks into batch inputs. Each task covers
// the whole calendar day (in the anchor's offset) it starts on.
func expandTemplate(tmpl projectconfig.Template, anchor time.Time, extraLabels []string, titleSuffix, bucket string) []BatchTaskInput {
	labels := make([]string, 0, len(tmpl.DefaultLabels)+len(extraLabels))
	labels = append(labels, tmpl.DefaultLabels...)
	labels = append(labels, extraLabels...)

	tasks := make([]BatchTaskInput, 0, len(tmpl.Tasks))
	for _, def := range tmpl.Tasks {
		start := anchor.Add(time.Duration(def.OffsetHours * float64(time.Hour)))
		day := start.Format(time.DateOnly)

		title := def.Title
		if titleSuffix != "" {
			title = title + " " + titleSuffix
		}
		task := BatchTaskInput{
			Title:     title,
			StartDate: day + "T00:00:00Z",
			EndDate:   day + "T23:59:00Z",
			Labels:    append([]string(nil), labels...),
			Ref:       def.Ref,
			BlockedBy: append([]string(nil), def.BlockedBy...),
			Bucket:    bucket,
		}
		tasks = append(tasks, task)
	}
	return tasks
}
