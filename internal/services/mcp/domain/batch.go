package domain

import (
	"context"
	"fmt"

	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/projectconfig"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// labelPalette colors auto-created labels, round-robin.
var labelPalette = []string{"#3498db", "#e74c3c", "#2ecc71", "#f39c12", "#9b59b6", "#1abc9c"}

// defaultSetupLabelColor is used for setup_project labels without a color.
const defaultSetupLabelColor = "#3498db"

// BatchTaskInput describes one task of a batch. Ref is a local name other
// tasks of the same batch use in blocked_by, blocks and subtask_of.
type BatchTaskInput struct {
	Title       string   `json:"title" jsonschema:"task title (required)"`
	Description string   `json:"description,omitempty" jsonschema:"optional description"`
	StartDate   string   `json:"start_date,omitempty" jsonschema:"start date in ISO format (Gantt)"`
	EndDate     string   `json:"end_date,omitempty" jsonschema:"end date in ISO format (Gantt)"`
	DueDate     string   `json:"due_date,omitempty" jsonschema:"due date in ISO format (deadline)"`
	Priority    int64    `json:"priority,omitempty" jsonschema:"priority 0-5"`
	Labels      []string `json:"labels,omitempty" jsonschema:"label names"`
	Bucket      string   `json:"bucket,omitempty" jsonschema:"kanban bucket name"`
	Ref         string   `json:"ref,omitempty" jsonschema:"local reference for relations"`
	BlockedBy   []string `json:"blocked_by,omitempty" jsonschema:"refs of tasks blocking this one"`
	Blocks      []string `json:"blocks,omitempty" jsonschema:"refs of tasks this one blocks"`
	SubtaskOf   string   `json:"subtask_of,omitempty" jsonschema:"ref of the parent task"`
}

func (t BatchTaskInput) sortFields(id int64) sortFields {
	return sortFields{
		ID:        id,
		Title:     t.Title,
		Priority:  t.Priority,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		DueDate:   t.DueDate,
	}
}

// BatchCreateInput represents the MCP tool input for batch task creation.
type BatchCreateInput struct {
	ProjectID            int64            `json:"project_id" jsonschema:"ID of the project to create tasks in"`
	Tasks                []BatchTaskInput `json:"tasks" jsonschema:"tasks to create"`
	CreateMissingLabels  *bool            `json:"create_missing_labels,omitempty" jsonschema:"auto-create labels that don't exist (default true)"`
	CreateMissingBuckets bool             `json:"create_missing_buckets,omitempty" jsonschema:"auto-create buckets that don't exist (default false)"`
	UseProjectConfig     *bool            `json:"use_project_config,omitempty" jsonschema:"apply default_bucket from the project config (default true)"`
	ApplySort            *bool            `json:"apply_sort,omitempty" jsonschema:"auto-position tasks by the config sort_strategy (default true)"`
	ApplyDefaultLabels   bool             `json:"apply_default_labels,omitempty" jsonschema:"apply config default_labels to tasks without labels (default false)"`
}

// CreatedTask is one task created by a batch.
type CreatedTask struct {
	Ref   string `json:"ref,omitempty"`
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// BatchCreateResult represents the MCP tool output for batch task creation.
type BatchCreateResult struct {
	Created          int           `json:"created" jsonschema:"number of created tasks"`
	Tasks            []CreatedTask `json:"tasks" jsonschema:"created tasks"`
	LabelsCreated    []string      `json:"labels_created" jsonschema:"names of auto-created labels"`
	RelationsCreated int           `json:"relations_created" jsonschema:"number of created relations"`
	Errors           []string      `json:"errors" jsonschema:"per-item failures"`
}

// BatchUpdateEntry is one update. Absent fields keep their value.
type BatchUpdateEntry struct {
	TaskID      int64    `json:"task_id,omitempty" jsonschema:"ID of the task (required)"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	StartDate   *string  `json:"start_date,omitempty"`
	EndDate     *string  `json:"end_date,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	Priority    *int64   `json:"priority,omitempty"`
	Reminders   []string `json:"reminders,omitempty" jsonschema:"replaces all reminders when present"`
}

// BatchUpdateInput represents the MCP tool input for batch task updates.
type BatchUpdateInput struct {
	Updates []BatchUpdateEntry `json:"updates" jsonschema:"updates to apply"`
}

// BatchUpdateResult represents the MCP tool output for batch task updates.
type BatchUpdateResult struct {
	Updated int       `json:"updated"`
	Tasks   []TaskRef `json:"tasks"`
	Errors  []string  `json:"errors"`
}

// PositionEntry is a task position within a view.
type PositionEntry struct {
	TaskID   int64    `json:"task_id,omitempty" jsonschema:"ID of the task"`
	Position *float64 `json:"position,omitempty" jsonschema:"position value"`
}

// BatchPositionsInput represents the MCP tool input for batch positioning.
type BatchPositionsInput struct {
	ViewID    int64           `json:"view_id" jsonschema:"ID of the view (get from get_kanban_view)"`
	Positions []PositionEntry `json:"positions" jsonschema:"list of {task_id, position}"`
}

// BatchPositionsResult represents the MCP tool output for batch positioning.
type BatchPositionsResult struct {
	Updated int             `json:"updated"`
	Tasks   []PositionEntry `json:"tasks"`
	Errors  []string        `json:"errors"`
}

// SetupLabel is a label to ensure during project setup.
type SetupLabel struct {
	Name  string `json:"name" jsonschema:"label name"`
	Color string `json:"color,omitempty" jsonschema:"hex color (default #3498db)"`
}

// SetupProjectInput represents the MCP tool input for project setup.
type SetupProjectInput struct {
	ProjectID int64            `json:"project_id" jsonschema:"ID of the project to set up"`
	Buckets   []string         `json:"buckets,omitempty" jsonschema:"bucket names to ensure exist (created in order)"`
	Labels    []SetupLabel     `json:"labels,omitempty" jsonschema:"labels to ensure exist"`
	Tasks     []BatchTaskInput `json:"tasks,omitempty" jsonschema:"tasks to create (same schema as batch_create_tasks)"`
}

// SetupProjectResult represents the MCP tool output for project setup.
type SetupProjectResult struct {
	BucketsCreated []string           `json:"buckets_created"`
	LabelsCreated  []string           `json:"labels_created"`
	TasksResult    *BatchCreateResult `json:"tasks_result"`
	Errors         []string           `json:"errors"`
}

// BatchCreateTool defines the MCP tool schema for batch task creation.
func BatchCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "batch_create_tasks",
		Description: "Create multiple tasks with labels, relations and bucket placement. " +
			"Tasks reference each other through ref in blocked_by, blocks and subtask_of. " +
			"Applies default_bucket and sort_strategy from the project config",
	}
}

// BatchUpdateTool defines the MCP tool schema for batch task updates.
func BatchUpdateTool() *mcp.Tool {
	return &mcp.Tool{Name: "batch_update_tasks", Description: "Update multiple tasks at once; only provided fields change"}
}

// BatchPositionsTool defines the MCP tool schema for batch positioning.
func BatchPositionsTool() *mcp.Tool {
	return &mcp.Tool{Name: "batch_set_positions", Description: "Set positions for multiple tasks in a view"}
}

// SetupProjectTool defines the MCP tool schema for project setup.
func SetupProjectTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "setup_project",
		Description: "Set up a project with buckets, labels and tasks in one operation",
	}
}

// BatchCreateHandler creates a batch of tasks.
func BatchCreateHandler(svc *Services) mcp.ToolHandlerFor[BatchCreateInput, BatchCreateResult] {
	return instrument(svc, "batch_create_tasks", func(ctx context.Context, input BatchCreateInput) (BatchCreateResult, error) {
		return svc.batchCreate(ctx, batchOptions{
			projectID:            input.ProjectID,
			tasks:                input.Tasks,
			createMissingLabels:  boolOr(input.CreateMissingLabels, true),
			createMissingBuckets: input.CreateMissingBuckets,
			useProjectConfig:     boolOr(input.UseProjectConfig, true),
			applySort:            boolOr(input.ApplySort, true),
			applyDefaultLabels:   input.ApplyDefaultLabels,
		})
	})
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

type batchOptions struct {
	projectID            int64
	tasks                []BatchTaskInput
	createMissingLabels  bool
	createMissingBuckets bool
	useProjectConfig     bool
	applySort            bool
	applyDefaultLabels   bool
}

type createdPair struct {
	input BatchTaskInput
	task  vikunja.Task
}

// batchCreate runs the batch pipeline: config defaults, labels, buckets,
// tasks, label attachment, relations, bucket placement and sorting. Item
// failures go to Errors; only config and label listing failures abort.
func (s *Services) batchCreate(ctx context.Context, opts batchOptions) (BatchCreateResult, error) {
	result := BatchCreateResult{
		Tasks:         []CreatedTask{},
		LabelsCreated: []string{},
		Errors:        []string{},
	}

	var settings *projectconfig.Settings
	if opts.useProjectConfig {
		var err error
		settings, err = s.Configs.Settings(opts.projectID)
		if err != nil {
			return BatchCreateResult{}, err
		}
	}

	tasks := make([]BatchTaskInput, len(opts.tasks))
	copy(tasks, opts.tasks)
	if settings != nil {
		for i := range tasks {
			if opts.applyDefaultLabels && len(tasks[i].Labels) == 0 && len(settings.DefaultLabels) > 0 {
				tasks[i].Labels = append([]string(nil), settings.DefaultLabels...)
			}
			if tasks[i].Bucket == "" && settings.DefaultBucket != "" {
				tasks[i].Bucket = settings.DefaultBucket
			}
		}
	}

	labelIDs, err := s.resolveLabels(ctx, tasks, opts.createMissingLabels, &result)
	if err != nil {
		return BatchCreateResult{}, err
	}

	var viewID int64
	bucketIDs := map[string]int64{}
	if needsBuckets(tasks) {
		viewID, bucketIDs = s.resolveBuckets(ctx, opts.projectID, tasks, opts.createMissingBuckets, &result)
	}

	refs := map[string]int64{}
	created := make([]createdPair, 0, len(tasks))
	for _, in := range tasks {
		task, err := s.Vikunja.CreateTask(ctx, opts.projectID, vikunja.NewTask{
			Title:       in.Title,
			Description: in.Description,
			StartDate:   in.StartDate,
			EndDate:     in.EndDate,
			DueDate:     in.DueDate,
			Priority:    in.Priority,
		})
		if err != nil {
			title := in.Title
			if title == "" {
				title = "?"
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to create task '%s': %v", title, err))
			continue
		}
		result.Created++
		result.Tasks = append(result.Tasks, CreatedTask{Ref: in.Ref, ID: task.ID, Title: task.Title})
		if in.Ref != "" {
			refs[in.Ref] = task.ID
		}
		created = append(created, createdPair{input: in, task: task})
	}

	for _, c := range created {
		for _, name := range c.input.Labels {
			labelID, ok := labelIDs[name]
			if !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("Label '%s' not found for task %d", name, c.task.ID))
				continue
			}
			if err := s.Vikunja.AddLabelToTask(ctx, c.task.ID, labelID); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to add label '%s' to task %d: %v", name, c.task.ID, err))
			}
		}
	}

	for _, c := range created {
		for _, ref := range c.input.BlockedBy {
			s.relate(ctx, c.task.ID, relationBlocked, ref, refs, "blocked_by", "blocked", &result)
		}
		for _, ref := range c.input.Blocks {
			s.relate(ctx, c.task.ID, relationBlocking, ref, refs, "blocks", "blocking", &result)
		}
		if c.input.SubtaskOf != "" {
			s.relate(ctx, c.task.ID, relationParentTask, c.input.SubtaskOf, refs, "subtask_of", "subtask", &result)
		}
	}

	if viewID == 0 || len(bucketIDs) == 0 {
		return result, nil
	}
	for _, c := range created {
		if c.input.Bucket == "" {
			continue
		}
		bucketID, ok := bucketIDs[c.input.Bucket]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Bucket '%s' not found for task %d", c.input.Bucket, c.task.ID))
			continue
		}
		if _, err := s.moveToBucket(ctx, TaskPositionInput{
			TaskID:    c.task.ID,
			ProjectID: opts.projectID,
			ViewID:    viewID,
			BucketID:  bucketID,
		}); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to set bucket for task %d: %v", c.task.ID, err))
		}
	}

	if opts.applySort && settings != nil {
		s.sortNewTasks(ctx, opts.projectID, viewID, settings, bucketIDs, created, &result)
	}
	return result, nil
}

// resolveLabels maps label names to ids, creating missing ones in
// first-seen order when allowed.
func (s *Services) resolveLabels(ctx context.Context, tasks []BatchTaskInput, createMissing bool, result *BatchCreateResult) (map[string]int64, error) {
	existing, err := s.Vikunja.ListLabels(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(existing))
	for _, l := range existing {
		ids[l.Title] = l.ID
	}

	var missing []string
	seen := map[string]bool{}
	for _, t := range tasks {
		for _, name := range t.Labels {
			if _, ok := ids[name]; ok || seen[name] {
				continue
			}
			seen[name] = true
			missing = append(missing, name)
		}
	}
	if !createMissing {
		return ids, nil
	}
	for i, name := range missing {
		label, err := s.Vikunja.CreateLabel(ctx, name, labelPalette[i%len(labelPalette)])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to create label '%s': %v", name, err))
			continue
		}
		ids[name] = label.ID
		result.LabelsCreated = append(result.LabelsCreated, name)
	}
	return ids, nil
}

func needsBuckets(tasks []BatchTaskInput) bool {
	for _, t := range tasks {
		if t.Bucket != "" {
			return true
		}
	}
	return false
}

// resolveBuckets finds the kanban view and maps bucket titles to ids. A
// missing view is reported and leaves bucket placement off.
func (s *Services) resolveBuckets(ctx context.Context, projectID int64, tasks []BatchTaskInput, createMissing bool, result *BatchCreateResult) (int64, map[string]int64) {
	ids := map[string]int64{}
	view, err := s.kanbanView(ctx, projectID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to get kanban view: %v", err))
		return 0, ids
	}
	existing, err := s.Vikunja.ListBuckets(ctx, projectID, view.ID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to get kanban view: %v", err))
		return 0, ids
	}
	for _, b := range existing {
		ids[b.Title] = b.ID
	}
	if !createMissing {
		return view.ID, ids
	}

	var missing []string
	seen := map[string]bool{}
	for _, t := range tasks {
		if t.Bucket == "" || seen[t.Bucket] {
			continue
		}
		if _, ok := ids[t.Bucket]; ok {
			continue
		}
		seen[t.Bucket] = true
		missing = append(missing, t.Bucket)
	}
	for i, name := range missing {
		bucket, err := s.Vikunja.CreateBucket(ctx, projectID, view.ID, vikunja.NewBucket{
			Title:    name,
			Position: int64(len(existing) + i),
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to create bucket '%s': %v", name, err))
			continue
		}
		ids[name] = bucket.ID
	}
	return view.ID, ids
}

// relate creates one relation from taskID to the task named by ref.
func (s *Services) relate(ctx context.Context, taskID int64, kind, ref string, refs map[string]int64, field, label string, result *BatchCreateResult) {
	otherID, ok := refs[ref]
	if !ok {
		result.Errors = append(result.Errors, fmt.Sprintf("Unknown ref '%s' in %s for task %d", ref, field, taskID))
		return
	}
	if err := s.Vikunja.CreateRelation(ctx, taskID, kind, otherID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to create %s relation for task %d: %v", label, taskID, err))
		return
	}
	result.RelationsCreated++
}

// sortNewTasks positions the new tasks of each bucket among the bucket's
// existing tasks. Each placement is visible to the next one.
func (s *Services) sortNewTasks(ctx context.Context, projectID, viewID int64, settings *projectconfig.Settings, bucketIDs map[string]int64, created []createdPair, result *BatchCreateResult) {
	var order []string
	byBucket := map[string][]createdPair{}
	for _, c := range created {
		if c.input.Bucket == "" {
			continue
		}
		if _, ok := byBucket[c.input.Bucket]; !ok {
			order = append(order, c.input.Bucket)
		}
		byBucket[c.input.Bucket] = append(byBucket[c.input.Bucket], c)
	}

	for _, name := range order {
		strategy := settings.StrategyFor(name)
		if strategy == projectconfig.StrategyManual {
			continue
		}
		bucketID, ok := bucketIDs[name]
		if !ok {
			continue
		}
		existing, err := s.Vikunja.BucketTasks(ctx, projectID, viewID, bucketID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to fetch existing tasks in bucket '%s': %v", name, err))
			continue
		}

		fresh := map[int64]bool{}
		for _, c := range byBucket[name] {
			fresh[c.task.ID] = true
		}
		others := make([]vikunja.Task, 0, len(existing))
		for _, t := range existing {
			if !fresh[t.ID] {
				others = append(others, t)
			}
		}

		placement := newBucketOrder(others, strategy)
		for _, c := range byBucket[name] {
			position := placement.place(c.input.sortFields(c.task.ID))
			if _, err := s.Vikunja.SetTaskPosition(ctx, c.task.ID, viewID, position); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to set position for task %d: %v", c.task.ID, err))
			}
		}
	}
}

// BatchUpdateHandler applies several task updates.
func BatchUpdateHandler(svc *Services) mcp.ToolHandlerFor[BatchUpdateInput, BatchUpdateResult] {
	return instrument(svc, "batch_update_tasks", func(ctx context.Context, input BatchUpdateInput) (BatchUpdateResult, error) {
		result := BatchUpdateResult{Tasks: []TaskRef{}, Errors: []string{}}
		for _, entry := range input.Updates {
			if entry.TaskID == 0 {
				result.Errors = append(result.Errors, "Update missing task_id")
				continue
			}
			task, err := svc.Vikunja.UpdateTask(ctx, entry.TaskID, entry.apply)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to update task %d: %v", entry.TaskID, err))
				continue
			}
			result.Updated++
			result.Tasks = append(result.Tasks, TaskRef{ID: entry.TaskID, Title: task.Title})
		}
		return result, nil
	})
}

func (e BatchUpdateEntry) apply(doc vikunja.Document) {
	setIfPresent(doc, "title", e.Title)
	setIfPresent(doc, "description", e.Description)
	setIfPresent(doc, "start_date", e.StartDate)
	setIfPresent(doc, "end_date", e.EndDate)
	setIfPresent(doc, "due_date", e.DueDate)
	if e.Priority != nil {
		doc["priority"] = *e.Priority
	}
	if e.Reminders != nil {
		doc["reminders"] = vikunja.AbsoluteReminders(e.Reminders)
	}
}

func setIfPresent(doc vikunja.Document, key string, value *string) {
	if value != nil {
		doc[key] = *value
	}
}

// BatchPositionsHandler sets several view positions.
func BatchPositionsHandler(svc *Services) mcp.ToolHandlerFor[BatchPositionsInput, BatchPositionsResult] {
	return instrument(svc, "batch_set_positions", func(ctx context.Context, input BatchPositionsInput) (BatchPositionsResult, error) {
		return svc.setPositions(ctx, input.ViewID, input.Positions), nil
	})
}

func (s *Services) setPositions(ctx context.Context, viewID int64, entries []PositionEntry) BatchPositionsResult {
	result := BatchPositionsResult{Tasks: []PositionEntry{}, Errors: []string{}}
	for _, entry := range entries {
		if entry.TaskID == 0 {
			result.Errors = append(result.Errors, "Position entry missing task_id")
			continue
		}
		if entry.Position == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Position entry for task %d missing position", entry.TaskID))
			continue
		}
		if _, err := s.Vikunja.SetTaskPosition(ctx, entry.TaskID, viewID, *entry.Position); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to set position for task %d: %v", entry.TaskID, err))
			continue
		}
		result.Updated++
		result.Tasks = append(result.Tasks, PositionEntry{TaskID: entry.TaskID, Position: ptr(*entry.Position)})
	}
	return result
}

// SetupProjectHandler ensures buckets and labels exist, then creates tasks
// through the batch pipeline.
func SetupProjectHandler(svc *Services) mcp.ToolHandlerFor[SetupProjectInput, SetupProjectResult] {
	return instrument(svc, "setup_project", func(ctx context.Context, input SetupProjectInput) (SetupProjectResult, error) {
		result := SetupProjectResult{
			BucketsCreated: []string{},
			LabelsCreated:  []string{},
			Errors:         []string{},
		}

		if len(input.Buckets) > 0 {
			view, err := svc.kanbanView(ctx, input.ProjectID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to get kanban view: %v", err))
				return result, nil
			}
			existing, err := svc.Vikunja.ListBuckets(ctx, input.ProjectID, view.ID)
			if err != nil {
				return SetupProjectResult{}, err
			}
			names := map[string]bool{}
			for _, b := range existing {
				names[b.Title] = true
			}
			for i, name := range input.Buckets {
				if names[name] {
					continue
				}
				if _, err := svc.Vikunja.CreateBucket(ctx, input.ProjectID, view.ID, vikunja.NewBucket{Title: name, Position: int64(i)}); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("Failed to create bucket '%s': %v", name, err))
					continue
				}
				result.BucketsCreated = append(result.BucketsCreated, name)
			}
		}

		if len(input.Labels) > 0 {
			existing, err := svc.Vikunja.ListLabels(ctx)
			if err != nil {
				return SetupProjectResult{}, err
			}
			names := map[string]bool{}
			for _, l := range existing {
				names[l.Title] = true
			}
			for _, label := range input.Labels {
				if label.Name == "" || names[label.Name] {
					continue
				}
				color := label.Color
				if color == "" {
					color = defaultSetupLabelColor
				}
				if _, err := svc.Vikunja.CreateLabel(ctx, label.Name, color); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("Failed to create label '%s': %v", label.Name, err))
					continue
				}
				result.LabelsCreated = append(result.LabelsCreated, label.Name)
			}
		}

		if len(input.Tasks) > 0 {
			tasksResult, err := svc.batchCreate(ctx, batchOptions{
				projectID:        input.ProjectID,
				tasks:            input.Tasks,
				useProjectConfig: true,
				applySort:        true,
			})
			if err != nil {
				return SetupProjectResult{}, err
			}
			result.TasksResult = &tasksResult
		}
		return result, nil
	})
}
