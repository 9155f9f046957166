package domain

import "github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"

// ProjectRecord is the tool view of a project.
type ProjectRecord struct {
	ID              int64  `json:"id" jsonschema:"project identifier"`
	Title           string `json:"title" jsonschema:"project title"`
	Description     string `json:"description" jsonschema:"project description"`
	ParentProjectID int64  `json:"parent_project_id" jsonschema:"parent project identifier (0 for root)"`
	HexColor        string `json:"hex_color" jsonschema:"project color"`
}

// LabelRef identifies a label attached to a task.
type LabelRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// AssigneeRef identifies a user assigned to a task.
type AssigneeRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// TaskRecord is the tool view of a task.
type TaskRecord struct {
	ID          int64         `json:"id" jsonschema:"task identifier"`
	Title       string        `json:"title" jsonschema:"task title"`
	Description string        `json:"description" jsonschema:"task description"`
	Done        bool          `json:"done" jsonschema:"whether the task is complete"`
	Priority    int64         `json:"priority" jsonschema:"priority (0-5)"`
	Position    *float64      `json:"position" jsonschema:"view-specific position, null outside view listings"`
	StartDate   string        `json:"start_date" jsonschema:"start date"`
	EndDate     string        `json:"end_date" jsonschema:"end date"`
	DueDate     string        `json:"due_date" jsonschema:"due date"`
	Reminders   []string      `json:"reminders" jsonschema:"absolute reminder datetimes"`
	ProjectID   int64         `json:"project_id" jsonschema:"owning project identifier"`
	BucketID    int64         `json:"bucket_id" jsonschema:"kanban bucket identifier"`
	Labels      []LabelRef    `json:"labels" jsonschema:"attached labels"`
	Assignees   []AssigneeRef `json:"assignees" jsonschema:"assigned users"`
}

// LabelRecord is the tool view of a label.
type LabelRecord struct {
	ID       int64  `json:"id" jsonschema:"label identifier"`
	Title    string `json:"title" jsonschema:"label title"`
	HexColor string `json:"hex_color" jsonschema:"label color"`
}

// BucketRecord is the tool view of a kanban bucket.
type BucketRecord struct {
	ID        int64   `json:"id" jsonschema:"bucket identifier"`
	Title     string  `json:"title" jsonschema:"bucket title"`
	ProjectID int64   `json:"project_id" jsonschema:"owning project identifier"`
	Position  float64 `json:"position" jsonschema:"bucket position"`
	Limit     int64   `json:"limit" jsonschema:"task limit (0 for none)"`
}

// ViewRecord is the tool view of a project view.
type ViewRecord struct {
	ID        int64  `json:"id" jsonschema:"view identifier"`
	Title     string `json:"title" jsonschema:"view title"`
	ProjectID int64  `json:"project_id" jsonschema:"owning project identifier"`
	ViewKind  string `json:"view_kind" jsonschema:"view kind (list, gantt, table, kanban)"`
}

// RelationRecord is one edge of a task's relations.
type RelationRecord struct {
	TaskID         int64  `json:"task_id" jsonschema:"source task identifier"`
	OtherTaskID    int64  `json:"other_task_id" jsonschema:"related task identifier"`
	OtherTaskTitle string `json:"other_task_title" jsonschema:"related task title"`
	RelationKind   string `json:"relation_kind" jsonschema:"relation kind"`
}

// TaskRef is a short task summary used by batch and bulk results.
type TaskRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func projectRecord(p vikunja.Project) ProjectRecord {
	return ProjectRecord{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		ParentProjectID: p.ParentProjectID,
		HexColor:        p.HexColor,
	}
}

func projectRecords(projects []vikunja.Project) []ProjectRecord {
	out := make([]ProjectRecord, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectRecord(p))
	}
	return out
}

func taskRecord(t vikunja.Task) TaskRecord {
	rec := TaskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Done:        t.Done,
		Priority:    t.Priority,
		Position:    t.Position,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		DueDate:     t.DueDate,
		Reminders:   make([]string, 0, len(t.Reminders)),
		ProjectID:   t.OwningProjectID(),
		BucketID:    t.BucketID,
		Labels:      make([]LabelRef, 0, len(t.Labels)),
		Assignees:   make([]AssigneeRef, 0, len(t.Assignees)),
	}
	for _, r := range t.Reminders {
		rec.Reminders = append(rec.Reminders, r.Reminder)
	}
	for _, l := range t.Labels {
		rec.Labels = append(rec.Labels, LabelRef{ID: l.ID, Title: l.Title})
	}
	for _, a := range t.Assignees {
		rec.Assignees = append(rec.Assignees, AssigneeRef{ID: a.ID, Username: a.Username})
	}
	return rec
}

func taskRecords(tasks []vikunja.Task) []TaskRecord {
	out := make([]TaskRecord, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskRecord(t))
	}
	return out
}

func labelRecord(l vikunja.Label) LabelRecord {
	return LabelRecord{ID: l.ID, Title: l.Title, HexColor: l.HexColor}
}

func bucketRecord(b vikunja.Bucket) BucketRecord {
	return BucketRecord{
		ID:        b.ID,
		Title:     b.Title,
		ProjectID: b.OwningProjectID(),
		Position:  b.Position,
		Limit:     b.Limit,
	}
}

func viewRecord(v vikunja.View) ViewRecord {
	return ViewRecord{ID: v.ID, Title: v.Title, ProjectID: v.ProjectID, ViewKind: v.ViewKind}
}
