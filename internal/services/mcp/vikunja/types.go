package vikunja

import (
	"encoding/json"
	"strconv"
)

// Project is a Vikunja project.
type Project struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ParentProjectID int64  `json:"parent_project_id"`
	HexColor        string `json:"hex_color"`
}

// NewProject is the body for project creation. Zero values are omitted.
type NewProject struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	HexColor        string `json:"hex_color,omitempty"`
	ParentProjectID int64  `json:"parent_project_id,omitempty"`
}

// Label is a Vikunja label.
type Label struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	HexColor string `json:"hex_color"`
}

// User is a task assignee.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Reminder is an absolute task reminder.
type Reminder struct {
	Reminder       string `json:"reminder"`
	RelativePeriod int64  `json:"relative_period"`
	RelativeTo     string `json:"relative_to"`
}

// AbsoluteReminders converts datetimes into reminder objects.
func AbsoluteReminders(at []string) []Reminder {
	reminders := make([]Reminder, 0, len(at))
	for _, value := range at {
		reminders = append(reminders, Reminder{Reminder: value})
	}
	return reminders
}

// Task is a Vikunja task. Position is only set by view-scoped endpoints.
type Task struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Done         bool              `json:"done"`
	Priority     int64             `json:"priority"`
	Position     *float64          `json:"position,omitempty"`
	StartDate    string            `json:"start_date"`
	EndDate      string            `json:"end_date"`
	DueDate      string            `json:"due_date"`
	Reminders    []Reminder        `json:"reminders"`
	ProjectID    int64             `json:"project_id"`
	ListID       int64             `json:"list_id"`
	BucketID     int64             `json:"bucket_id"`
	Labels       []Label           `json:"labels"`
	Assignees    []User            `json:"assignees"`
	RelatedTasks map[string][]Task `json:"related_tasks"`
}

// OwningProjectID falls back to the legacy list_id field.
func (t Task) OwningProjectID() int64 {
	if t.ProjectID != 0 {
		return t.ProjectID
	}
	return t.ListID
}

// NewTask is the body for task creation. Zero values are omitted.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Priority    int64  `json:"priority,omitempty"`
}

// View is a project view (list, gantt, table, kanban).
type View struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	ProjectID int64  `json:"project_id"`
	ViewKind  string `json:"view_kind"`
}

// ViewKindKanban identifies kanban views.
const ViewKindKanban = "kanban"

// Bucket is a kanban column. Tasks is only filled by the view tasks endpoint.
type Bucket struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	ProjectID int64   `json:"project_id"`
	ListID    int64   `json:"list_id"`
	Position  float64 `json:"position"`
	Limit     int64   `json:"limit"`
	Tasks     []Task  `json:"tasks"`
}

// OwningProjectID falls back to the legacy list_id field.
func (b Bucket) OwningProjectID() int64 {
	if b.ProjectID != 0 {
		return b.ProjectID
	}
	return b.ListID
}

// NewBucket is the body for bucket creation.
type NewBucket struct {
	Title    string `json:"title"`
	Position int64  `json:"position"`
	Limit    int64  `json:"limit"`
}

// TaskBucket moves a task into a bucket.
type TaskBucket struct {
	TaskID        int64 `json:"task_id"`
	BucketID      int64 `json:"bucket_id"`
	ProjectViewID int64 `json:"project_view_id"`
	ProjectID     int64 `json:"project_id"`
}

// TaskPosition is a task's position inside one view.
type TaskPosition struct {
	TaskID        int64   `json:"task_id"`
	ProjectViewID int64   `json:"project_view_id"`
	Position      float64 `json:"position"`
}

// TaskRelation links two tasks.
type TaskRelation struct {
	TaskID       int64  `json:"task_id,omitempty"`
	OtherTaskID  int64  `json:"other_task_id"`
	RelationKind string `json:"relation_kind"`
}

// ViewItem is one entry of a view tasks listing: kanban views return
// buckets with nested tasks, every other view returns tasks.
type ViewItem struct {
	Bucket *Bucket
	Task   *Task
}

// Document is a raw JSON object used for read-modify-write updates so that
// fields this client does not model survive the round trip.
type Document map[string]any

// Int64 reads a numeric field, returning 0 when absent or not a number.
func (d Document) Int64(key string) int64 {
	switch v := d[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
