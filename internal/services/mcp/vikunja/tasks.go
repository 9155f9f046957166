package vikunja

import (
	"context"
	"net/http"
)

// ListTasks returns all tasks of a project, done ones included.
func (c *Client) ListTasks(ctx context.Context, projectID int64) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/projects/{project}/tasks", []int64{projectID}, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches one task including related tasks.
func (c *Client) GetTask(ctx context.Context, taskID int64) (Task, error) {
	var task Task
	err := c.do(ctx, http.MethodGet, "/tasks/{task}", []int64{taskID}, nil, &task)
	return task, err
}

// CreateTask creates a task in a project.
func (c *Client) CreateTask(ctx context.Context, projectID int64, input NewTask) (Task, error) {
	var task Task
	err := c.do(ctx, http.MethodPut, "/projects/{project}/tasks", []int64{projectID}, input, &task)
	return task, err
}

// UpdateTask fetches the task, lets mutate change the raw document and posts
// it back. Vikunja replaces tasks wholesale on update.
func (c *Client) UpdateTask(ctx context.Context, taskID int64, mutate func(Document)) (Task, error) {
	ids := []int64{taskID}
	current := Document{}
	if err := c.do(ctx, http.MethodGet, "/tasks/{task}", ids, nil, &current); err != nil {
		return Task{}, err
	}
	if mutate != nil {
		mutate(current)
	}
	var task Task
	err := c.do(ctx, http.MethodPost, "/tasks/{task}", ids, current, &task)
	return task, err
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID int64) error {
	return c.do(ctx, http.MethodDelete, "/tasks/{task}", []int64{taskID}, nil, nil)
}

// AddTaskToBucket moves a task into a kanban bucket.
func (c *Client) AddTaskToBucket(ctx context.Context, projectID, viewID, bucketID, taskID int64) error {
	body := TaskBucket{TaskID: taskID, BucketID: bucketID, ProjectViewID: viewID, ProjectID: projectID}
	return c.do(ctx, http.MethodPost, "/projects/{project}/views/{view}/buckets/{bucket}/tasks",
		[]int64{projectID, viewID, bucketID}, body, &Document{})
}

// SetTaskPosition sets a task's position within one view.
func (c *Client) SetTaskPosition(ctx context.Context, taskID, viewID int64, position float64) (TaskPosition, error) {
	body := TaskPosition{ProjectViewID: viewID, Position: position}
	var out TaskPosition
	if err := c.do(ctx, http.MethodPost, "/tasks/{task}/position", []int64{taskID}, body, &out); err != nil {
		return TaskPosition{}, err
	}
	if out.TaskID == 0 {
		out.TaskID = taskID
	}
	if out.ProjectViewID == 0 {
		out.ProjectViewID = viewID
	}
	return out, nil
}

// AddLabelToTask attaches an existing label.
func (c *Client) AddLabelToTask(ctx context.Context, taskID, labelID int64) error {
	body := map[string]int64{"label_id": labelID}
	return c.do(ctx, http.MethodPut, "/tasks/{task}/labels", []int64{taskID}, body, &Document{})
}

// AssignUser adds an assignee.
func (c *Client) AssignUser(ctx context.Context, taskID, userID int64) error {
	body := map[string]int64{"user_id": userID}
	return c.do(ctx, http.MethodPut, "/tasks/{task}/assignees", []int64{taskID}, body, &Document{})
}

// UnassignUser removes an assignee.
func (c *Client) UnassignUser(ctx context.Context, taskID, userID int64) error {
	return c.do(ctx, http.MethodDelete, "/tasks/{task}/assignees/{user}", []int64{taskID, userID}, nil, nil)
}

// CreateRelation links taskID to otherTaskID with the given kind.
func (c *Client) CreateRelation(ctx context.Context, taskID int64, kind string, otherTaskID int64) error {
	body := TaskRelation{OtherTaskID: otherTaskID, RelationKind: kind}
	return c.do(ctx, http.MethodPut, "/tasks/{task}/relations", []int64{taskID}, body, &Document{})
}
