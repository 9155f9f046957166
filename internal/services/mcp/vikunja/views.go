package vikunja

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListViews returns the views of a project.
func (c *Client) ListViews(ctx context.Context, projectID int64) ([]View, error) {
	var views []View
	if err := c.do(ctx, http.MethodGet, "/projects/{project}/views", []int64{projectID}, nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// ViewTasks returns the tasks of a view. Kanban views yield buckets with
// nested tasks; other views yield tasks.
func (c *Client) ViewTasks(ctx context.Context, projectID, viewID int64) ([]ViewItem, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/projects/{project}/views/{view}/tasks", []int64{projectID, viewID}, nil, &raw); err != nil {
		return nil, err
	}
	items := make([]ViewItem, 0, len(raw))
	for _, entry := range raw {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(entry, &probe); err != nil {
			return nil, fmt.Errorf("decode view item: %w", err)
		}
		if _, isBucket := probe["tasks"]; isBucket {
			var bucket Bucket
			if err := json.Unmarshal(entry, &bucket); err != nil {
				return nil, fmt.Errorf("decode view bucket: %w", err)
			}
			items = append(items, ViewItem{Bucket: &bucket})
			continue
		}
		var task Task
		if err := json.Unmarshal(entry, &task); err != nil {
			return nil, fmt.Errorf("decode view task: %w", err)
		}
		items = append(items, ViewItem{Task: &task})
	}
	return items, nil
}

// BucketTasks returns the tasks of one bucket in a kanban view, positions
// included. An unknown bucket yields no tasks.
func (c *Client) BucketTasks(ctx context.Context, projectID, viewID, bucketID int64) ([]Task, error) {
	items, err := c.ViewTasks(ctx, projectID, viewID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Bucket != nil && item.Bucket.ID == bucketID {
			return item.Bucket.Tasks, nil
		}
	}
	return nil, nil
}

// ListBuckets returns the buckets of a kanban view.
func (c *Client) ListBuckets(ctx context.Context, projectID, viewID int64) ([]Bucket, error) {
	var buckets []Bucket
	if err := c.do(ctx, http.MethodGet, "/projects/{project}/views/{view}/buckets", []int64{projectID, viewID}, nil, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// CreateBucket creates a bucket in a kanban view.
func (c *Client) CreateBucket(ctx context.Context, projectID, viewID int64, input NewBucket) (Bucket, error) {
	var bucket Bucket
	err := c.do(ctx, http.MethodPut, "/projects/{project}/views/{view}/buckets", []int64{projectID, viewID}, input, &bucket)
	return bucket, err
}

// DeleteBucket deletes a bucket.
func (c *Client) DeleteBucket(ctx context.Context, projectID, viewID, bucketID int64) error {
	return c.do(ctx, http.MethodDelete, "/projects/{project}/views/{view}/buckets/{bucket}",
		[]int64{projectID, viewID, bucketID}, nil, nil)
}
