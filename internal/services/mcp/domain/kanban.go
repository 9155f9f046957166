package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/projectconfig"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// BucketListResult represents the MCP tool output for listing buckets.
type BucketListResult struct {
	Buckets []BucketRecord `json:"buckets" jsonschema:"buckets of the kanban view"`
}

// BucketCreateInput represents the MCP tool input for bucket creation.
type BucketCreateInput struct {
	ProjectID int64  `json:"project_id" jsonschema:"ID of the project"`
	ViewID    int64  `json:"view_id" jsonschema:"ID of the view (get from get_kanban_view)"`
	Title     string `json:"title" jsonschema:"bucket/column title"`
	Position  int64  `json:"position,omitempty" jsonschema:"sort position (0 = first)"`
	Limit     int64  `json:"limit,omitempty" jsonschema:"WIP limit (0 = no limit)"`
}

// BucketInput addresses a single bucket.
type BucketInput struct {
	ProjectID int64 `json:"project_id" jsonschema:"ID of the project"`
	ViewID    int64 `json:"view_id" jsonschema:"ID of the view (get from get_kanban_view)"`
	BucketID  int64 `json:"bucket_id" jsonschema:"ID of the bucket"`
}

// BucketDeleteResult represents the MCP tool output for bucket deletion.
type BucketDeleteResult struct {
	Deleted  bool  `json:"deleted"`
	BucketID int64 `json:"bucket_id"`
}

// BucketSortResult represents the MCP tool output for re-sorting a bucket.
type BucketSortResult struct {
	Sorted   int             `json:"sorted" jsonschema:"number of repositioned tasks"`
	Tasks    []PositionEntry `json:"tasks" jsonschema:"applied positions in order"`
	Strategy string          `json:"strategy" jsonschema:"strategy used"`
	Errors   []string        `json:"errors" jsonschema:"per-task failures"`
}

// BucketListTool defines the MCP tool schema for listing buckets.
func BucketListTool() *mcp.Tool {
	return &mcp.Tool{Name: "list_buckets", Description: "List kanban buckets (columns) in a view"}
}

// BucketCreateTool defines the MCP tool schema for creating a bucket.
func BucketCreateTool() *mcp.Tool {
	return &mcp.Tool{Name: "create_bucket", Description: "Create a kanban bucket (column)"}
}

// BucketDeleteTool defines the MCP tool schema for deleting a bucket.
func BucketDeleteTool() *mcp.Tool {
	return &mcp.Tool{Name: "delete_bucket", Description: "Delete a kanban bucket (column). Tasks move to the default bucket"}
}

// BucketSortTool defines the MCP tool schema for re-sorting a bucket.
func BucketSortTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sort_bucket",
		Description: "Re-sort all tasks in a bucket by the configured sort strategy, assigning positions 1000, 2000, ...",
	}
}

// BucketListHandler lists a view's buckets.
func BucketListHandler(svc *Services) mcp.ToolHandlerFor[ViewInput, BucketListResult] {
	return instrument(svc, "list_buckets", func(ctx context.Context, input ViewInput) (BucketListResult, error) {
		buckets, err := svc.Vikunja.ListBuckets(ctx, input.ProjectID, input.ViewID)
		if err != nil {
			return BucketListResult{}, err
		}
		result := BucketListResult{Buckets: make([]BucketRecord, 0, len(buckets))}
		for _, b := range buckets {
			result.Buckets = append(result.Buckets, bucketRecord(b))
		}
		return result, nil
	})
}

// BucketCreateHandler creates a bucket.
func BucketCreateHandler(svc *Services) mcp.ToolHandlerFor[BucketCreateInput, BucketRecord] {
	return instrument(svc, "create_bucket", func(ctx context.Context, input BucketCreateInput) (BucketRecord, error) {
		if strings.TrimSpace(input.Title) == "" {
			return BucketRecord{}, fmt.Errorf("title is required")
		}
		bucket, err := svc.Vikunja.CreateBucket(ctx, input.ProjectID, input.ViewID, vikunja.NewBucket{
			Title:    input.Title,
			Position: input.Position,
			Limit:    input.Limit,
		})
		if err != nil {
			return BucketRecord{}, err
		}
		return bucketRecord(bucket), nil
	})
}

// BucketDeleteHandler deletes a bucket.
func BucketDeleteHandler(svc *Services) mcp.ToolHandlerFor[BucketInput, BucketDeleteResult] {
	return instrument(svc, "delete_bucket", func(ctx context.Context, input BucketInput) (BucketDeleteResult, error) {
		if err := svc.Vikunja.DeleteBucket(ctx, input.ProjectID, input.ViewID, input.BucketID); err != nil {
			return BucketDeleteResult{}, err
		}
		return BucketDeleteResult{Deleted: true, BucketID: input.BucketID}, nil
	})
}

// BucketSortHandler renumbers a bucket's tasks by its strategy. Missing
// config, unknown bucket and manual strategy are reported in errors.
func BucketSortHandler(svc *Services) mcp.ToolHandlerFor[BucketInput, BucketSortResult] {
	return instrument(svc, "sort_bucket", func(ctx context.Context, input BucketInput) (BucketSortResult, error) {
		result := BucketSortResult{
			Tasks:    []PositionEntry{},
			Strategy: projectconfig.StrategyManual,
			Errors:   []string{},
		}

		settings, err := svc.Configs.Settings(input.ProjectID)
		if err != nil {
			return BucketSortResult{}, err
		}
		if settings == nil {
			result.Errors = append(result.Errors, "No project config found")
			return result, nil
		}

		buckets, err := svc.Vikunja.ListBuckets(ctx, input.ProjectID, input.ViewID)
		if err != nil {
			return BucketSortResult{}, err
		}
		bucketTitle := ""
		for _, b := range buckets {
			if b.ID == input.BucketID {
				bucketTitle = b.Title
				break
			}
		}
		if bucketTitle == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Bucket %d not found", input.BucketID))
			return result, nil
		}

		result.Strategy = settings.StrategyFor(bucketTitle)
		if result.Strategy == projectconfig.StrategyManual {
			result.Errors = append(result.Errors, "Bucket uses manual sorting - no auto-sort applied")
			return result, nil
		}

		tasks, err := svc.Vikunja.BucketTasks(ctx, input.ProjectID, input.ViewID, input.BucketID)
		if err != nil {
			return BucketSortResult{}, err
		}
		if len(tasks) == 0 {
			return result, nil
		}

		sorted := sortedByStrategy(tasks, result.Strategy)
		entries := make([]PositionEntry, 0, len(sorted))
		for i, t := range sorted {
			entries = append(entries, PositionEntry{TaskID: t.ID, Position: ptr(float64(i+1) * positionGap)})
		}
		applied := svc.setPositions(ctx, input.ViewID, entries)
		result.Sorted = applied.Updated
		result.Tasks = applied.Tasks
		result.Errors = append(result.Errors, applied.Errors...)
		return result, nil
	})
}

func ptr[T any](v T) *T {
	return &v
}
