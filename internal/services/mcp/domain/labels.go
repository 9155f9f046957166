package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LabelListInput represents the MCP tool input for listing labels.
type LabelListInput struct{}

// LabelListResult represents the MCP tool output for listing labels.
type LabelListResult struct {
	Labels []LabelRecord `json:"labels" jsonschema:"all labels visible to the token"`
}

// LabelCreateInput represents the MCP tool input for label creation.
type LabelCreateInput struct {
	Title    string `json:"title" jsonschema:"label title"`
	HexColor string `json:"hex_color" jsonschema:"hex color, e.g. e74c3c"`
}

// LabelIDInput addresses a single label.
type LabelIDInput struct {
	LabelID int64 `json:"label_id" jsonschema:"ID of the label"`
}

// LabelDeleteResult represents the MCP tool output for label deletion.
type LabelDeleteResult struct {
	Deleted bool  `json:"deleted"`
	LabelID int64 `json:"label_id"`
}

// LabelListTool defines the MCP tool schema for listing labels.
func LabelListTool() *mcp.Tool {
	return &mcp.Tool{Name: "list_labels", Description: "List all available labels"}
}

// LabelCreateTool defines the MCP tool schema for creating a label.
func LabelCreateTool() *mcp.Tool {
	return &mcp.Tool{Name: "create_label", Description: "Create a new label"}
}

// LabelDeleteTool defines the MCP tool schema for deleting a label.
func LabelDeleteTool() *mcp.Tool {
	return &mcp.Tool{Name: "delete_label", Description: "Delete a label"}
}

// LabelListHandler lists labels.
func LabelListHandler(svc *Services) mcp.ToolHandlerFor[LabelListInput, LabelListResult] {
	return instrument(svc, "list_labels", func(ctx context.Context, _ LabelListInput) (LabelListResult, error) {
		labels, err := svc.Vikunja.ListLabels(ctx)
		if err != nil {
			return LabelListResult{}, err
		}
		result := LabelListResult{Labels: make([]LabelRecord, 0, len(labels))}
		for _, l := range labels {
			result.Labels = append(result.Labels, labelRecord(l))
		}
		return result, nil
	})
}

// LabelCreateHandler creates a label.
func LabelCreateHandler(svc *Services) mcp.ToolHandlerFor[LabelCreateInput, LabelRecord] {
	return instrument(svc, "create_label", func(ctx context.Context, input LabelCreateInput) (LabelRecord, error) {
		if strings.TrimSpace(input.Title) == "" {
			return LabelRecord{}, fmt.Errorf("title is required")
		}
		label, err := svc.Vikunja.CreateLabel(ctx, input.Title, input.HexColor)
		if err != nil {
			return LabelRecord{}, err
		}
		return labelRecord(label), nil
	})
}

// LabelDeleteHandler deletes a label.
func LabelDeleteHandler(svc *Services) mcp.ToolHandlerFor[LabelIDInput, LabelDeleteResult] {
	return instrument(svc, "delete_label", func(ctx context.Context, input LabelIDInput) (LabelDeleteResult, error) {
		if err := svc.Vikunja.DeleteLabel(ctx, input.LabelID); err != nil {
			return LabelDeleteResult{}, err
		}
		return LabelDeleteResult{Deleted: true, LabelID: input.LabelID}, nil
	})
}
