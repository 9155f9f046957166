package vikunja

import (
	"context"
	"net/http"
)

// ListLabels returns all labels visible to the token.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	var labels []Label
	if err := c.do(ctx, http.MethodGet, "/labels", nil, nil, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// CreateLabel creates a label.
func (c *Client) CreateLabel(ctx context.Context, title, hexColor string) (Label, error) {
	body := struct {
		Title    string `json:"title"`
		HexColor string `json:"hex_color"`
	}{Title: title, HexColor: hexColor}
	var label Label
	err := c.do(ctx, http.MethodPut, "/labels", nil, body, &label)
	return label, err
}

// DeleteLabel deletes a label.
func (c *Client) DeleteLabel(ctx context.Context, labelID int64) error {
	return c.do(ctx, http.MethodDelete, "/labels/{label}", []int64{labelID}, nil, nil)
}
