package domain

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/projectconfig"
)

func TestConfigHandlers(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	_, got, err := ConfigGetHandler(svc)(ctx, nil, ConfigProjectInput{ProjectID: 7})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Config != nil {
		t.Fatalf("expected null config, got %v", got.Config)
	}

	_, set, err := ConfigSetHandler(svc)(ctx, nil, ConfigSetInput{ProjectID: 7, Config: map[string]any{"name": "Kitchen"}})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !set.Created {
		t.Error("expected created on first set")
	}
	_, again, err := ConfigSetHandler(svc)(ctx, nil, ConfigSetInput{ProjectID: 7, Config: map[string]any{
		"name":          "Kitchen",
		"sort_strategy": map[string]any{"default": "due_date"},
	}})
	if err != nil {
		t.Fatalf("set again: %v", err)
	}
	if again.Created {
		t.Error("expected replace to report created=false")
	}

	_, updated, err := ConfigUpdateHandler(svc)(ctx, nil, ConfigUpdateInput{ProjectID: 7, Updates: map[string]any{
		"sort_strategy": map[string]any{"buckets": map[string]any{"Oven": "start_date"}},
	}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := projectconfig.Config{
		"name": "Kitchen",
		"sort_strategy": map[string]any{
			"default": "due_date",
			"buckets": map[string]any{"Oven": "start_date"},
		},
	}
	if diff := cmp.Diff(any(want), updated.Config); diff != "" {
		t.Errorf("merged config mismatch (-want +got):\n%s", diff)
	}

	if _, err := svc.Configs.Set(3, projectconfig.Config{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, listed, err := ConfigListHandler(svc)(ctx, nil, ConfigListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	wantList := []projectconfig.Entry{{ProjectID: 3, Name: "Project 3"}, {ProjectID: 7, Name: "Kitchen"}}
	if diff := cmp.Diff(wantList, listed.Projects); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	_, deleted, err := ConfigDeleteHandler(svc)(ctx, nil, ConfigProjectInput{ProjectID: 7})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted.Deleted {
		t.Error("expected deleted=true")
	}
	_, missing, err := ConfigDeleteHandler(svc)(ctx, nil, ConfigProjectInput{ProjectID: 7})
	if err != nil {
		t.Fatalf("delete again: %v", err)
	}
	if missing.Deleted {
		t.Error("expected deleted=false for a missing config")
	}
}

func sourdoughConfig() projectconfig.Config {
	return projectconfig.Config{
		"name": "Bakery",
		"templates": map[string]any{
			"sourdough": map[string]any{
				"description":    "Weekend loaf",
				"default_labels": []any{"Bread"},
				"tasks": []any{
					map[string]any{"title": "Feed starter", "ref": "feed", "offset_hours": -20},
					map[string]any{"title": "Bake", "ref": "bake", "offset_hours": 0, "blocked_by": []any{"feed"}},
				},
			},
		},
	}
}

func TestTemplateHandler(t *testing.T) {
	t.Run("expands and creates", func(t *testing.T) {
		svc, fake := newTestServices(t)
		projectID := fake.addProject("Bakery")
		if _, err := svc.Configs.Set(projectID, sourdoughConfig()); err != nil {
			t.Fatalf("set config: %v", err)
		}

		_, result, err := TemplateHandler(svc)(context.Background(), nil, TemplateInput{
			ProjectID:   projectID,
			Template:    "sourdough",
			AnchorTime:  "2025-12-21T09:00:00Z",
			Labels:      []string{"Party"},
			TitleSuffix: "(Sun)",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Created != 2 || result.RelationsCreated != 1 || len(result.Errors) != 0 {
			t.Fatalf("unexpected result: %+v", result)
		}
		if diff := cmp.Diff([]string{"Bread", "Party"}, result.LabelsCreated); diff != "" {
			t.Errorf("labels_created mismatch (-want +got):\n%s", diff)
		}

		ids := createdIDs(result)
		feed := fake.task(ids["Feed starter (Sun)"])
		if feed.StartDate != "2025-12-20T00:00:00Z" || feed.EndDate != "2025-12-20T23:59:00Z" {
			t.Errorf("unexpected feed dates: %s - %s", feed.StartDate, feed.EndDate)
		}
		bake := fake.task(ids["Bake (Sun)"])
		if bake.StartDate != "2025-12-21T00:00:00Z" {
			t.Errorf("unexpected bake start: %s", bake.StartDate)
		}
		if diff := cmp.Diff([]string{"Bread", "Party"}, labelTitles(bake)); diff != "" {
			t.Errorf("bake labels mismatch (-want +got):\n%s", diff)
		}
		wantRelations := []relationCall{{TaskID: bake.ID, Kind: relationBlocked, OtherTaskID: feed.ID}}
		if diff := cmp.Diff(wantRelations, fake.relations); diff != "" {
			t.Errorf("relations mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("errors", func(t *testing.T) {
		svc, fake := newTestServices(t)
		projectID := fake.addProject("Bakery")
		emptyID := fake.addProject("Plain")
		if _, err := svc.Configs.Set(projectID, sourdoughConfig()); err != nil {
			t.Fatalf("set config: %v", err)
		}
		if _, err := svc.Configs.Set(emptyID, projectconfig.Config{"name": "Plain"}); err != nil {
			t.Fatalf("set config: %v", err)
		}

		tests := []struct {
			name  string
			input TemplateInput
			want  string
		}{
			{
				name:  "no config",
				input: TemplateInput{ProjectID: 999, Template: "sourdough", AnchorTime: "2025-12-21T09:00:00Z"},
				want:  "No config found for project 999",
			},
			{
				name:  "unknown template",
				input: TemplateInput{ProjectID: projectID, Template: "rye", AnchorTime: "2025-12-21T09:00:00Z"},
				want:  "Template 'rye' not found. Available: [sourdough]",
			},
			{
				name:  "no templates",
				input: TemplateInput{ProjectID: emptyID, Template: "rye", AnchorTime: "2025-12-21T09:00:00Z"},
				want:  "Template 'rye' not found. Available: none",
			},
			{
				name:  "bad anchor",
				input: TemplateInput{ProjectID: projectID, Template: "sourdough", AnchorTime: "next sunday"},
				want:  fmt.Sprintf("Invalid anchor_time %q: expected an ISO datetime", "next sunday"),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := TemplateHandler(svc)(context.Background(), nil, tt.input)
				if err == nil || err.Error() != tt.want {
					t.Fatalf("expected error %q, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestExpandTemplate(t *testing.T) {
	tmpl := projectconfig.Template{
		DefaultLabels: []string{"Bread"},
		Tasks: []projectconfig.TemplateTask{
			{Title: "Shape", Ref: "shape", OffsetHours: 15.5},
		},
	}
	anchor, err := parseAnchor("2025-12-21T09:00:00+02:00")
	if err != nil {
		t.Fatalf("parse anchor: %v", err)
	}

	got := expandTemplate(tmpl, anchor, nil, "", "Oven")
	want := []BatchTaskInput{{
		Title:     "Shape",
		StartDate: "2025-12-22T00:00:00Z",
		EndDate:   "2025-12-22T23:59:00Z",
		Labels:    []string{"Bread"},
		Ref:       "shape",
		Bucket:    "Oven",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("expansion mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAnchorLayouts(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{value: "2025-12-21T09:00:00Z", want: time.Date(2025, 12, 21, 9, 0, 0, 0, time.UTC)},
		{value: "2025-12-21T09:00:00", want: time.Date(2025, 12, 21, 9, 0, 0, 0, time.UTC)},
		{value: "2025-12-21", want: time.Date(2025, 12, 21, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseAnchor(tt.value)
		if err != nil {
			t.Fatalf("parseAnchor(%q): %v", tt.value, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseAnchor(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
