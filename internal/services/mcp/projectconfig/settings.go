package projectconfig

import (
	"fmt"
	"slices"

	"github.com/go-viper/mapstructure/v2"
)

// Sort strategies understood by the positioning code.
const (
	StrategyManual       = "manual"
	StrategyStartDate    = "start_date"
	StrategyDueDate      = "due_date"
	StrategyEndDate      = "end_date"
	StrategyPriority     = "priority"
	StrategyAlphabetical = "alphabetical"
	StrategyCreated      = "created"
)

// Settings is the typed form of a project config.
type Settings struct {
	Name          string              `mapstructure:"name"`
	SortStrategy  SortStrategy        `mapstructure:"sort_strategy"`
	DefaultLabels []string            `mapstructure:"default_labels"`
	DefaultBucket string              `mapstructure:"default_bucket"`
	Templates     map[string]Template `mapstructure:"templates"`
}

// SortStrategy picks an ordering per bucket title.
type SortStrategy struct {
	Default string            `mapstructure:"default"`
	Buckets map[string]string `mapstructure:"buckets"`
}

// Template is a named sequence of tasks placed relative to an anchor time.
type Template struct {
	Description   string         `mapstructure:"description"`
	Anchor        string         `mapstructure:"anchor"`
	DefaultLabels []string       `mapstructure:"default_labels"`
	Tasks         []TemplateTask `mapstructure:"tasks"`
}

// TemplateTask is one task of a template.
type TemplateTask struct {
	Title         string   `mapstructure:"title"`
	Ref           string   `mapstructure:"ref"`
	OffsetHours   float64  `mapstructure:"offset_hours"`
	DurationHours *float64 `mapstructure:"duration_hours"`
	BlockedBy     []string `mapstructure:"blocked_by"`
}

// Decode converts a free-form config into Settings. Unknown keys are ignored.
func Decode(cfg Config) (*Settings, error) {
	var settings Settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build config decoder: %w", err)
	}
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode project config: %w", err)
	}
	return &settings, nil
}

// StrategyFor returns the strategy for a bucket title: an explicit bucket
// entry, then the project default, then manual.
func (s *Settings) StrategyFor(bucketTitle string) string {
	if s == nil {
		return StrategyManual
	}
	if strategy := s.SortStrategy.Buckets[bucketTitle]; strategy != "" {
		return strategy
	}
	if s.SortStrategy.Default != "" {
		return s.SortStrategy.Default
	}
	return StrategyManual
}

// TemplateNames lists template names alphabetically.
func (s *Settings) TemplateNames() []string {
	names := make([]string, 0, len(s.Templates))
	for name := range s.Templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
