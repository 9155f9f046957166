package domain

import (
	"cmp"
	"slices"
	"strings"

	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/projectconfig"
	"github.com/louisbranch/vikunja-mcp/internal/services/mcp/vikunja"
	"golang.org/x/text/cases"
)

// Positions are spaced by positionGap so later inserts can take midpoints.
const positionGap = 1000.0

// missingDate sorts dateless tasks after every dated one.
const missingDate = "9999-12-31"

// Vikunja reports unset dates as the zero time.
const zeroDatePrefix = "0001-01-01"

// sortKey orders tasks within one strategy. Only one field is set per
// strategy, so comparing both is enough.
type sortKey struct {
	text   string
	number float64
}

func compareSortKeys(a, b sortKey) int {
	if c := strings.Compare(a.text, b.text); c != 0 {
		return c
	}
	return cmp.Compare(a.number, b.number)
}

// sortFields is the subset of a task the strategies look at.
type sortFields struct {
	ID        int64
	Title     string
	Priority  int64
	StartDate string
	EndDate   string
	DueDate   string
}

func fieldsOf(t vikunja.Task) sortFields {
	return sortFields{
		ID:        t.ID,
		Title:     t.Title,
		Priority:  t.Priority,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		DueDate:   t.DueDate,
	}
}

func dateKey(value string) sortKey {
	if value == "" || strings.HasPrefix(value, zeroDatePrefix) {
		return sortKey{text: missingDate}
	}
	return sortKey{text: value}
}

func keyFor(f sortFields, strategy string) sortKey {
	switch strategy {
	case projectconfig.StrategyStartDate:
		return dateKey(f.StartDate)
	case projectconfig.StrategyDueDate:
		return dateKey(f.DueDate)
	case projectconfig.StrategyEndDate:
		return dateKey(f.EndDate)
	case projectconfig.StrategyPriority:
		return sortKey{number: -float64(f.Priority)}
	case projectconfig.StrategyAlphabetical:
		return sortKey{text: cases.Fold().String(f.Title)}
	case projectconfig.StrategyCreated:
		return sortKey{number: float64(f.ID)}
	default:
		return sortKey{}
	}
}

type rankedTask struct {
	key      sortKey
	position float64
}

// bucketOrder is the key-sorted list of tasks already in a bucket.
type bucketOrder struct {
	strategy string
	entries  []rankedTask
}

func newBucketOrder(tasks []vikunja.Task, strategy string) *bucketOrder {
	order := &bucketOrder{strategy: strategy, entries: make([]rankedTask, 0, len(tasks))}
	for _, t := range tasks {
		position := 0.0
		if t.Position != nil {
			position = *t.Position
		}
		order.entries = append(order.entries, rankedTask{key: keyFor(fieldsOf(t), strategy), position: position})
	}
	slices.SortStableFunc(order.entries, func(a, b rankedTask) int {
		return compareSortKeys(a.key, b.key)
	})
	return order
}

// insertionIndex returns the leftmost index at which key keeps the order.
func (o *bucketOrder) insertionIndex(key sortKey) int {
	idx, _ := slices.BinarySearchFunc(o.entries, key, func(e rankedTask, k sortKey) int {
		return compareSortKeys(e.key, k)
	})
	return idx
}

// positionAt computes the view position for a task inserted at idx.
func (o *bucketOrder) positionAt(idx int) float64 {
	switch {
	case len(o.entries) == 0:
		return positionGap
	case idx == 0:
		first := o.entries[0].position
		if first > 0 {
			return first / 2
		}
		return -positionGap
	case idx >= len(o.entries):
		return o.entries[len(o.entries)-1].position + positionGap
	default:
		return (o.entries[idx-1].position + o.entries[idx].position) / 2
	}
}

// place finds the position for f and records it so later placements see it.
func (o *bucketOrder) place(f sortFields) float64 {
	key := keyFor(f, o.strategy)
	idx := o.insertionIndex(key)
	position := o.positionAt(idx)
	o.entries = slices.Insert(o.entries, idx, rankedTask{key: key, position: position})
	return position
}

// sortedByStrategy returns tasks in strategy order, ties keeping input order.
func sortedByStrategy(tasks []vikunja.Task, strategy string) []vikunja.Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b vikunja.Task) int {
		return compareSortKeys(keyFor(fieldsOf(a), strategy), keyFor(fieldsOf(b), strategy))
	})
	return sorted
}

// labelMatches reports whether any label title contains filter, ignoring case.
func labelMatches(labels []vikunja.Label, filter string) bool {
	caser := cases.Fold()
	needle := caser.String(filter)
	for _, l := range labels {
		if strings.Contains(caser.String(l.Title), needle) {
			return true
		}
	}
	return false
}
