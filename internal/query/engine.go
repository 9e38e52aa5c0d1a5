// Package query turns the current filter state into an ordered,
// deduplicated task list. Every criterion is conjunctive: a task must
// satisfy all active criteria to appear.
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pdarraugh/taskdeck/internal/models"
)

// TaskSource is the narrow slice of the persistent store the engine needs.
type TaskSource interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
}

// Filter is the complete filter state. The zero value matches all
// incomplete tasks.
type Filter struct {
	Search        string
	CategoryID    string   // empty means no category filter
	TagIDs        []string // a task must carry every listed tag
	ShowCompleted bool     // false: only incomplete; true: only completed
}

// Engine evaluates filters against a task source.
type Engine struct {
	source TaskSource
}

// NewEngine creates an engine reading from the given source.
func NewEngine(source TaskSource) *Engine {
	return &Engine{source: source}
}

// Run fetches the full task collection and returns the ordered subset
// matching the filter. An empty result is valid output, not a failure.
func (e *Engine) Run(ctx context.Context, f Filter) ([]models.Task, error) {
	all, err := e.source.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	return Apply(f, all), nil
}

// Apply filters and orders the given collection without touching storage.
// Exposed separately so the predicate is testable against any collection.
func Apply(f Filter, tasks []models.Task) []models.Task {
	search := Normalize(f.Search)

	var result []models.Task
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		if !Matches(f, search, &t) {
			continue
		}
		seen[t.ID] = struct{}{}
		result = append(result, t)
	}

	sortTasks(result)
	return result
}

// Matches reports whether a single task satisfies every active criterion.
// search must already be normalized.
func Matches(f Filter, search string, t *models.Task) bool {
	if t.Done != f.ShowCompleted {
		return false
	}
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	for _, tagID := range f.TagIDs {
		if !t.HasTag(tagID) {
			return false
		}
	}
	if search != "" {
		if !strings.Contains(Normalize(t.Title), search) &&
			!strings.Contains(Normalize(t.Description), search) {
			return false
		}
	}
	return true
}

// stripMarks removes combining marks after NFD decomposition, so "café"
// and "cafe" compare equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the text and folds diacritics for matching.
func Normalize(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// sortTasks orders by due date ascending with undated tasks last, ties by
// creation timestamp newest first, then by id so the order is total.
func sortTasks(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.Due != nil && b.Due == nil:
			return true
		case a.Due == nil && b.Due != nil:
			return false
		case a.Due != nil && b.Due != nil && !a.Due.Equal(*b.Due):
			return a.Due.Before(*b.Due)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
