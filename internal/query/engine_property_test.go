package query

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/pdarraugh/taskdeck/internal/models"
)

var tagPool = []models.Tag{
	{ID: "tag-1", Name: "home"},
	{ID: "tag-2", Name: "work"},
	{ID: "tag-3", Name: "urgent"},
}

func taskGenerator() *rapid.Generator[models.Task] {
	return rapid.Custom(func(t *rapid.T) models.Task {
		task := *models.NewTask()
		task.Title = rapid.StringMatching(`[a-z ]{0,12}`).Draw(t, "title")
		task.Description = rapid.StringMatching(`[a-z ]{0,12}`).Draw(t, "description")
		task.Done = rapid.Bool().Draw(t, "done")
		task.CreatedAt = time.Unix(rapid.Int64Range(0, 1<<31).Draw(t, "created"), 0)
		if rapid.Bool().Draw(t, "hasDue") {
			due := time.Unix(rapid.Int64Range(0, 1<<31).Draw(t, "due"), 0)
			task.Due = &due
		}
		if rapid.Bool().Draw(t, "hasCategory") {
			task.CategoryID = rapid.SampledFrom([]string{"cat-1", "cat-2"}).Draw(t, "category")
		}
		for _, tag := range tagPool {
			if rapid.Bool().Draw(t, "tag-"+tag.ID) {
				task.Tags = append(task.Tags, tag)
			}
		}
		return task
	})
}

func filterGenerator() *rapid.Generator[Filter] {
	return rapid.Custom(func(t *rapid.T) Filter {
		var f Filter
		f.Search = rapid.StringMatching(`[a-z]{0,4}`).Draw(t, "search")
		f.CategoryID = rapid.SampledFrom([]string{"", "cat-1", "cat-2"}).Draw(t, "categoryID")
		for _, tag := range tagPool {
			if rapid.Bool().Draw(t, "select-"+tag.ID) {
				f.TagIDs = append(f.TagIDs, tag.ID)
			}
		}
		f.ShowCompleted = rapid.Bool().Draw(t, "showCompleted")
		return f
	})
}

// The output is exactly the subset satisfying the conjunction of all
// active criteria: nothing extra appears and nothing qualifying is
// omitted.
func TestPropertyResultIsExactSubset(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOfN(taskGenerator(), 0, 20).Draw(rt, "tasks")
		f := filterGenerator().Draw(rt, "filter")

		got := Apply(f, tasks)
		search := Normalize(f.Search)

		inResult := make(map[string]bool, len(got))
		for _, task := range got {
			inResult[task.ID] = true
			if !Matches(f, search, &task) {
				rt.Fatalf("task %q fails an active criterion but was returned", task.Title)
			}
		}
		for _, task := range tasks {
			if Matches(f, search, &task) && !inResult[task.ID] {
				rt.Fatalf("task %q satisfies every criterion but was omitted", task.Title)
			}
		}
	})
}

// With all other criteria fixed, show-completed=true and =false split the
// otherwise-filtered set into two disjoint halves whose union is the
// whole.
func TestPropertyCompletionPartition(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOfN(taskGenerator(), 0, 20).Draw(rt, "tasks")
		f := filterGenerator().Draw(rt, "filter")

		f.ShowCompleted = false
		open := Apply(f, tasks)
		f.ShowCompleted = true
		closed := Apply(f, tasks)

		seen := make(map[string]int)
		for _, task := range open {
			seen[task.ID]++
		}
		for _, task := range closed {
			seen[task.ID]++
		}
		for id, n := range seen {
			if n > 1 {
				rt.Fatalf("task %s appears on both sides of the partition", id)
			}
		}

		// Union must equal the set filtered by the remaining criteria.
		want := make(map[string]bool)
		search := Normalize(f.Search)
		for _, task := range tasks {
			fDone := f
			fDone.ShowCompleted = task.Done
			if Matches(fDone, search, &task) {
				want[task.ID] = true
			}
		}
		if len(seen) != len(want) {
			rt.Fatalf("union has %d tasks, expected %d", len(seen), len(want))
		}
		for id := range seen {
			if !want[id] {
				rt.Fatalf("task %s in the union does not satisfy the remaining criteria", id)
			}
		}
	})
}

// Ordering: every dated task precedes every undated one, and due dates
// never decrease along the result.
func TestPropertySortOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOfN(taskGenerator(), 0, 20).Draw(rt, "tasks")
		got := Apply(Filter{ShowCompleted: rapid.Bool().Draw(rt, "show")}, tasks)

		sawUndated := false
		var prevDue *time.Time
		for _, task := range got {
			if task.Due == nil {
				sawUndated = true
				continue
			}
			if sawUndated {
				rt.Fatalf("dated task %q after an undated one", task.Title)
			}
			if prevDue != nil && task.Due.Before(*prevDue) {
				rt.Fatalf("due dates decrease at %q", task.Title)
			}
			prevDue = task.Due
		}
	})
}
