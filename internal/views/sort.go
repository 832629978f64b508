package views

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/yukikurage/taskpad/internal/models"
)

// Sort returns a stably sorted copy of tasks. Incomplete tasks always come
// before completed ones; within each group the order follows by.
func Sort(tasks []models.Task, by models.SortBy) []models.Task {
	out := models.CloneTasks(tasks)
	less := lessFunc(by)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return less(a, b)
	})
	return out
}

// Sorted filters then sorts tasks according to cfg.
func Sorted(tasks []models.Task, cfg models.ViewConfig) []models.Task {
	return Sort(Filter(tasks, cfg), cfg.SortBy)
}

func lessFunc(by models.SortBy) func(a, b models.Task) bool {
	switch by {
	case models.SortPriority:
		return func(a, b models.Task) bool {
			return priorityRank(a.Priority) < priorityRank(b.Priority)
		}
	case models.SortDueDate:
		return func(a, b models.Task) bool {
			switch {
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			default:
				return a.DueDate.Before(*b.DueDate)
			}
		}
	case models.SortTitle:
		// collate.Collator is not safe for concurrent use; one per sort.
		c := collate.New(language.English)
		return func(a, b models.Task) bool {
			return c.CompareString(a.Title, b.Title) < 0
		}
	case models.SortManual:
		return func(a, b models.Task) bool { return false }
	default:
		return func(a, b models.Task) bool {
			return a.CreatedAt.After(b.CreatedAt)
		}
	}
}

// priorityRank places unknown priorities after low.
func priorityRank(p models.Priority) int {
	if r := p.Rank(); r >= 0 {
		return r
	}
	return len(models.Priorities)
}
