// Package views derives the filtered, sorted and bucketed projections of a
// task list. Every function is pure: inputs are never modified.
package views

import (
	"strings"

	"github.com/yukikurage/taskpad/internal/models"
)

// Matches reports whether t passes the status, category, priority and search
// clauses of cfg, checked in that order.
func Matches(t models.Task, cfg models.ViewConfig) bool {
	switch cfg.Filters.Status {
	case models.StatusCompleted:
		if !t.Completed {
			return false
		}
	case models.StatusIncomplete:
		if t.Completed {
			return false
		}
	}

	if cfg.Filters.Category != models.CategoryAll && cfg.Filters.Category != "" && t.Category != cfg.Filters.Category {
		return false
	}

	if cfg.Filters.Priority != models.PriorityAll && cfg.Filters.Priority != "" && t.Priority != cfg.Filters.Priority {
		return false
	}

	search := strings.ToLower(strings.TrimSpace(cfg.SearchTerm))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), search) ||
		strings.Contains(strings.ToLower(t.Description), search)
}

// Filter returns the tasks matching cfg, in their original order.
func Filter(tasks []models.Task, cfg models.ViewConfig) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, cfg) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// HasActiveFilters reports whether any filter or the search term narrows the list.
func HasActiveFilters(cfg models.ViewConfig) bool {
	return cfg.Filters.Status != models.StatusAll ||
		cfg.Filters.Category != models.CategoryAll ||
		cfg.Filters.Priority != models.PriorityAll ||
		cfg.SearchTerm != ""
}

// FindTask returns the task with id.
func FindTask(tasks []models.Task, id string) (models.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return models.Task{}, false
}
