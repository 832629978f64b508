package dto

import (
	"time"

	"github.com/yukikurage/taskpad/internal/models"
	"github.com/yukikurage/taskpad/internal/views"
)

// AccountDTO represents an account in API responses
type AccountDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    models.Category `json:"category"`
	Priority    models.Priority `json:"priority"`
	Completed   bool            `json:"completed"`
	DueDate     *models.Date    `json:"dueDate"`
	DueLabel    string          `json:"dueLabel,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ViewDTO represents the view configuration in API responses
type ViewDTO struct {
	Filters          models.Filters `json:"filters"`
	SearchTerm       string         `json:"searchTerm"`
	SortBy           models.SortBy  `json:"sortBy"`
	HasActiveFilters bool           `json:"hasActiveFilters"`
}

// TaskListResponse is the filtered and sorted task list plus the view that produced it
type TaskListResponse struct {
	Tasks         []TaskDTO `json:"tasks"`
	View          ViewDTO   `json:"view"`
	FilteredCount int       `json:"filteredCount"`
	TotalCount    int       `json:"totalCount"`
}

// StatsDTO represents task statistics in API responses
type StatsDTO struct {
	Total          int                     `json:"total"`
	Completed      int                     `json:"completed"`
	Incomplete     int                     `json:"incomplete"`
	CompletionRate int                     `json:"completionRate"`
	ByCategory     map[models.Category]int `json:"byCategory"`
	ByPriority     map[models.Priority]int `json:"byPriority"`
	OverdueCount   int                     `json:"overdueCount"`
	DueTodayCount  int                     `json:"dueTodayCount"`
	UrgentCount    int                     `json:"urgentCount"`
}

// AlertsDTO groups incomplete tasks by due date
type AlertsDTO struct {
	Overdue     []TaskDTO `json:"overdue"`
	DueToday    []TaskDTO `json:"dueToday"`
	DueTomorrow []TaskDTO `json:"dueTomorrow"`
	DueThisWeek []TaskDTO `json:"dueThisWeek"`
	UrgentCount int       `json:"urgentCount"`
}

// Conversion functions

// ToAccountDTO converts an Account model to AccountDTO
func ToAccountDTO(account models.Account) AccountDTO {
	return AccountDTO{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO. now drives the due label.
func ToTaskDTO(task models.Task, now time.Time) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		Priority:    task.Priority,
		Completed:   task.Completed,
		DueDate:     task.DueDate,
		DueLabel:    views.DueLabel(task, now),
		CreatedAt:   task.CreatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks, never returning nil
func ToTaskDTOs(tasks []models.Task, now time.Time) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, now)
	}
	return items
}

// ToViewDTO converts a ViewConfig to ViewDTO
func ToViewDTO(view models.ViewConfig) ViewDTO {
	return ViewDTO{
		Filters:          view.Filters,
		SearchTerm:       view.SearchTerm,
		SortBy:           view.SortBy,
		HasActiveFilters: views.HasActiveFilters(view),
	}
}

// ToTaskListResponse builds the list response from the derived view
func ToTaskListResponse(visible []models.Task, total int, view models.ViewConfig, now time.Time) TaskListResponse {
	return TaskListResponse{
		Tasks:         ToTaskDTOs(visible, now),
		View:          ToViewDTO(view),
		FilteredCount: len(visible),
		TotalCount:    total,
	}
}

// ToStatsDTO converts Statistics to StatsDTO
func ToStatsDTO(s views.Statistics) StatsDTO {
	return StatsDTO{
		Total:          s.Total,
		Completed:      s.Completed,
		Incomplete:     s.Incomplete,
		CompletionRate: s.CompletionRate,
		ByCategory:     s.ByCategory,
		ByPriority:     s.ByPriority,
		OverdueCount:   s.OverdueCount,
		DueTodayCount:  s.DueTodayCount,
		UrgentCount:    s.UrgentCount,
	}
}

// ToAlertsDTO converts due buckets to AlertsDTO
func ToAlertsDTO(b views.DueBuckets, now time.Time) AlertsDTO {
	return AlertsDTO{
		Overdue:     ToTaskDTOs(b.Overdue, now),
		DueToday:    ToTaskDTOs(b.DueToday, now),
		DueTomorrow: ToTaskDTOs(b.DueTomorrow, now),
		DueThisWeek: ToTaskDTOs(b.DueThisWeek, now),
		UrgentCount: b.UrgentCount(),
	}
}
