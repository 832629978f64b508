package models

// StatusFilter narrows the list by completion state.
type StatusFilter string

const (
	StatusAll        StatusFilter = "all"
	StatusCompleted  StatusFilter = "completed"
	StatusIncomplete StatusFilter = "incomplete"
)

// StatusFilters lists every status filter.
var StatusFilters = []StatusFilter{StatusAll, StatusCompleted, StatusIncomplete}

// Valid reports whether s is a known status filter.
func (s StatusFilter) Valid() bool {
	return s == StatusAll || s == StatusCompleted || s == StatusIncomplete
}

// CategoryAll and PriorityAll disable the corresponding filter.
const (
	CategoryAll Category = "all"
	PriorityAll Priority = "all"
)

// SortBy selects the order of the visible list.
type SortBy string

const (
	SortCreated  SortBy = "created"
	SortPriority SortBy = "priority"
	SortDueDate  SortBy = "dueDate"
	SortTitle    SortBy = "title"
	// SortManual keeps the stored list order, the one ReorderTasks sets.
	SortManual SortBy = "manual"
)

// SortKeys lists every sort key in the order the terminal UI cycles them.
var SortKeys = []SortBy{SortCreated, SortPriority, SortDueDate, SortTitle, SortManual}

// Valid reports whether s is one of SortKeys.
func (s SortBy) Valid() bool {
	for _, v := range SortKeys {
		if s == v {
			return true
		}
	}
	return false
}

// Filters holds the status, category and priority filters. "all" disables one.
type Filters struct {
	Status   StatusFilter `json:"status"`
	Category Category     `json:"category"`
	Priority Priority     `json:"priority"`
}

// DefaultFilters disables every filter.
func DefaultFilters() Filters {
	return Filters{Status: StatusAll, Category: CategoryAll, Priority: PriorityAll}
}

// ViewConfig is the per-account view state: filters, search term and sort key.
type ViewConfig struct {
	Filters    Filters
	SearchTerm string
	SortBy     SortBy
}

// DefaultViewConfig shows every task, newest first.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{Filters: DefaultFilters(), SortBy: SortCreated}
}

// Snapshot is the per-account document written to durable storage.
type Snapshot struct {
	Tasks      []Task  `json:"tasks"`
	Filters    Filters `json:"filters"`
	SearchTerm string  `json:"searchTerm"`
	SortBy     SortBy  `json:"sortBy"`
}

// NewSnapshot bundles tasks and view configuration for persistence.
func NewSnapshot(tasks []Task, view ViewConfig) Snapshot {
	return Snapshot{
		Tasks:      CloneTasks(tasks),
		Filters:    view.Filters,
		SearchTerm: view.SearchTerm,
		SortBy:     view.SortBy,
	}
}

// View returns the snapshot's view configuration, filling defaults for
// fields an older or partial document left empty.
func (s Snapshot) View() ViewConfig {
	v := DefaultViewConfig()
	if s.Filters.Status.Valid() {
		v.Filters.Status = s.Filters.Status
	}
	if s.Filters.Category == CategoryAll || s.Filters.Category.Valid() {
		v.Filters.Category = s.Filters.Category
	}
	if s.Filters.Priority == PriorityAll || s.Filters.Priority.Valid() {
		v.Filters.Priority = s.Filters.Priority
	}
	v.SearchTerm = s.SearchTerm
	if s.SortBy.Valid() {
		v.SortBy = s.SortBy
	}
	return v
}
