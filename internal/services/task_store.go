package services

import (
	"errors"
	"strings"
	"sync"

	"github.com/yukikurage/taskpad/internal/models"
	"github.com/yukikurage/taskpad/internal/utils"
)

var (
	ErrNoActiveSession   = errors.New("no active session")
	ErrInvalidTitle      = errors.New("title cannot be empty")
	ErrNotPermutation    = errors.New("reordered list must contain exactly the current tasks")
	ErrInvalidViewOption = errors.New("invalid view option")
)

// ChangeEvent is emitted after every successful task store mutation and after
// a snapshot load.
type ChangeEvent struct {
	AccountID string
	Snapshot  models.Snapshot
	Version   uint64
	// Loaded marks the event of LoadSnapshot: the state came from storage.
	Loaded bool
}

// ChangeListener receives change events synchronously, after the store lock is released.
type ChangeListener interface {
	TaskStoreChanged(ChangeEvent)
}

// ChangeListenerFunc adapts a function to ChangeListener.
type ChangeListenerFunc func(ChangeEvent)

func (f ChangeListenerFunc) TaskStoreChanged(ev ChangeEvent) { f(ev) }

// StoreState is an immutable copy of the store contents.
type StoreState struct {
	AccountID string
	Active    bool
	Tasks     []models.Task
	View      models.ViewConfig
	// Version increases on every change, including loads and resets.
	Version uint64
}

// AddTaskInput represents input for adding a task
type AddTaskInput struct {
	Title       string
	Description string
	Category    models.Category
	Priority    models.Priority
	DueDate     *models.Date
}

// UpdateTaskInput is a shallow patch; nil fields are left untouched
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Category     *models.Category
	Priority     *models.Priority
	Completed    *bool
	DueDate      *models.Date
	ClearDueDate bool
}

// TaskStore owns the ordered task list and view configuration of the active account.
type TaskStore struct {
	clock utils.Clock
	newID func() (string, error)

	mu        sync.RWMutex
	accountID string
	active    bool
	tasks     []models.Task
	view      models.ViewConfig
	version   uint64

	listenersMu sync.Mutex
	listeners   map[int]ChangeListener
	nextID      int
}

// NewTaskStore creates an empty, inactive TaskStore
func NewTaskStore(clock utils.Clock) *TaskStore {
	return &TaskStore{
		clock:     clock,
		newID:     utils.NewTaskID,
		view:      models.DefaultViewConfig(),
		listeners: make(map[int]ChangeListener),
	}
}

// Subscribe registers l for change events and returns a function that removes it.
func (s *TaskStore) Subscribe(l ChangeListener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// State returns a copy of the current contents.
func (s *TaskStore) State() StoreState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		AccountID: s.accountID,
		Active:    s.active,
		Tasks:     models.CloneTasks(s.tasks),
		View:      s.view,
		Version:   s.version,
	}
}

// LoadSnapshot replaces tasks and view configuration wholesale and makes
// accountID the owner of the store. A nil snapshot loads defaults.
func (s *TaskStore) LoadSnapshot(accountID string, snapshot *models.Snapshot) {
	s.mu.Lock()
	s.accountID = accountID
	s.active = true
	if snapshot == nil {
		s.tasks = nil
		s.view = models.DefaultViewConfig()
	} else {
		s.tasks = models.CloneTasks(snapshot.Tasks)
		s.view = snapshot.View()
	}
	s.version++
	ev := ChangeEvent{
		AccountID: s.accountID,
		Snapshot:  models.NewSnapshot(s.tasks, s.view),
		Version:   s.version,
		Loaded:    true,
	}
	s.mu.Unlock()

	s.notify(ev)
}

// Reset drops the in-memory state and deactivates the store.
func (s *TaskStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountID = ""
	s.active = false
	s.tasks = nil
	s.view = models.DefaultViewConfig()
	s.version++
}

// AddTask inserts a new task at the head of the list
func (s *TaskStore) AddTask(input AddTaskInput) (models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Task{}, ErrInvalidTitle
	}
	if input.Category == "" {
		input.Category = models.CategoryPersonal
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Category.Valid() || !input.Priority.Valid() {
		return models.Task{}, ErrInvalidViewOption
	}

	id, err := s.newID()
	if err != nil {
		return models.Task{}, err
	}
	task := models.Task{
		ID:          id,
		Title:       title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatedAt:   s.clock.Now(),
	}
	task = task.Clone()

	err = s.mutate(func() bool {
		s.tasks = append([]models.Task{task}, s.tasks...)
		return true
	})
	if err != nil {
		return models.Task{}, err
	}
	return task.Clone(), nil
}

// RemoveTask deletes the task with id; an unknown id is a no-op
func (s *TaskStore) RemoveTask(id string) error {
	return s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		return true
	})
}

// ToggleTask flips the completion flag; an unknown id is a no-op
func (s *TaskStore) ToggleTask(id string) error {
	return s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		s.tasks[i].Completed = !s.tasks[i].Completed
		return true
	})
}

// UpdateTask merges the non-nil fields of input; an unknown id is a no-op
func (s *TaskStore) UpdateTask(id string, input UpdateTaskInput) error {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return ErrInvalidTitle
	}
	if input.Category != nil && !input.Category.Valid() {
		return ErrInvalidViewOption
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return ErrInvalidViewOption
	}

	return s.mutate(func() bool {
		i := s.indexOf(id)
		if i < 0 {
			return false
		}
		task := &s.tasks[i]
		if input.Title != nil {
			task.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Category != nil {
			task.Category = *input.Category
		}
		if input.Priority != nil {
			task.Priority = *input.Priority
		}
		if input.Completed != nil {
			task.Completed = *input.Completed
		}
		if input.ClearDueDate {
			task.DueDate = nil
		} else if input.DueDate != nil {
			d := *input.DueDate
			task.DueDate = &d
		}
		return true
	})
}

// ReorderTasks replaces the list with ordered, which must hold exactly the current task ids
func (s *TaskStore) ReorderTasks(ordered []models.Task) error {
	replacement := models.CloneTasks(ordered)
	var permErr error
	err := s.mutate(func() bool {
		if !samePermutation(s.tasks, replacement) {
			permErr = ErrNotPermutation
			return false
		}
		s.tasks = replacement
		return true
	})
	if err != nil {
		return err
	}
	return permErr
}

// ClearCompletedTasks removes every completed task
func (s *TaskStore) ClearCompletedTasks() error {
	return s.mutate(func() bool {
		kept := s.tasks[:0:0]
		for _, t := range s.tasks {
			if !t.Completed {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(s.tasks) {
			return false
		}
		s.tasks = kept
		return true
	})
}

func (s *TaskStore) SetStatusFilter(status models.StatusFilter) error {
	if !status.Valid() {
		return ErrInvalidViewOption
	}
	return s.mutate(func() bool {
		s.view.Filters.Status = status
		return true
	})
}

func (s *TaskStore) SetCategoryFilter(category models.Category) error {
	if category != models.CategoryAll && !category.Valid() {
		return ErrInvalidViewOption
	}
	return s.mutate(func() bool {
		s.view.Filters.Category = category
		return true
	})
}

func (s *TaskStore) SetPriorityFilter(priority models.Priority) error {
	if priority != models.PriorityAll && !priority.Valid() {
		return ErrInvalidViewOption
	}
	return s.mutate(func() bool {
		s.view.Filters.Priority = priority
		return true
	})
}

func (s *TaskStore) SetSortBy(sortBy models.SortBy) error {
	if !sortBy.Valid() {
		return ErrInvalidViewOption
	}
	return s.mutate(func() bool {
		s.view.SortBy = sortBy
		return true
	})
}

func (s *TaskStore) SetSearchTerm(term string) error {
	return s.mutate(func() bool {
		s.view.SearchTerm = term
		return true
	})
}

// ResetFilters restores every filter, the search term and the sort key to defaults
func (s *TaskStore) ResetFilters() error {
	return s.mutate(func() bool {
		s.view = models.DefaultViewConfig()
		return true
	})
}

// ClearFilters restores filters and the search term but keeps the sort key
func (s *TaskStore) ClearFilters() error {
	return s.mutate(func() bool {
		s.view.Filters = models.DefaultFilters()
		s.view.SearchTerm = ""
		return true
	})
}

// mutate runs fn under the write lock and notifies listeners when fn reports a change.
func (s *TaskStore) mutate(fn func() bool) error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	if !fn() {
		s.mu.Unlock()
		return nil
	}
	s.version++
	ev := ChangeEvent{
		AccountID: s.accountID,
		Snapshot:  models.NewSnapshot(s.tasks, s.view),
		Version:   s.version,
	}
	s.mu.Unlock()

	s.notify(ev)
	return nil
}

func (s *TaskStore) notify(ev ChangeEvent) {
	s.listenersMu.Lock()
	listeners := make([]ChangeListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l.TaskStoreChanged(ev)
	}
}

func (s *TaskStore) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func samePermutation(current, ordered []models.Task) bool {
	if len(current) != len(ordered) {
		return false
	}
	remaining := make(map[string]struct{}, len(current))
	for _, t := range current {
		remaining[t.ID] = struct{}{}
	}
	for _, t := range ordered {
		if _, ok := remaining[t.ID]; !ok {
			return false
		}
		delete(remaining, t.ID)
	}
	return true
}
