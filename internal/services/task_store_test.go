package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/taskpad/internal/models"
	"github.com/yukikurage/taskpad/internal/utils"
)

var testNow = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.Local)

type recordingListener struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (l *recordingListener) TaskStoreChanged(ev ChangeEvent) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *recordingListener) Events() []ChangeEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ChangeEvent(nil), l.events...)
}

func newActiveStore(t *testing.T) (*TaskStore, *utils.FixedClock) {
	t.Helper()
	clock := utils.NewFixedClock(testNow)
	store := NewTaskStore(clock)
	store.LoadSnapshot("acc-1", nil)
	return store, clock
}

func addTask(t *testing.T, store *TaskStore, title string) models.Task {
	t.Helper()
	task, err := store.AddTask(AddTaskInput{Title: title})
	require.NoError(t, err)
	return task
}

func taskIDs(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}

func TestTaskStore_RequiresActiveSession(t *testing.T) {
	store := NewTaskStore(utils.NewFixedClock(testNow))

	_, err := store.AddTask(AddTaskInput{Title: "Buy milk"})
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.ErrorIs(t, store.ToggleTask("x"), ErrNoActiveSession)
	assert.ErrorIs(t, store.SetSearchTerm("milk"), ErrNoActiveSession)
}

func TestTaskStore_AddTask(t *testing.T) {
	store, _ := newActiveStore(t)

	_, err := store.AddTask(AddTaskInput{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidTitle)
	assert.Empty(t, store.State().Tasks)

	first := addTask(t, store, "Walk dog")
	task := addTask(t, store, "  Buy milk ")

	state := store.State()
	require.Len(t, state.Tasks, 2)
	assert.Equal(t, task.ID, state.Tasks[0].ID, "new tasks go to the head")
	assert.Equal(t, first.ID, state.Tasks[1].ID)

	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, models.CategoryPersonal, task.Category)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.False(t, task.Completed)
	assert.Nil(t, task.DueDate)
	assert.True(t, task.CreatedAt.Equal(testNow))
	assert.NotEqual(t, first.ID, task.ID)
}

func TestTaskStore_AddTaskRejectsUnknownCategory(t *testing.T) {
	store, _ := newActiveStore(t)

	_, err := store.AddTask(AddTaskInput{Title: "x", Category: "errands"})
	assert.ErrorIs(t, err, ErrInvalidViewOption)
}

func TestTaskStore_ToggleAndRemove(t *testing.T) {
	store, _ := newActiveStore(t)
	task := addTask(t, store, "Dentist")

	require.NoError(t, store.ToggleTask(task.ID))
	assert.True(t, store.State().Tasks[0].Completed)

	require.NoError(t, store.ToggleTask(task.ID))
	assert.False(t, store.State().Tasks[0].Completed)

	version := store.State().Version
	require.NoError(t, store.RemoveTask("missing"))
	require.NoError(t, store.ToggleTask("missing"))
	assert.Equal(t, version, store.State().Version, "unknown ids change nothing")

	require.NoError(t, store.RemoveTask(task.ID))
	assert.Empty(t, store.State().Tasks)
}

func TestTaskStore_UpdateTask(t *testing.T) {
	store, _ := newActiveStore(t)
	task := addTask(t, store, "Report")

	title := "Quarterly report"
	priority := models.PriorityHigh
	due := models.MustParseDate("2024-06-12")
	require.NoError(t, store.UpdateTask(task.ID, UpdateTaskInput{Title: &title, Priority: &priority, DueDate: &due}))

	got := store.State().Tasks[0]
	assert.Equal(t, "Quarterly report", got.Title)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, models.CategoryPersonal, got.Category, "unset fields are kept")
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2024-06-12", got.DueDate.String())

	require.NoError(t, store.UpdateTask(task.ID, UpdateTaskInput{ClearDueDate: true}))
	assert.Nil(t, store.State().Tasks[0].DueDate)

	empty := " "
	assert.ErrorIs(t, store.UpdateTask(task.ID, UpdateTaskInput{Title: &empty}), ErrInvalidTitle)
	assert.Equal(t, "Quarterly report", store.State().Tasks[0].Title)
}

func TestTaskStore_ReorderTasks(t *testing.T) {
	store, _ := newActiveStore(t)
	a := addTask(t, store, "a")
	b := addTask(t, store, "b")
	c := addTask(t, store, "c")

	require.NoError(t, store.ReorderTasks([]models.Task{a, c, b}))
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, taskIDs(store.State().Tasks))

	assert.ErrorIs(t, store.ReorderTasks([]models.Task{a, b}), ErrNotPermutation)
	assert.ErrorIs(t, store.ReorderTasks([]models.Task{a, a, b}), ErrNotPermutation)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, taskIDs(store.State().Tasks))
}

func TestTaskStore_ClearCompletedTasks(t *testing.T) {
	store, _ := newActiveStore(t)
	keep := addTask(t, store, "keep")
	done := addTask(t, store, "done")
	require.NoError(t, store.ToggleTask(done.ID))

	require.NoError(t, store.ClearCompletedTasks())

	tasks := store.State().Tasks
	assert.Equal(t, []string{keep.ID}, taskIDs(tasks))
	for _, task := range tasks {
		assert.False(t, task.Completed)
	}
}

func TestTaskStore_ViewSetters(t *testing.T) {
	store, _ := newActiveStore(t)
	task := addTask(t, store, "Buy milk")

	require.NoError(t, store.SetStatusFilter(models.StatusCompleted))
	require.NoError(t, store.SetCategoryFilter(models.CategoryWork))
	require.NoError(t, store.SetPriorityFilter(models.PriorityHigh))
	require.NoError(t, store.SetSortBy(models.SortTitle))
	require.NoError(t, store.SetSearchTerm("milk"))

	assert.ErrorIs(t, store.SetStatusFilter("done"), ErrInvalidViewOption)
	assert.ErrorIs(t, store.SetCategoryFilter("errands"), ErrInvalidViewOption)
	assert.ErrorIs(t, store.SetPriorityFilter("urgent"), ErrInvalidViewOption)
	assert.ErrorIs(t, store.SetSortBy("random"), ErrInvalidViewOption)

	view := store.State().View
	assert.Equal(t, models.StatusCompleted, view.Filters.Status)
	assert.Equal(t, models.CategoryWork, view.Filters.Category)
	assert.Equal(t, models.PriorityHigh, view.Filters.Priority)
	assert.Equal(t, models.SortTitle, view.SortBy)
	assert.Equal(t, "milk", view.SearchTerm)

	require.NoError(t, store.ClearFilters())
	view = store.State().View
	assert.Equal(t, models.DefaultFilters(), view.Filters)
	assert.Empty(t, view.SearchTerm)
	assert.Equal(t, models.SortTitle, view.SortBy, "clear keeps the sort key")

	require.NoError(t, store.ResetFilters())
	assert.Equal(t, models.DefaultViewConfig(), store.State().View)
	assert.Equal(t, []string{task.ID}, taskIDs(store.State().Tasks), "view changes never touch tasks")
}

func TestTaskStore_LoadSnapshotRoundTrip(t *testing.T) {
	store, _ := newActiveStore(t)
	addTask(t, store, "one")
	addTask(t, store, "two")
	require.NoError(t, store.SetSortBy(models.SortPriority))

	state := store.State()
	snapshot := models.NewSnapshot(state.Tasks, state.View)

	other := NewTaskStore(utils.NewFixedClock(testNow))
	other.LoadSnapshot("acc-1", &snapshot)

	assert.Equal(t, state.Tasks, other.State().Tasks)
	assert.Equal(t, state.View, other.State().View)
}

func TestTaskStore_LoadNilSnapshotUsesDefaults(t *testing.T) {
	store, _ := newActiveStore(t)
	addTask(t, store, "one")
	require.NoError(t, store.SetSearchTerm("x"))

	store.LoadSnapshot("acc-2", nil)

	state := store.State()
	assert.Equal(t, "acc-2", state.AccountID)
	assert.True(t, state.Active)
	assert.Empty(t, state.Tasks)
	assert.Equal(t, models.DefaultViewConfig(), state.View)
}

func TestTaskStore_ResetDeactivates(t *testing.T) {
	store, _ := newActiveStore(t)
	addTask(t, store, "one")

	store.Reset()

	state := store.State()
	assert.False(t, state.Active)
	assert.Empty(t, state.AccountID)
	assert.Empty(t, state.Tasks)
}

func TestTaskStore_StateIsACopy(t *testing.T) {
	store, _ := newActiveStore(t)
	addTask(t, store, "one")

	state := store.State()
	state.Tasks[0].Title = "changed"

	assert.Equal(t, "one", store.State().Tasks[0].Title)
}

func TestTaskStore_SubscribeReceivesEvents(t *testing.T) {
	store, _ := newActiveStore(t)
	listener := &recordingListener{}
	unsubscribe := store.Subscribe(listener)

	task := addTask(t, store, "one")
	require.NoError(t, store.ToggleTask(task.ID))
	require.NoError(t, store.RemoveTask("missing"))

	events := listener.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "acc-1", events[1].AccountID)
	assert.True(t, events[1].Snapshot.Tasks[0].Completed)
	assert.Greater(t, events[1].Version, events[0].Version)
	assert.False(t, events[0].Loaded)

	store.LoadSnapshot("acc-2", nil)
	events = listener.Events()
	require.Len(t, events, 3)
	assert.True(t, events[2].Loaded)

	unsubscribe()
	addTask(t, store, "two")
	assert.Len(t, listener.Events(), 3)
}
