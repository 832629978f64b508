package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/taskpad/internal/models"
)

var today = time.Date(2024, time.June, 10, 15, 30, 0, 0, time.Local)

func date(s string) *models.Date {
	d := models.MustParseDate(s)
	return &d
}

func sampleTasks() []models.Task {
	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	return []models.Task{
		{ID: "1", Title: "Buy milk", Description: "2 litres", Category: models.CategoryGroceries, Priority: models.PriorityLow, CreatedAt: base.Add(1 * time.Hour)},
		{ID: "2", Title: "write report", Description: "quarterly MILK numbers", Category: models.CategoryWork, Priority: models.PriorityHigh, DueDate: date("2024-06-09"), CreatedAt: base.Add(2 * time.Hour)},
		{ID: "3", Title: "Dentist", Category: models.CategoryHealth, Priority: models.PriorityMedium, DueDate: date("2024-06-10"), Completed: true, CreatedAt: base.Add(3 * time.Hour)},
		{ID: "4", Title: "apple pie", Category: models.CategoryPersonal, Priority: models.PriorityHigh, DueDate: date("2024-06-11"), CreatedAt: base.Add(4 * time.Hour)},
		{ID: "5", Title: "Call mom", Category: models.CategoryPersonal, Priority: models.PriorityMedium, DueDate: date("2024-06-17"), CreatedAt: base.Add(5 * time.Hour)},
	}
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestFilter_IsIdempotentAndNeverGrows(t *testing.T) {
	tasks := sampleTasks()
	configs := []models.ViewConfig{
		models.DefaultViewConfig(),
		{Filters: models.Filters{Status: models.StatusIncomplete, Category: models.CategoryAll, Priority: models.PriorityHigh}, SortBy: models.SortTitle},
		{Filters: models.Filters{Status: models.StatusCompleted, Category: models.CategoryHealth, Priority: models.PriorityAll}, SortBy: models.SortDueDate},
		{Filters: models.DefaultFilters(), SearchTerm: "milk", SortBy: models.SortPriority},
	}

	for _, cfg := range configs {
		once := Filter(tasks, cfg)
		assert.LessOrEqual(t, len(Sort(once, cfg.SortBy)), len(tasks))
		assert.Equal(t, once, Filter(once, cfg))
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	before := models.CloneTasks(tasks)

	cfg := models.ViewConfig{Filters: models.DefaultFilters(), SortBy: models.SortTitle}
	_ = Sorted(tasks, cfg)

	assert.Equal(t, before, tasks)
}

func TestFilter_SearchMatchesTitleOrDescriptionCaseInsensitive(t *testing.T) {
	cfg := models.ViewConfig{Filters: models.DefaultFilters(), SearchTerm: "  Milk ", SortBy: models.SortCreated}

	got := Filter(sampleTasks(), cfg)
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestFilter_ClausesCombine(t *testing.T) {
	cfg := models.ViewConfig{
		Filters: models.Filters{Status: models.StatusIncomplete, Category: models.CategoryPersonal, Priority: models.PriorityHigh},
		SortBy:  models.SortCreated,
	}
	assert.Equal(t, []string{"4"}, ids(Filter(sampleTasks(), cfg)))

	cfg.Filters.Status = models.StatusCompleted
	assert.Empty(t, Filter(sampleTasks(), cfg))
}

func TestSort_CompletedAlwaysLast(t *testing.T) {
	tasks := sampleTasks()
	tasks[0].Completed = true

	for _, by := range models.SortKeys {
		sorted := Sort(tasks, by)
		seenCompleted := false
		for _, task := range sorted {
			if task.Completed {
				seenCompleted = true
				continue
			}
			assert.False(t, seenCompleted, "incomplete task %s after a completed one for sort %s", task.ID, by)
		}
	}
}

func TestSort_ManualKeepsStoredOrder(t *testing.T) {
	tasks := sampleTasks()
	want := make([]string, 0, len(tasks))
	var done []string
	for _, task := range tasks {
		if task.Completed {
			done = append(done, task.ID)
			continue
		}
		want = append(want, task.ID)
	}
	assert.Equal(t, append(want, done...), ids(Sort(tasks, models.SortManual)))
}

func TestSort_Keys(t *testing.T) {
	tasks := sampleTasks()

	assert.Equal(t, []string{"5", "4", "2", "1", "3"}, ids(Sort(tasks, models.SortCreated)))
	assert.Equal(t, []string{"2", "4", "5", "1", "3"}, ids(Sort(tasks, models.SortPriority)))
	assert.Equal(t, []string{"2", "4", "5", "1", "3"}, ids(Sort(tasks, models.SortDueDate)))
	assert.Equal(t, []string{"4", "1", "5", "2", "3"}, ids(Sort(tasks, models.SortTitle)))
}

func TestSort_IsStableForTies(t *testing.T) {
	tasks := []models.Task{
		{ID: "a", Title: "x", Priority: models.PriorityLow},
		{ID: "b", Title: "y", Priority: models.PriorityLow},
		{ID: "c", Title: "z", Priority: models.PriorityLow},
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(Sort(tasks, models.SortPriority)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Sort(tasks, models.SortDueDate)))
}

func TestBucket(t *testing.T) {
	b := Bucket(sampleTasks(), today)

	assert.Equal(t, []string{"2"}, ids(b.Overdue))
	assert.Empty(t, b.DueToday, "completed task due today is excluded")
	assert.Equal(t, []string{"4"}, ids(b.DueTomorrow))
	assert.Equal(t, []string{"4", "5"}, ids(b.DueThisWeek))
	assert.Equal(t, 1, b.UrgentCount())
}

func TestBucket_CompletedTaskIsInNoBucket(t *testing.T) {
	task := models.Task{ID: "x", Title: "late", DueDate: date("2024-06-09")}

	b := Bucket([]models.Task{task}, today)
	require.Len(t, b.Overdue, 1)

	task.Completed = true
	b = Bucket([]models.Task{task}, today)
	assert.Empty(t, b.Overdue)
	assert.Empty(t, b.DueToday)
	assert.Empty(t, b.DueTomorrow)
	assert.Empty(t, b.DueThisWeek)
}

func TestBucket_IgnoresTimeOfDay(t *testing.T) {
	task := models.Task{ID: "x", Title: "today", DueDate: date("2024-06-10")}
	lateEvening := time.Date(2024, time.June, 10, 23, 59, 0, 0, time.Local)

	b := Bucket([]models.Task{task}, lateEvening)
	assert.Len(t, b.DueToday, 1)
	assert.Empty(t, b.Overdue)
}

func TestStats(t *testing.T) {
	s := Stats(sampleTasks(), today)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 4, s.Incomplete)
	assert.Equal(t, 20, s.CompletionRate)
	assert.Equal(t, 2, s.ByCategory[models.CategoryPersonal])
	assert.Equal(t, 2, s.ByPriority[models.PriorityHigh])
	assert.Equal(t, 1, s.OverdueCount)
	assert.Equal(t, 0, s.DueTodayCount)
}

func TestStats_EmptyListHasZeroRate(t *testing.T) {
	s := Stats(nil, today)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.CompletionRate)
}

func TestStats_RoundsRate(t *testing.T) {
	tasks := []models.Task{{ID: "1", Completed: true}, {ID: "2"}, {ID: "3"}}
	assert.Equal(t, 33, Stats(tasks, today).CompletionRate)

	tasks[1].Completed = true
	assert.Equal(t, 67, Stats(tasks, today).CompletionRate)
}

func TestDueLabel(t *testing.T) {
	cases := map[string]string{
		"2024-06-07": "Overdue by 3 days",
		"2024-06-09": "Overdue by 1 day",
		"2024-06-10": "Due Today",
		"2024-06-11": "Tomorrow",
		"2024-06-15": "In 5 days",
		"2024-07-01": "2024-07-01",
	}
	for due, want := range cases {
		assert.Equal(t, want, DueLabel(models.Task{DueDate: date(due)}, today), due)
	}
	assert.Empty(t, DueLabel(models.Task{}, today))
	assert.Empty(t, DueLabel(models.Task{DueDate: date("2024-06-01"), Completed: true}, today))
}

func TestHasActiveFilters(t *testing.T) {
	cfg := models.DefaultViewConfig()
	assert.False(t, HasActiveFilters(cfg))

	cfg.SortBy = models.SortTitle
	assert.False(t, HasActiveFilters(cfg), "sorting does not filter")

	cfg.SearchTerm = "milk"
	assert.True(t, HasActiveFilters(cfg))
}

func TestSelector_RecomputesOnlyOnChange(t *testing.T) {
	var sel Selector
	tasks := sampleTasks()
	cfg := models.DefaultViewConfig()

	first := sel.Sorted(1, tasks, cfg)
	assert.Equal(t, []string{"5", "4", "2", "1", "3"}, ids(first))

	// Same version and config: cached result even though the slice differs.
	assert.Equal(t, ids(first), ids(sel.Sorted(1, tasks[:1], cfg)))

	assert.Equal(t, []string{"1"}, ids(sel.Sorted(2, tasks[:1], cfg)))

	cfg.SearchTerm = "nothing matches"
	assert.Empty(t, sel.Sorted(2, tasks, cfg))
}
