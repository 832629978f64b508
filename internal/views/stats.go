package views

import (
	"math"
	"time"

	"github.com/yukikurage/taskpad/internal/models"
)

// Statistics summarizes the whole task list, ignoring the view configuration.
type Statistics struct {
	Total          int
	Completed      int
	Incomplete     int
	CompletionRate int // whole percent, 0 for an empty list
	ByCategory     map[models.Category]int
	ByPriority     map[models.Priority]int
	OverdueCount   int
	DueTodayCount  int
	UrgentCount    int
}

// Stats counts tasks at now. Overdue and due-today counts only include
// incomplete tasks.
func Stats(tasks []models.Task, now time.Time) Statistics {
	s := Statistics{
		Total:      len(tasks),
		ByCategory: make(map[models.Category]int),
		ByPriority: make(map[models.Priority]int),
	}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
		s.ByCategory[t.Category]++
		s.ByPriority[t.Priority]++
	}
	s.Incomplete = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}

	b := Bucket(tasks, now)
	s.OverdueCount = len(b.Overdue)
	s.DueTodayCount = len(b.DueToday)
	s.UrgentCount = b.UrgentCount()
	return s
}
