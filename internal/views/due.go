package views

import (
	"fmt"
	"time"

	"github.com/yukikurage/taskpad/internal/models"
)

// DueBuckets groups incomplete tasks by due date relative to today.
// A task can be in more than one bucket: today is also this week.
type DueBuckets struct {
	Overdue     []models.Task
	DueToday    []models.Task
	DueTomorrow []models.Task
	DueThisWeek []models.Task
}

// Bucket classifies tasks by calendar day in now's location. Completed tasks
// and tasks without a due date are in no bucket.
func Bucket(tasks []models.Task, now time.Time) DueBuckets {
	today := models.DateOf(now)
	tomorrow := today.AddDays(1)
	weekEnd := today.AddDays(7)

	var b DueBuckets
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		if due.Before(today) {
			b.Overdue = append(b.Overdue, t.Clone())
		}
		if due.Equal(today) {
			b.DueToday = append(b.DueToday, t.Clone())
		}
		if due.Equal(tomorrow) {
			b.DueTomorrow = append(b.DueTomorrow, t.Clone())
		}
		if !due.Before(today) && !due.After(weekEnd) {
			b.DueThisWeek = append(b.DueThisWeek, t.Clone())
		}
	}
	return b
}

// UrgentCount is the number of overdue tasks plus tasks due today.
func (b DueBuckets) UrgentCount() int {
	return len(b.Overdue) + len(b.DueToday)
}

// DueLabel is the short badge shown next to a task. It is empty for completed
// tasks and tasks without a due date.
func DueLabel(t models.Task, now time.Time) string {
	if t.Completed || t.DueDate == nil {
		return ""
	}
	today := models.DateOf(now)
	days := today.DaysUntil(*t.DueDate)
	switch {
	case days < 0:
		return fmt.Sprintf("Overdue by %d %s", -days, plural(-days, "day", "days"))
	case days == 0:
		return "Due Today"
	case days == 1:
		return "Tomorrow"
	case days <= 7:
		return fmt.Sprintf("In %d days", days)
	default:
		return t.DueDate.String()
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
