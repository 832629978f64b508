package models

import "time"

// Category is the fixed set of task categories.
type Category string

const (
	CategoryPersonal  Category = "personal"
	CategoryWork      Category = "work"
	CategoryGroceries Category = "groceries"
	CategoryHealth    Category = "health"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPersonal, CategoryWork, CategoryGroceries, CategoryHealth}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Priority is the task urgency level.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of Priorities.
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank orders priorities: high=0, medium=1, low=2. Unknown values rank -1.
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if p == v {
			return i
		}
	}
	return -1
}

// Task is a single to-do item. DueDate is nil when the task has no due date.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Priority    Priority  `json:"priority"`
	Completed   bool      `json:"completed"`
	DueDate     *Date     `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

// CloneTasks copies a task list.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
