package views

import (
	"sync"

	"github.com/yukikurage/taskpad/internal/models"
)

// Selector memoizes Sorted on the task list version and view configuration,
// so repeated reads of an unchanged store skip recomputation.
type Selector struct {
	mu      sync.Mutex
	valid   bool
	version uint64
	cfg     models.ViewConfig
	result  []models.Task
}

// Sorted returns the filtered and sorted view. version must change whenever
// tasks changes.
func (s *Selector) Sorted(version uint64, tasks []models.Task, cfg models.ViewConfig) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid || s.version != version || s.cfg != cfg {
		s.result = Sorted(tasks, cfg)
		s.version = version
		s.cfg = cfg
		s.valid = true
	}
	return models.CloneTasks(s.result)
}
