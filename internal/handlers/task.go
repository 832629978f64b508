package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/taskpad/internal/constants"
	"github.com/yukikurage/taskpad/internal/dto"
	apierrors "github.com/yukikurage/taskpad/internal/errors"
	"github.com/yukikurage/taskpad/internal/middleware"
	"github.com/yukikurage/taskpad/internal/models"
	"github.com/yukikurage/taskpad/internal/services"
	"github.com/yukikurage/taskpad/internal/utils"
	"github.com/yukikurage/taskpad/internal/views"
)

type TaskHandler struct {
	store    *services.TaskStore
	clock    utils.Clock
	selector views.Selector
}

func NewTaskHandler(store *services.TaskStore, clock utils.Clock) *TaskHandler {
	return &TaskHandler{
		store: store,
		clock: clock,
	}
}

// activeState returns the store contents when they belong to the session's
// account. A logout or account switch between the session check and this read
// answers 401.
func (h *TaskHandler) activeState(c *gin.Context) (services.StoreState, bool) {
	accountID, ok := middleware.GetAccountID(c)
	state := h.store.State()
	if !ok || !state.Active || state.AccountID != accountID {
		apierrors.Unauthorized(c, apierrors.ErrCodeNoActiveSession, "Session changed, please log in again")
		return services.StoreState{}, false
	}
	return state, true
}

// ListTasks returns the filtered and sorted task list of the active account
func (h *TaskHandler) ListTasks(c *gin.Context) {
	state, ok := h.activeState(c)
	if !ok {
		return
	}
	visible := h.selector.Sorted(state.Version, state.Tasks, state.View)

	c.JSON(http.StatusOK, dto.ToTaskListResponse(visible, len(state.Tasks), state.View, h.clock.Now()))
}

// GetTask returns a specific task by ID
// Task is already resolved by RequireTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, h.clock.Now()))
}

// CreateTask adds a task at the head of the list
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Title       string          `json:"title" binding:"required"`
		Description string          `json:"description"`
		Category    models.Category `json:"category"`
		Priority    models.Priority `json:"priority"`
		DueDate     *models.Date    `json:"dueDate"`
	}

	if _, ok := h.activeState(c); !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "", describeBindError(err))
		return
	}

	task, err := h.store.AddTask(services.AddTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		DueDate:     dueDateOrNil(req.DueDate),
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(task, h.clock.Now()))
}

// UpdateTask merges the given fields into a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Title        *string          `json:"title"`
		Description  *string          `json:"description"`
		Category     *models.Category `json:"category"`
		Priority     *models.Priority `json:"priority"`
		Completed    *bool            `json:"completed"`
		DueDate      *models.Date     `json:"dueDate"`
		ClearDueDate bool             `json:"clearDueDate"`
	}

	task, ok := taskFromContext(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "", "Invalid request body")
		return
	}

	// "dueDate": "" removes the due date
	if req.DueDate != nil && req.DueDate.IsZero() {
		req.DueDate = nil
		req.ClearDueDate = true
	}

	err := h.store.UpdateTask(task.ID, services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Priority:     req.Priority,
		Completed:    req.Completed,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	h.respondWithTask(c, task.ID)
}

// ToggleTask flips the completion flag of a task
func (h *TaskHandler) ToggleTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	if err := h.store.ToggleTask(task.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	h.respondWithTask(c, task.ID)
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	if err := h.store.RemoveTask(task.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// ReorderTasks replaces the task order with the given id sequence
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	type ReorderRequest struct {
		IDs []string `json:"ids" binding:"required"`
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "", "Invalid request body")
		return
	}

	state, ok := h.activeState(c)
	if !ok {
		return
	}
	current := state.Tasks
	ordered := make([]models.Task, 0, len(req.IDs))
	for _, id := range req.IDs {
		task, ok := views.FindTask(current, id)
		if !ok {
			respondTaskError(c, services.ErrNotPermutation)
			return
		}
		ordered = append(ordered, task)
	}

	if err := h.store.ReorderTasks(ordered); err != nil {
		respondTaskError(c, err)
		return
	}

	h.ListTasks(c)
}

// ClearCompleted removes every completed task
func (h *TaskHandler) ClearCompleted(c *gin.Context) {
	if err := h.store.ClearCompletedTasks(); err != nil {
		respondTaskError(c, err)
		return
	}

	h.ListTasks(c)
}

// GetView returns the current view configuration
func (h *TaskHandler) GetView(c *gin.Context) {
	state, ok := h.activeState(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToViewDTO(state.View))
}

// UpdateView applies the given filter, search and sort settings
func (h *TaskHandler) UpdateView(c *gin.Context) {
	type UpdateViewRequest struct {
		Status     *models.StatusFilter `json:"status"`
		Category   *models.Category     `json:"category"`
		Priority   *models.Priority     `json:"priority"`
		SortBy     *models.SortBy       `json:"sortBy"`
		SearchTerm *string              `json:"searchTerm"`
	}

	var req UpdateViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "", "Invalid request body")
		return
	}

	// Validate everything before applying anything.
	invalid := gin.H{}
	if req.Status != nil && !req.Status.Valid() {
		invalid["status"] = *req.Status
	}
	if req.Category != nil && *req.Category != models.CategoryAll && !req.Category.Valid() {
		invalid["category"] = *req.Category
	}
	if req.Priority != nil && *req.Priority != models.PriorityAll && !req.Priority.Valid() {
		invalid["priority"] = *req.Priority
	}
	if req.SortBy != nil && !req.SortBy.Valid() {
		invalid["sortBy"] = *req.SortBy
	}
	if len(invalid) > 0 {
		apierrors.BadRequestWithDetails(c, apierrors.ErrCodeInvalidViewOption, services.ErrInvalidViewOption.Error(), invalid)
		return
	}

	var steps []func() error
	if req.Status != nil {
		steps = append(steps, func() error { return h.store.SetStatusFilter(*req.Status) })
	}
	if req.Category != nil {
		steps = append(steps, func() error { return h.store.SetCategoryFilter(*req.Category) })
	}
	if req.Priority != nil {
		steps = append(steps, func() error { return h.store.SetPriorityFilter(*req.Priority) })
	}
	if req.SortBy != nil {
		steps = append(steps, func() error { return h.store.SetSortBy(*req.SortBy) })
	}
	if req.SearchTerm != nil {
		steps = append(steps, func() error { return h.store.SetSearchTerm(*req.SearchTerm) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			respondTaskError(c, err)
			return
		}
	}

	h.GetView(c)
}

// ResetView restores default filters, search and sort
func (h *TaskHandler) ResetView(c *gin.Context) {
	if err := h.store.ResetFilters(); err != nil {
		respondTaskError(c, err)
		return
	}
	h.GetView(c)
}

// ClearFilters restores default filters and search but keeps the sort key
func (h *TaskHandler) ClearFilters(c *gin.Context) {
	if err := h.store.ClearFilters(); err != nil {
		respondTaskError(c, err)
		return
	}
	h.GetView(c)
}

// GetStats returns statistics over the whole task list
func (h *TaskHandler) GetStats(c *gin.Context) {
	state, ok := h.activeState(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToStatsDTO(views.Stats(state.Tasks, h.clock.Now())))
}

// GetAlerts returns incomplete tasks grouped by due date
func (h *TaskHandler) GetAlerts(c *gin.Context) {
	state, ok := h.activeState(c)
	if !ok {
		return
	}
	now := h.clock.Now()
	c.JSON(http.StatusOK, dto.ToAlertsDTO(views.Bucket(state.Tasks, now), now))
}

func (h *TaskHandler) respondWithTask(c *gin.Context, id string) {
	task, ok := views.FindTask(h.store.State().Tasks, id)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(task, h.clock.Now()))
}

func dueDateOrNil(d *models.Date) *models.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}

func taskFromContext(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := value.(models.Task)
	return task, ok
}
