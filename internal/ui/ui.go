// Package ui is the terminal front-end: a Bubble Tea program over the same
// App the HTTP server uses.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yukikurage/taskpad/internal/app"
	"github.com/yukikurage/taskpad/internal/config"
	"github.com/yukikurage/taskpad/internal/models"
	"github.com/yukikurage/taskpad/internal/services"
	"github.com/yukikurage/taskpad/internal/views"
)

type mode int

const (
	modeAuth mode = iota
	modeList
	modeAdd
	modeSearch
	modeMetadata
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	urgentStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
	bannerStyle   = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208"))
)

type metaState struct {
	taskID      string
	title       string
	description string
	category    string
	priority    string
	due         string
	index       int
}

type Model struct {
	app      *app.App
	keys     config.Keymap
	selector *views.Selector
	notifier *ChannelNotifier

	mode       mode
	cursor     int
	input      textinput.Model
	auth       *authForm
	meta       *metaState
	confirmDel bool
	pendingDel *models.Task
	prevSearch string
	status     string
	banner     string
}

// NewModel starts in the task list when a session was restored and in the
// login form otherwise.
func NewModel(a *app.App, notifier *ChannelNotifier) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		app:      a,
		keys:     a.Config.Keys,
		selector: &views.Selector{},
		notifier: notifier,
		input:    ti,
		auth:     newAuthForm(),
		mode:     modeAuth,
	}
	if account := a.Session.Current(); account != nil {
		m.mode = modeList
		m.status = fmt.Sprintf("Welcome back, %s", account.Username)
	}
	return m
}

func Run(ctx context.Context, a *app.App, notifier *ChannelNotifier) error {
	program := tea.NewProgram(NewModel(a, notifier), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return m.notifier.wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notificationMsg:
		m.banner = fmt.Sprintf("%s: %s", msg.Title, msg.Body)
		return m, m.notifier.wait()
	case tea.KeyMsg:
		switch {
		case m.mode == modeAuth:
			return m.updateAuthMode(msg)
		case m.meta != nil:
			return m.updateMetadataMode(msg.String(), msg)
		case m.confirmDel:
			return m.updateDeleteConfirm(msg.String())
		case m.mode == modeAdd:
			return m.updateAddMode(msg.String(), msg)
		case m.mode == modeSearch:
			return m.updateSearchMode(msg.String(), msg)
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		if msg.Width > 20 {
			m.input.Width = msg.Width - 10
		}
	}
	return m, nil
}

// visible is the filtered and sorted task list of the active account.
func (m Model) visible() []models.Task {
	st := m.app.Store.State()
	if !st.Active {
		return nil
	}
	return m.selector.Sorted(st.Version, st.Tasks, st.View)
}

func (m Model) selected() (models.Task, bool) {
	tasks := m.visible()
	if len(tasks) == 0 {
		return models.Task{}, false
	}
	return tasks[clampCursor(m.cursor, len(tasks))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	store := m.app.Store
	switch key {
	case "ctrl+c", m.keys.Quit:
		return m, tea.Quit
	case m.keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.visible()))
	case m.keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.visible()))
	case m.keys.Add:
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = "Task title"
		m.status = "Add mode: type a title and press Enter"
		return m, m.input.Focus()
	case m.keys.Toggle:
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := store.ToggleTask(task.ID); err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.cursor = clampCursor(m.cursor, len(m.visible()))
		m.status = "Toggled task"
	case m.keys.Delete:
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = &task
		m.status = fmt.Sprintf("Delete %q? y/n", task.Title)
	case m.keys.Edit:
		task, ok := m.selected()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startMetadataEdit(task)
	case m.keys.MoveUp:
		return m.move(-1)
	case m.keys.MoveDown:
		return m.move(1)
	case m.keys.Search:
		m.mode = modeSearch
		m.prevSearch = store.State().View.SearchTerm
		m.input.SetValue(m.prevSearch)
		m.input.Placeholder = "Search title or description"
		m.status = "Search: type to filter, Enter to keep, Esc to cancel"
		return m, m.input.Focus()
	case m.keys.StatusFilter:
		next := cycle(models.StatusFilters, store.State().View.Filters.Status)
		m.applyView(store.SetStatusFilter(next), "Status: "+string(next))
	case m.keys.CategoryFilter:
		options := append([]models.Category{models.CategoryAll}, models.Categories...)
		next := cycle(options, store.State().View.Filters.Category)
		m.applyView(store.SetCategoryFilter(next), "Category: "+string(next))
	case m.keys.PriorityFilter:
		options := append([]models.Priority{models.PriorityAll}, models.Priorities...)
		next := cycle(options, store.State().View.Filters.Priority)
		m.applyView(store.SetPriorityFilter(next), "Priority: "+string(next))
	case m.keys.Sort:
		next := cycle(models.SortKeys, store.State().View.SortBy)
		m.applyView(store.SetSortBy(next), "Sort: "+string(next))
	case m.keys.ResetFilters:
		m.applyView(store.ClearFilters(), "Filters cleared")
	case m.keys.ClearCompleted:
		if err := store.ClearCompletedTasks(); err != nil {
			m.status = fmt.Sprintf("clear failed: %v", err)
			return m, nil
		}
		m.cursor = clampCursor(m.cursor, len(m.visible()))
		m.status = "Cleared completed tasks"
	case m.keys.Logout:
		m.app.Session.Clear(context.Background())
		m.mode = modeAuth
		m.cursor = 0
		m.banner = ""
		m.status = "Logged out"
		m.auth.reset()
	}
	return m, nil
}

func (m *Model) applyView(err error, status string) {
	if err != nil {
		m.status = fmt.Sprintf("view update failed: %v", err)
		return
	}
	m.cursor = 0
	m.status = status
}

// move swaps the selected task with its visible neighbour in the stored
// order. Only the manual sort shows stored order, so other sorts refuse.
func (m Model) move(delta int) (tea.Model, tea.Cmd) {
	st := m.app.Store.State()
	if st.View.SortBy != models.SortManual {
		m.status = fmt.Sprintf("Switch sort to %s to reorder", models.SortManual)
		return m, nil
	}
	tasks := m.visible()
	if len(tasks) == 0 {
		return m, nil
	}
	cur := clampCursor(m.cursor, len(tasks))
	target := cur + delta
	if target < 0 || target >= len(tasks) || tasks[cur].Completed != tasks[target].Completed {
		return m, nil
	}

	ordered := st.Tasks
	i := indexOf(ordered, tasks[cur].ID)
	j := indexOf(ordered, tasks[target].ID)
	if i < 0 || j < 0 {
		return m, nil
	}
	ordered[i], ordered[j] = ordered[j], ordered[i]
	if err := m.app.Store.ReorderTasks(ordered); err != nil {
		m.status = fmt.Sprintf("reorder failed: %v", err)
		return m, nil
	}
	m.cursor = target
	m.status = "Moved task"
	return m, nil
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.keys.Cancel, "esc":
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.keys.Confirm, "enter":
		_, err := m.app.Store.AddTask(services.AddTaskInput{Title: m.input.Value()})
		if errors.Is(err, services.ErrInvalidTitle) {
			m.status = "Title cannot be empty"
			return m, nil
		}
		if err != nil {
			m.status = fmt.Sprintf("add failed: %v", err)
			return m, nil
		}
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		m.cursor = 0
		m.status = "Added task"
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.keys.Cancel, "esc":
		_ = m.app.Store.SetSearchTerm(m.prevSearch)
		m.mode = modeList
		m.input.Blur()
		m.status = "Search cancelled"
		return m, nil
	case m.keys.Confirm, "enter":
		m.mode = modeList
		m.input.Blur()
		m.status = fmt.Sprintf("%d matching tasks", len(m.visible()))
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if err := m.app.Store.SetSearchTerm(m.input.Value()); err != nil {
			m.status = fmt.Sprintf("search failed: %v", err)
		}
		m.cursor = 0
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			break
		}
		if err := m.app.Store.RemoveTask(m.pendingDel.ID); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
			break
		}
		m.cursor = clampCursor(m.cursor, len(m.visible()))
		m.status = "Deleted task"
	default:
		return m, nil
	}
	m.confirmDel = false
	m.pendingDel = nil
	return m, nil
}

func metaFields() []string {
	return []string{"title", "description", "category", "priority", "due date (YYYY-MM-DD)"}
}

func (ms metaState) currentLabel() string {
	return metaFields()[ms.index]
}

func (ms metaState) values() []string {
	return []string{ms.title, ms.description, ms.category, ms.priority, ms.due}
}

func (ms metaState) currentValue() string {
	return ms.values()[ms.index]
}

func (ms *metaState) setCurrentValue(v string) {
	switch ms.index {
	case 0:
		ms.title = v
	case 1:
		ms.description = v
	case 2:
		ms.category = v
	case 3:
		ms.priority = v
	case 4:
		ms.due = v
	}
}

func (m Model) startMetadataEdit(t models.Task) (tea.Model, tea.Cmd) {
	due := ""
	if t.DueDate != nil {
		due = t.DueDate.String()
	}
	m.meta = &metaState{
		taskID:      t.ID,
		title:       t.Title,
		description: t.Description,
		category:    string(t.Category),
		priority:    string(t.Priority),
		due:         due,
	}
	m.input.SetValue(m.meta.currentValue())
	m.input.Placeholder = m.meta.currentLabel()
	m.mode = modeMetadata
	m.status = m.metaPrompt()
	return m, m.input.Focus()
}

func (m Model) updateMetadataMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.keys.Cancel, "esc":
		m.meta = nil
		m.mode = modeList
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "down":
		m.stepMeta(1)
		return m, nil
	case "shift+tab", "up":
		m.stepMeta(-1)
		return m, nil
	case m.keys.Confirm, "enter":
		m.meta.setCurrentValue(m.input.Value())
		if m.meta.index >= len(metaFields())-1 {
			return m.saveMetadata()
		}
		m.stepMeta(1)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) stepMeta(delta int) {
	m.meta.setCurrentValue(m.input.Value())
	m.meta.index = wrapIndex(m.meta.index+delta, len(metaFields()))
	m.input.SetValue(m.meta.currentValue())
	m.input.Placeholder = m.meta.currentLabel()
	m.status = m.metaPrompt()
}

func (m Model) saveMetadata() (tea.Model, tea.Cmd) {
	patch, err := m.meta.patch()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	taskID := m.meta.taskID
	if err := m.app.Store.UpdateTask(taskID, patch); err != nil {
		if errors.Is(err, services.ErrInvalidTitle) {
			m.status = "Title cannot be empty"
		} else {
			m.status = fmt.Sprintf("save failed: %v", err)
		}
		return m, nil
	}

	m.meta = nil
	m.mode = modeList
	m.input.Blur()
	if i := indexOf(m.visible(), taskID); i >= 0 {
		m.cursor = i
	}
	m.status = "Task saved"
	return m, nil
}

// patch converts the edited fields into a store update. An empty due date
// removes it.
func (ms metaState) patch() (services.UpdateTaskInput, error) {
	title := ms.title
	description := ms.description
	category := models.Category(strings.ToLower(strings.TrimSpace(ms.category)))
	priority := models.Priority(strings.ToLower(strings.TrimSpace(ms.priority)))
	if !category.Valid() {
		return services.UpdateTaskInput{}, fmt.Errorf("category invalid: %q", ms.category)
	}
	if !priority.Valid() {
		return services.UpdateTaskInput{}, fmt.Errorf("priority invalid: %q", ms.priority)
	}

	patch := services.UpdateTaskInput{
		Title:       &title,
		Description: &description,
		Category:    &category,
		Priority:    &priority,
	}
	due := strings.TrimSpace(ms.due)
	if due == "" {
		patch.ClearDueDate = true
		return patch, nil
	}
	d, err := models.ParseDate(due)
	if err != nil {
		return services.UpdateTaskInput{}, fmt.Errorf("due date invalid: %v", err)
	}
	patch.DueDate = &d
	return patch, nil
}

func (m Model) metaPrompt() string {
	if m.meta == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		m.meta.currentLabel(), m.meta.index+1, len(metaFields()))
}

func (m Model) View() string {
	if m.mode == modeAuth {
		return m.renderAuth()
	}

	var b strings.Builder
	header := "Tasks"
	if account := m.app.Session.Current(); account != nil {
		header = fmt.Sprintf("Tasks for %s", account.Username)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")

	st := m.app.Store.State()
	now := m.app.Clock.Now()
	if urgent := views.Bucket(st.Tasks, now); urgent.UrgentCount() > 0 {
		b.WriteString(urgentStyle.Render(fmt.Sprintf("! %d overdue, %d due today", len(urgent.Overdue), len(urgent.DueToday))))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(renderViewLine(st.View)))
	b.WriteString("\n\n")

	tasks := m.visible()
	switch {
	case len(st.Tasks) == 0:
		b.WriteString(fmt.Sprintf("No tasks yet. Press '%s' to add one.\n", m.keys.Add))
	case len(tasks) == 0:
		b.WriteString("No tasks match the current filters.\n")
	default:
		b.WriteString(m.renderTaskList(tasks))
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("Showing %d of %d", len(tasks), len(st.Tasks))))
	b.WriteString("\n---\n")

	switch {
	case m.meta != nil:
		b.WriteString(m.renderMetaBox())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case m.mode == modeAdd, m.mode == modeSearch:
		b.WriteString(m.input.View())
	default:
		if task, ok := m.selected(); ok {
			b.WriteString(renderDetail(task))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	if m.banner != "" {
		b.WriteString(bannerStyle.Render(m.banner))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(renderHelp(m.keys)))
	return b.String()
}

func (m Model) renderTaskList(tasks []models.Task) string {
	now := m.app.Clock.Now()
	cur := clampCursor(m.cursor, len(tasks))

	var b strings.Builder
	for i, t := range tasks {
		cursor := " "
		if i == cur && m.mode == modeList {
			cursor = ">"
		}
		checkbox := "[ ]"
		title := t.Title
		if t.Completed {
			checkbox = "[x]"
			title = doneStyle.Render(title)
		} else if i == cur {
			title = selectedStyle.Render(title)
		}

		line := fmt.Sprintf("%s %s %s  %s/%s", cursor, checkbox, title, t.Category, t.Priority)
		if label := views.DueLabel(t, now); label != "" {
			if t.DueDate.Before(models.DateOf(now)) {
				label = overdueStyle.Render(label)
			}
			line += "  " + label
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func renderViewLine(v models.ViewConfig) string {
	line := fmt.Sprintf("status:%s  category:%s  priority:%s  sort:%s",
		v.Filters.Status, v.Filters.Category, v.Filters.Priority, v.SortBy)
	if v.SearchTerm != "" {
		line += fmt.Sprintf("  search:%q", v.SearchTerm)
	}
	return line
}

func renderDetail(t models.Task) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title       : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Description : %s\n", emptyPlaceholder(t.Description)))
	b.WriteString(fmt.Sprintf("Category    : %s\n", t.Category))
	b.WriteString(fmt.Sprintf("Priority    : %s\n", t.Priority))
	due := "(none)"
	if t.DueDate != nil {
		due = t.DueDate.String()
	}
	b.WriteString(fmt.Sprintf("Due         : %s\n", due))
	b.WriteString(fmt.Sprintf("Created     : %s", t.CreatedAt.Format("2006-01-02 15:04")))
	return b.String()
}

func (m Model) renderMetaBox() string {
	var b strings.Builder
	for i, name := range metaFields() {
		prefix := " "
		if i == m.meta.index {
			prefix = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-22s : %s\n", prefix, name, emptyPlaceholder(m.meta.values()[i])))
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s delete • %s edit • %s/%s reorder • %s search • %s/%s/%s filter • %s sort • %s reset • %s clear done • %s logout • %s quit",
		k.Up, k.Down, k.Add, keyName(k.Toggle), k.Delete, k.Edit, k.MoveUp, k.MoveDown, k.Search,
		k.StatusFilter, k.CategoryFilter, k.PriorityFilter, k.Sort, k.ResetFilters, k.ClearCompleted, k.Logout, k.Quit)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

// cycle returns the option after current, wrapping around. An unknown
// current value yields the first option.
func cycle[T comparable](options []T, current T) T {
	for i, o := range options {
		if o == current {
			return options[wrapIndex(i+1, len(options))]
		}
	}
	return options[0]
}

func indexOf(tasks []models.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
