// Package ui is the terminal front end. It is presentation glue only:
// every mutation goes through the task manager and the view re-renders
// from the manager's result set.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdarraugh/taskdeck/internal/config"
	"github.com/pdarraugh/taskdeck/internal/manager"
	"github.com/pdarraugh/taskdeck/internal/models"
	"github.com/pdarraugh/taskdeck/internal/ui/styles"
)

// TaskSelectedMsg is sent into the program when a delivered notification
// resolves to a task.
type TaskSelectedMsg struct {
	TaskID string
}

// resultsMsg carries a freshly recomputed result set.
type resultsMsg struct {
	tasks []models.Task
}

// errMsg carries a non-fatal error for the status bar.
type errMsg struct {
	err error
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeAdd
	modeConfirmDelete
)

// App is the root bubbletea model.
type App struct {
	mgr    manager.TaskManager
	keys   config.Keymap
	styles *styles.Styles

	tasks      []models.Task
	categories []models.Category
	tags       []models.Tag

	mode       mode
	cursor     int
	input      textinput.Model
	status     string
	statusWarn bool
	tagIdx     int // -1 = no tag filter
	catIdx     int // -1 = no category filter
	width      int
	height     int
}

// NewApp creates the root model over the given manager.
func NewApp(mgr manager.TaskManager, keys config.Keymap) *App {
	input := textinput.New()
	input.CharLimit = 120
	return &App{
		mgr:    mgr,
		keys:   keys,
		styles: styles.New(styles.TokyoNight),
		input:  input,
		tagIdx: -1,
		catIdx: -1,
	}
}

func (a *App) Init() tea.Cmd {
	return a.refresh
}

func (a *App) refresh() tea.Msg {
	ctx := context.Background()
	if err := a.mgr.Refresh(ctx); err != nil {
		return errMsg{err: err}
	}
	return resultsMsg{tasks: a.mgr.Results()}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case resultsMsg:
		a.tasks = msg.tasks
		a.cursor = clamp(a.cursor, 0, len(a.tasks)-1)
		a.reloadFilterSources()

	case errMsg:
		a.status = msg.err.Error()
		a.statusWarn = true

	case TaskSelectedMsg:
		for i, t := range a.tasks {
			if t.ID == msg.TaskID {
				a.cursor = i
				a.status = fmt.Sprintf("reminder: %s", t.Title)
				a.statusWarn = false
				break
			}
		}

	case tea.KeyMsg:
		switch a.mode {
		case modeSearch, modeAdd:
			return a.updateInput(msg)
		case modeConfirmDelete:
			return a.updateConfirmDelete(msg)
		default:
			return a.updateList(msg)
		}
	}
	return a, nil
}

func (a *App) reloadFilterSources() {
	ctx := context.Background()
	if categories, err := a.mgr.Categories(ctx); err == nil {
		a.categories = categories
	}
	if tags, err := a.mgr.Tags(ctx); err == nil {
		a.tags = tags
	}
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.status = ""
	switch msg.String() {
	case a.keys.Quit, "ctrl+c":
		return a, tea.Quit

	case a.keys.Up:
		a.cursor = clamp(a.cursor-1, 0, len(a.tasks)-1)

	case a.keys.Down:
		a.cursor = clamp(a.cursor+1, 0, len(a.tasks)-1)

	case a.keys.Add:
		a.mode = modeAdd
		a.input.Placeholder = "task title"
		a.input.SetValue("")
		a.input.Focus()

	case a.keys.Search:
		a.mode = modeSearch
		a.input.Placeholder = "search"
		a.input.SetValue(a.mgr.Filter().Search)
		a.input.Focus()

	case a.keys.Toggle:
		if task := a.current(); task != nil {
			return a, a.do(func(ctx context.Context) error {
				return a.mgr.ToggleCompletion(ctx, task)
			})
		}

	case a.keys.Delete:
		if a.current() != nil {
			a.mode = modeConfirmDelete
		}

	case a.keys.ToggleCompleted:
		show := !a.mgr.Filter().ShowCompleted
		return a, a.do(func(ctx context.Context) error {
			return a.mgr.SetShowCompleted(ctx, show)
		})

	case a.keys.CycleTag:
		a.tagIdx++
		if a.tagIdx >= len(a.tags) {
			a.tagIdx = -1
		}
		var selected []string
		if a.tagIdx >= 0 {
			selected = []string{a.tags[a.tagIdx].ID}
		}
		return a, a.do(func(ctx context.Context) error {
			return a.mgr.SelectTags(ctx, selected)
		})

	case a.keys.CycleCategory:
		a.catIdx++
		if a.catIdx >= len(a.categories) {
			a.catIdx = -1
		}
		var selected string
		if a.catIdx >= 0 {
			selected = a.categories[a.catIdx].ID
		}
		return a, a.do(func(ctx context.Context) error {
			return a.mgr.SelectCategory(ctx, selected)
		})
	}
	return a, nil
}

func (a *App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case a.keys.Cancel:
		prev := a.mode
		a.mode = modeList
		a.input.Blur()
		if prev == modeAdd {
			return a, a.do(func(ctx context.Context) error {
				return a.mgr.Discard(ctx)
			})
		}
		return a, nil

	case a.keys.Confirm:
		value := a.input.Value()
		prev := a.mode
		a.mode = modeList
		a.input.Blur()

		if prev == modeSearch {
			return a, a.do(func(ctx context.Context) error {
				return a.mgr.SetSearch(ctx, value)
			})
		}

		task := a.mgr.Create()
		task.Title = value
		return a, a.do(func(ctx context.Context) error {
			return a.mgr.Commit(ctx, task)
		})
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)

	// Live search narrows as the user types.
	if a.mode == modeSearch {
		value := a.input.Value()
		return a, tea.Batch(cmd, a.do(func(ctx context.Context) error {
			return a.mgr.SetSearch(ctx, value)
		}))
	}
	return a, cmd
}

func (a *App) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.mode = modeList
	if msg.String() != "y" && msg.String() != a.keys.Confirm {
		return a, nil
	}
	task := a.current()
	if task == nil {
		return a, nil
	}
	return a, a.do(func(ctx context.Context) error {
		return a.mgr.Delete(ctx, task)
	})
}

// do runs a manager operation and folds the outcome back into the view.
func (a *App) do(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := op(context.Background()); err != nil {
			return errMsg{err: err}
		}
		return resultsMsg{tasks: a.mgr.Results()}
	}
}

func (a *App) current() *models.Task {
	if a.cursor < 0 || a.cursor >= len(a.tasks) {
		return nil
	}
	return &a.tasks[a.cursor]
}

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("taskdeck"))
	b.WriteString("  ")
	b.WriteString(a.styles.StatusBar.Render(a.filterSummary()))
	b.WriteString("\n\n")

	if a.mode == modeSearch || a.mode == modeAdd {
		b.WriteString(a.input.View())
		b.WriteString("\n\n")
	}

	if len(a.tasks) == 0 {
		b.WriteString(a.styles.Help.Render("no tasks match"))
		b.WriteString("\n")
	}
	for i, task := range a.tasks {
		b.WriteString(a.renderTask(task, i == a.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if a.mode == modeConfirmDelete {
		b.WriteString(a.styles.StatusWarn.Render("delete task? (y/n)"))
	} else if a.status != "" {
		style := a.styles.StatusBar
		if a.statusWarn {
			style = a.styles.StatusWarn
		}
		b.WriteString(style.Render(a.status))
	} else {
		b.WriteString(a.styles.Help.Render(a.helpLine()))
	}
	b.WriteString("\n")

	return b.String()
}

func (a *App) filterSummary() string {
	f := a.mgr.Filter()
	var parts []string
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search:%q", f.Search))
	}
	if a.catIdx >= 0 && a.catIdx < len(a.categories) {
		parts = append(parts, "category:"+a.categories[a.catIdx].Name)
	}
	if a.tagIdx >= 0 && a.tagIdx < len(a.tags) {
		parts = append(parts, "tag:"+a.tags[a.tagIdx].Name)
	}
	if f.ShowCompleted {
		parts = append(parts, "completed")
	} else {
		parts = append(parts, "open")
	}
	return strings.Join(parts, " · ")
}

func (a *App) renderTask(task models.Task, selected bool) string {
	check := "[ ]"
	style := a.styles.Item
	if task.Done {
		check = "[x]"
		style = a.styles.ItemDone
	}

	line := fmt.Sprintf("%s %s", check, task.Title)
	if task.Due != nil {
		due := task.Due.Format("Jan 02 15:04")
		dueStyle := a.styles.StatusBar
		switch {
		case task.Due.Before(time.Now()):
			dueStyle = a.styles.Overdue
		case task.Due.Before(time.Now().Add(24 * time.Hour)):
			dueStyle = a.styles.DueSoon
		}
		line += "  " + dueStyle.Render(due)
	}
	for _, tag := range task.Tags {
		line += " " + a.styles.TagPill.Render("#"+tag.Name)
	}

	rendered := style.Render(line)
	if selected {
		rendered = a.styles.Selected.Render("> ") + rendered
	} else {
		rendered = "  " + rendered
	}
	return rendered
}

func (a *App) helpLine() string {
	return fmt.Sprintf("%s add · %s search · %s toggle · %s delete · %s tag · %s category · %s completed · %s quit",
		a.keys.Add, a.keys.Search, keyLabel(a.keys.Toggle), a.keys.Delete,
		a.keys.CycleTag, a.keys.CycleCategory, a.keys.ToggleCompleted, a.keys.Quit)
}

func keyLabel(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

func clamp(val, minVal, maxVal int) int {
	if maxVal < minVal {
		return minVal
	}
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
