package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iammorganparry/clive/apps/todo/internal/models"
	"github.com/iammorganparry/clive/apps/todo/internal/session"
)

// Focus is the pane receiving key input
type Focus int

const (
	FocusDate  Focus = iota // Date field
	FocusTitle              // Title field
	FocusDesc               // Description field
	FocusList               // Task list
	focusCount
)

// Model is the root Bubble Tea model
type Model struct {
	width  int
	height int
	ready  bool

	ctrl   *session.Controller
	scr    *screen
	focus  Focus
	keys   KeyMap
	help   help.Model
	logger *slog.Logger

	status    string
	statusErr bool
	quitting  bool
}

// NewRootModel wires a controller to a fresh screen and loads the task list.
func NewRootModel(st session.TaskStore, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	keys := DefaultKeyMap()
	scr := newScreen(keys)
	ctrl := session.NewController(st, scr, logger)

	m := Model{
		ctrl:   ctrl,
		scr:    scr,
		keys:   keys,
		help:   help.New(),
		logger: logger,
	}
	if err := ctrl.Load(); err != nil {
		m.setError(err)
	}
	m.setFocus(FocusTitle)
	return m
}

// Controller exposes the session controller, mainly for tests.
func (m Model) Controller() *session.Controller {
	return m.ctrl
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("todo"), m.focusCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width

		formWidth := m.width/2 - 6
		if formWidth < 20 {
			formWidth = 20
		}
		m.scr.titleInput.Width = formWidth - 10
		m.scr.descInput.SetWidth(formWidth - 6)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if err := m.ctrl.Shutdown(); err != nil {
			m.logger.Error("shutdown", "error", err)
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextField):
		return m, m.setFocus((m.focus + 1) % focusCount)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)

	case key.Matches(msg, m.keys.CloseView):
		m.closeFocusedView()
		return m, nil
	}

	if m.focus == FocusList {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.scr.moveCursor(-1)
		case key.Matches(msg, m.keys.Down):
			m.scr.moveCursor(1)
		case key.Matches(msg, m.keys.Enter):
			m.report(m.ctrl.InspectTask(m.scr.snapshot, m.scr.selection()))
		case key.Matches(msg, m.keys.Remove):
			m.report(m.ctrl.RemoveTask(m.scr.snapshot, m.scr.selection()))
		case key.Matches(msg, m.keys.NextView):
			m.scr.cycleDetail(1)
		case key.Matches(msg, m.keys.PrevView):
			m.scr.cycleDetail(-1)
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Enter) {
		m.submit()
		return m, nil
	}

	return m, m.updateFocused(msg)
}

// submit sends the form to the controller. A blank title is a silent no-op.
func (m *Model) submit() {
	date := models.DateOf(time.Now())
	if raw := strings.TrimSpace(m.scr.dateInput.Value()); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			m.setStatus(fmt.Sprintf("invalid date %q, use %s", raw, models.DateLayout), true)
			return
		}
		date = d
	}

	err := m.ctrl.AddTask(date, m.scr.titleInput.Value(), m.scr.descInput.Value())
	if errors.Is(err, session.ErrEmptyTitle) {
		return
	}
	if err != nil {
		m.setError(err)
		return
	}
	m.setStatus("", false)
}

func (m *Model) closeFocusedView() {
	id := m.scr.focused
	if id == 0 {
		return
	}
	m.scr.CloseDetailView(id)
	m.ctrl.ViewClosed(id)
}

func (m *Model) report(err error) {
	if err != nil {
		m.setError(err)
		return
	}
	m.setStatus("", false)
}

func (m *Model) setError(err error) {
	m.logger.Warn("intent failed", "error", err)
	m.setStatus(err.Error(), true)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) setFocus(f Focus) tea.Cmd {
	m.focus = f
	m.scr.dateInput.Blur()
	m.scr.titleInput.Blur()
	m.scr.descInput.Blur()
	return m.focusCmd()
}

func (m *Model) focusCmd() tea.Cmd {
	switch m.focus {
	case FocusDate:
		return m.scr.dateInput.Focus()
	case FocusTitle:
		return m.scr.titleInput.Focus()
	case FocusDesc:
		return m.scr.descInput.Focus()
	}
	return nil
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case FocusDate:
		m.scr.dateInput, cmd = m.scr.dateInput.Update(msg)
	case FocusTitle:
		m.scr.titleInput, cmd = m.scr.titleInput.Update(msg)
	case FocusDesc:
		m.scr.descInput, cmd = m.scr.descInput.Update(msg)
	}
	return cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	header := HeaderStyle.Render("TODO") + "  " +
		DimStyle.Render(fmt.Sprintf("%d tasks", m.scr.snapshot.Len()))

	bodyHeight := m.height - 4
	if bodyHeight < 8 {
		bodyHeight = 8
	}
	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth

	list := m.renderList(leftWidth-2, bodyHeight-2)
	form := m.renderForm(rightWidth - 2)
	detailHeight := bodyHeight - lipgloss.Height(form) - 2
	detail := m.renderDetail(rightWidth-2, detailHeight)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		list,
		lipgloss.JoinVertical(lipgloss.Left, form, detail),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.renderStatusBar(),
	)
}

func (m Model) pane(focused bool) lipgloss.Style {
	if focused {
		return PaneFocusedStyle
	}
	return PaneStyle
}

func (m Model) renderList(width, height int) string {
	var b strings.Builder
	b.WriteString(PaneTitleStyle.Render("Tasks"))
	b.WriteString("\n")

	rows := m.scr.snapshot.Rows()
	if len(rows) == 0 {
		b.WriteString(DimStyle.Render("Nothing to do."))
	}

	// keep the cursor visible when the list is taller than the pane
	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.scr.cursor >= visible {
		start = m.scr.cursor - visible + 1
	}

	for i := start; i < len(rows) && i < start+visible; i++ {
		r := rows[i]
		marker := "  "
		if m.ctrl.IsOpen(r.ID) {
			marker = RowOpenMarkerStyle.Render("● ")
		}
		label := truncate(r.Label(), width-6)
		if i == m.scr.cursor && m.focus == FocusList {
			b.WriteString(marker + RowSelectedStyle.Render("▸ "+label))
		} else {
			b.WriteString(marker + RowStyle.Render("  "+label))
		}
		b.WriteString("\n")
	}

	return m.pane(m.focus == FocusList).
		Width(width).
		Height(height).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderForm(width int) string {
	lines := []string{
		PaneTitleStyle.Render("New task"),
		LabelStyle.Render("Date") + m.scr.dateInput.View(),
		LabelStyle.Render("Title") + m.scr.titleInput.View(),
		m.scr.descInput.View(),
	}
	focused := m.focus != FocusList
	return m.pane(focused).Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderDetail(width, height int) string {
	if height < 3 {
		height = 3
	}
	if len(m.scr.order) == 0 {
		return PaneStyle.Width(width).Height(height).
			Render(DimStyle.Render("Select a task and press enter to see its details."))
	}

	var tabs []string
	for _, id := range m.scr.order {
		t := m.scr.details[id]
		label := truncate(fmt.Sprintf("#%d %s", id, t.Title), 18)
		if id == m.scr.focused {
			tabs = append(tabs, TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}

	task := m.scr.details[m.scr.focused]
	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		DetailKeyStyle.Render("Title: ")+task.Title,
		DetailKeyStyle.Render("Date:  ")+models.FormatDate(task.Date),
		"",
		lipgloss.NewStyle().Width(width-4).Render(task.Description),
	)

	return PaneStyle.Width(width).Height(height).Render(content)
}

func (m Model) renderStatusBar() string {
	if m.status != "" {
		style := DimStyle
		if m.statusErr {
			style = ErrorStyle
		}
		return StatusBarStyle.Render(style.Render(m.status))
	}
	return StatusBarStyle.Render(m.help.View(m.keys))
}

func truncate(s string, max int) string {
	if max < 4 {
		max = 4
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
