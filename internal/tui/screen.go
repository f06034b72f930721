package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/iammorganparry/clive/apps/todo/internal/models"
	"github.com/iammorganparry/clive/apps/todo/internal/session"
)

// screen holds the mutable UI state and implements session.Presenter. The
// bubbletea Model is copied on every Update, so the state lives behind this
// pointer where the controller's callbacks can reach it.
type screen struct {
	snapshot session.Snapshot
	cursor   int

	dateInput  textinput.Model
	titleInput textinput.Model
	descInput  textarea.Model

	// open detail views in the order they were opened
	order   []int64
	details map[int64]models.Task
	focused int64 // 0 when no detail view is open
}

var _ session.Presenter = (*screen)(nil)

func newScreen(keys KeyMap) *screen {
	date := textinput.New()
	date.Placeholder = models.DateLayout
	date.Prompt = ""
	date.CharLimit = len(models.DateLayout)
	date.Width = len(models.DateLayout) + 1

	title := textinput.New()
	title.Placeholder = "What needs doing?"
	title.Prompt = "❯ "
	title.PromptStyle = InputPromptStyle
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description (alt+enter for a new line)"
	desc.ShowLineNumbers = false
	desc.SetHeight(4)
	desc.KeyMap.InsertNewline = keys.Newline

	return &screen{
		dateInput:  date,
		titleInput: title,
		descInput:  desc,
		details:    make(map[int64]models.Task),
	}
}

func (s *screen) RenderList(snap session.Snapshot) {
	s.snapshot = snap
	s.clampCursor()
}

func (s *screen) ResetInputFields(defaultDate time.Time) {
	s.dateInput.SetValue(models.FormatDate(defaultDate))
	s.titleInput.Reset()
	s.descInput.Reset()
}

func (s *screen) ShowDetailView(task models.Task) {
	if _, ok := s.details[task.ID]; !ok {
		s.order = append(s.order, task.ID)
	}
	s.details[task.ID] = task
	s.focused = task.ID
}

func (s *screen) FocusDetailView(id int64) {
	if _, ok := s.details[id]; ok {
		s.focused = id
	}
}

func (s *screen) CloseDetailView(id int64) {
	if _, ok := s.details[id]; !ok {
		return
	}
	delete(s.details, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.focused == id {
		s.focused = 0
		if n := len(s.order); n > 0 {
			s.focused = s.order[n-1]
		}
	}
}

// cycleDetail moves detail focus by delta through the open views.
func (s *screen) cycleDetail(delta int) {
	n := len(s.order)
	if n == 0 {
		return
	}
	idx := 0
	for i, id := range s.order {
		if id == s.focused {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%n + n) % n
	s.focused = s.order[idx]
}

func (s *screen) moveCursor(delta int) {
	s.cursor += delta
	s.clampCursor()
}

func (s *screen) clampCursor() {
	if s.cursor >= s.snapshot.Len() {
		s.cursor = s.snapshot.Len() - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// selection returns the cursor index, or -1 when the list is empty.
func (s *screen) selection() int {
	if s.snapshot.Len() == 0 {
		return -1
	}
	return s.cursor
}
