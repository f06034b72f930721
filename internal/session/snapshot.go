package session

import "github.com/iammorganparry/clive/apps/todo/internal/models"

// Snapshot is an immutable projection of the task list as it was last
// fetched. Index-based intents carry the snapshot the shell rendered so that
// a selection index is always resolved against the rows the user saw.
type Snapshot struct {
	generation uint64
	rows       []models.DisplayRow
}

func newSnapshot(generation uint64, rows []models.DisplayRow) Snapshot {
	cp := make([]models.DisplayRow, len(rows))
	copy(cp, rows)
	return Snapshot{generation: generation, rows: cp}
}

// Generation increases by one on every refresh. The zero Snapshot has
// generation 0 and no rows.
func (s Snapshot) Generation() uint64 { return s.generation }

func (s Snapshot) Len() int { return len(s.rows) }

// Row returns the row at index, or false when index is out of bounds
// (including the -1 "no selection" sentinel).
func (s Snapshot) Row(index int) (models.DisplayRow, bool) {
	if index < 0 || index >= len(s.rows) {
		return models.DisplayRow{}, false
	}
	return s.rows[index], true
}

// Rows returns a copy of the rows.
func (s Snapshot) Rows() []models.DisplayRow {
	cp := make([]models.DisplayRow, len(s.rows))
	copy(cp, s.rows)
	return cp
}

// IndexOf returns the position of the row with id, or -1.
func (s Snapshot) IndexOf(id int64) int {
	for i, r := range s.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}
