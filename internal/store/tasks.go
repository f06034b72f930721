package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iammorganparry/clive/apps/todo/internal/models"
)

var (
	// ErrValidation is returned by Create when the title is empty.
	ErrValidation = errors.New("task title must not be empty")
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrStoreClosed is returned by every call made after Close.
	ErrStoreClosed = errors.New("task store is closed")
)

// dateColumn reads todos.date as text. The column is declared DATE, which the
// driver would otherwise coerce to time.Time, zeroing legacy-format values.
const dateColumn = `CAST(date AS TEXT)`

// TaskStore handles CRUD over the todos table. Every mutation is a single
// auto-committed statement.
type TaskStore struct {
	db     *DB
	logger *slog.Logger
	closed bool
}

func NewTaskStore(db *DB, logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{db: db, logger: logger}
}

// Create inserts a task and returns its generated id.
func (s *TaskStore) Create(date time.Time, title, description string) (int64, error) {
	if s.closed {
		return 0, ErrStoreClosed
	}
	if strings.TrimSpace(title) == "" {
		return 0, ErrValidation
	}

	res, err := s.db.Exec(
		`INSERT INTO todos (date, title, description) VALUES (?, ?, ?)`,
		models.FormatDate(models.DateOf(date)), title, description,
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert task id: %w", err)
	}
	return id, nil
}

// ListSummaries returns (id, date, title) for every task in id order.
func (s *TaskStore) ListSummaries() ([]models.DisplayRow, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`SELECT id, ` + dateColumn + `, title FROM todos ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []models.DisplayRow
	for rows.Next() {
		var (
			r    models.DisplayRow
			date sql.NullString
			ttl  sql.NullString
		)
		if err := rows.Scan(&r.ID, &date, &ttl); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		r.Date = s.parseDate(r.ID, date)
		r.Title = ttl.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetDetail returns the full task, or ErrNotFound.
func (s *TaskStore) GetDetail(id int64) (models.Task, error) {
	if s.closed {
		return models.Task{}, ErrStoreClosed
	}

	var (
		t                 models.Task
		date, ttl, detail sql.NullString
	)
	err := s.db.QueryRow(
		`SELECT id, `+dateColumn+`, title, description FROM todos WHERE id = ?`, id,
	).Scan(&t.ID, &date, &ttl, &detail)
	if err == sql.ErrNoRows {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	t.Date = s.parseDate(t.ID, date)
	t.Title = ttl.String
	t.Description = detail.String
	return t, nil
}

// Delete removes the task with id. Deleting a missing id is not an error;
// the returned bool reports whether a row was removed.
func (s *TaskStore) Delete(id int64) (bool, error) {
	if s.closed {
		return false, ErrStoreClosed
	}

	res, err := s.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task rows: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of stored tasks.
func (s *TaskStore) Count() (int, error) {
	if s.closed {
		return 0, ErrStoreClosed
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM todos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// Close releases the connection. It must be called once; later calls
// return ErrStoreClosed.
func (s *TaskStore) Close() error {
	if s.closed {
		return ErrStoreClosed
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func (s *TaskStore) parseDate(id int64, raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	d, err := models.ParseDate(raw.String)
	if err != nil {
		s.logger.Warn("unparseable task date", "id", id, "date", raw.String)
		return time.Time{}
	}
	return d
}
