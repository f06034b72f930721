package models

import (
	"strings"
	"time"
)

// DateLayout is the on-disk and wire form of a task date.
const DateLayout = "2006-01-02"

// legacyDateLayout matches dates written by the earlier desktop build
// (e.g. "Mon Jan 1 2024").
const legacyDateLayout = "Mon Jan 2 2006"

// Task is the persisted to-do entity.
type Task struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// DisplayRow is the list-view projection of a Task.
type DisplayRow struct {
	ID    int64     `json:"id"`
	Date  time.Time `json:"-"`
	Title string    `json:"title"`
}

// Label renders the row the way the list shows it: "date - title".
func (r DisplayRow) Label() string {
	return FormatDate(r.Date) + " - " + r.Title
}

// Summary projects a task onto its list row.
func (t Task) Summary() DisplayRow {
	return DisplayRow{ID: t.ID, Date: t.Date, Title: t.Title}
}

// NewDate returns the calendar date at UTC midnight.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the time-of-day component of t, keeping its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// FormatDate returns the ISO form of d, or "" for the zero date.
func FormatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// ParseDate accepts the ISO form and the legacy desktop form.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	d, err := time.Parse(DateLayout, s)
	if err == nil {
		return d, nil
	}
	if legacy, lerr := time.Parse(legacyDateLayout, s); lerr == nil {
		return legacy, nil
	}
	return time.Time{}, err
}
