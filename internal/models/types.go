package models

import (
	"encoding/json"
	"time"
)

// CreateTaskRequest is the body for POST /tasks.
type CreateTaskRequest struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CreateTaskResponse is returned after a successful create.
type CreateTaskResponse struct {
	ID int64 `json:"id"`
}

// ServiceCheck is the status of one dependency in a health response.
type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string       `json:"status"`
	DB        ServiceCheck `json:"db"`
	TaskCount int          `json:"taskCount"`
}

// MarshalJSON writes the date in ISO form.
func (t Task) MarshalJSON() ([]byte, error) {
	type alias Task
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias(t), FormatDate(t.Date)})
}

// MarshalJSON writes the date in ISO form.
func (r DisplayRow) MarshalJSON() ([]byte, error) {
	type alias DisplayRow
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias(r), FormatDate(r.Date)})
}

// UnmarshalJSON reads the ISO date form.
func (t *Task) UnmarshalJSON(data []byte) error {
	type alias Task
	var raw struct {
		alias
		Date string `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task(raw.alias)
	t.Date = time.Time{}
	if raw.Date != "" {
		d, err := ParseDate(raw.Date)
		if err != nil {
			return err
		}
		t.Date = d
	}
	return nil
}

// UnmarshalJSON reads the ISO date form.
func (r *DisplayRow) UnmarshalJSON(data []byte) error {
	type alias DisplayRow
	var raw struct {
		alias
		Date string `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = DisplayRow(raw.alias)
	r.Date = time.Time{}
	if raw.Date != "" {
		d, err := ParseDate(raw.Date)
		if err != nil {
			return err
		}
		r.Date = d
	}
	return nil
}
