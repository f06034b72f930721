// Package session mediates between a presentation shell and the task store.
// It keeps the displayed projection fresh and enforces at most one open
// detail view per task.
package session

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iammorganparry/clive/apps/todo/internal/models"
	"github.com/iammorganparry/clive/apps/todo/internal/store"
)

var (
	// ErrEmptyTitle is returned by AddTask when the title is blank. Shells
	// normally treat it as a silent no-op.
	ErrEmptyTitle = errors.New("task title is empty")
	// ErrShutdown is returned by intents received after Shutdown.
	ErrShutdown = errors.New("session is shut down")
	// ErrStorage hides the underlying storage failure, which is logged.
	ErrStorage = errors.New("task storage unavailable")
)

// TaskStore is the persistence the controller needs. *store.TaskStore
// satisfies it.
type TaskStore interface {
	Create(date time.Time, title, description string) (int64, error)
	ListSummaries() ([]models.DisplayRow, error)
	GetDetail(id int64) (models.Task, error)
	Delete(id int64) (bool, error)
	Close() error
}

// Presenter receives render instructions from the controller. All calls are
// made synchronously on the caller's goroutine.
type Presenter interface {
	RenderList(snap Snapshot)
	ResetInputFields(defaultDate time.Time)
	ShowDetailView(task models.Task)
	FocusDetailView(id int64)
	CloseDetailView(id int64)
}

// Controller owns the row projection and the detail view registry. It is
// not safe for concurrent use; every intent must come from one goroutine.
type Controller struct {
	store     TaskStore
	presenter Presenter
	logger    *slog.Logger
	now       func() time.Time

	snapshot Snapshot
	views    *viewRegistry
	shutdown bool
}

func NewController(st TaskStore, presenter Presenter, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:     st,
		presenter: presenter,
		logger:    logger,
		now:       time.Now,
		views:     newViewRegistry(),
	}
}

// Load fetches the initial projection and primes the input fields.
func (c *Controller) Load() error {
	if c.shutdown {
		return ErrShutdown
	}
	err := c.refresh()
	c.presenter.ResetInputFields(c.today())
	return err
}

// AddTask creates a task, re-renders the list and resets the inputs.
func (c *Controller) AddTask(date time.Time, title, description string) error {
	if c.shutdown {
		return ErrShutdown
	}
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}

	id, err := c.store.Create(date, title, description)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			return ErrEmptyTitle
		}
		return c.normalize("add", err)
	}
	c.logger.Debug("task added", "id", id)

	err = c.refresh()
	c.presenter.ResetInputFields(c.today())
	return err
}

// RemoveTask deletes the row at index in snap, closing its detail view
// first when one is open. An out-of-bounds index is a no-op.
func (c *Controller) RemoveTask(snap Snapshot, index int) error {
	if c.shutdown {
		return ErrShutdown
	}
	row, ok := snap.Row(index)
	if !ok {
		return nil
	}
	c.noteStale("remove", snap)

	if c.views.remove(row.ID) {
		c.presenter.CloseDetailView(row.ID)
	}

	removed, err := c.store.Delete(row.ID)
	if err != nil {
		return c.normalize("remove", err)
	}
	if !removed {
		c.logger.Debug("task already gone", "id", row.ID)
	}

	return c.refresh()
}

// InspectTask opens the detail view for the row at index in snap, or brings
// the existing one to the front. A vanished row is a silent no-op.
func (c *Controller) InspectTask(snap Snapshot, index int) error {
	if c.shutdown {
		return ErrShutdown
	}
	row, ok := snap.Row(index)
	if !ok {
		return nil
	}
	c.noteStale("inspect", snap)

	task, err := c.store.GetDetail(row.ID)
	if errors.Is(err, store.ErrNotFound) {
		c.logger.Debug("inspected task vanished", "id", row.ID)
		return nil
	}
	if err != nil {
		return c.normalize("inspect", err)
	}

	if c.views.open(task.ID, c.now()) {
		c.presenter.ShowDetailView(task)
		return nil
	}
	c.presenter.FocusDetailView(task.ID)
	return nil
}

// ViewClosed deregisters the detail view for id. It is idempotent and is
// accepted after Shutdown.
func (c *Controller) ViewClosed(id int64) {
	if c.views.remove(id) {
		c.logger.Debug("detail view closed", "id", id)
	}
}

// Shutdown closes the store. Views still open are abandoned.
func (c *Controller) Shutdown() error {
	if c.shutdown {
		return ErrShutdown
	}
	c.shutdown = true

	if n := c.views.len(); n > 0 {
		c.logger.Debug("abandoning open detail views", "count", n)
		c.views.clear()
	}

	if err := c.store.Close(); err != nil {
		c.logger.Error("close task store", "error", err)
		return ErrStorage
	}
	return nil
}

// Snapshot returns the most recently fetched projection.
func (c *Controller) Snapshot() Snapshot {
	return c.snapshot
}

// OpenViews returns the ids with an open detail view, ascending.
func (c *Controller) OpenViews() []int64 {
	return c.views.ids()
}

// IsOpen reports whether a detail view for id is registered.
func (c *Controller) IsOpen(id int64) bool {
	_, ok := c.views.get(id)
	return ok
}

func (c *Controller) refresh() error {
	rows, err := c.store.ListSummaries()
	if err != nil {
		return c.normalize("refresh", err)
	}
	c.snapshot = newSnapshot(c.snapshot.generation+1, rows)
	c.presenter.RenderList(c.snapshot)
	return nil
}

func (c *Controller) today() time.Time {
	return models.DateOf(c.now())
}

func (c *Controller) noteStale(op string, snap Snapshot) {
	if snap.generation != c.snapshot.generation {
		c.logger.Debug("intent resolved against stale snapshot",
			"op", op,
			"snapshot_generation", snap.generation,
			"current_generation", c.snapshot.generation,
		)
	}
}

func (c *Controller) normalize(op string, err error) error {
	if errors.Is(err, store.ErrStoreClosed) {
		c.logger.Error("task store used after close", "op", op)
		return ErrShutdown
	}
	c.logger.Error("task store failure", "op", op, "error", err)
	return ErrStorage
}
