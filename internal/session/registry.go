package session

import (
	"sort"
	"time"
)

// DetailView is the controller's record of an open per-task inspection
// view. The shell renders it; the controller owns its lifecycle.
type DetailView struct {
	TaskID   int64
	OpenedAt time.Time
}

// viewRegistry holds at most one DetailView per task id.
type viewRegistry struct {
	views map[int64]*DetailView
}

func newViewRegistry() *viewRegistry {
	return &viewRegistry{views: make(map[int64]*DetailView)}
}

func (r *viewRegistry) get(id int64) (*DetailView, bool) {
	v, ok := r.views[id]
	return v, ok
}

// open registers a view for id. It reports false when one already exists.
func (r *viewRegistry) open(id int64, now time.Time) bool {
	if _, ok := r.views[id]; ok {
		return false
	}
	r.views[id] = &DetailView{TaskID: id, OpenedAt: now}
	return true
}

// remove deregisters id and reports whether it was open.
func (r *viewRegistry) remove(id int64) bool {
	if _, ok := r.views[id]; !ok {
		return false
	}
	delete(r.views, id)
	return true
}

func (r *viewRegistry) ids() []int64 {
	ids := make([]int64, 0, len(r.views))
	for id := range r.views {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *viewRegistry) len() int { return len(r.views) }

func (r *viewRegistry) clear() {
	r.views = make(map[int64]*DetailView)
}
