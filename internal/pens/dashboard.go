package pens

import (
	"sync"

	"github.com/nshafer/penlive"
)

// Dashboard is the view model of the pens overview: a REST snapshot that every live
// payload replaces wholesale, plus which pens have their abnormal list expanded.
type Dashboard struct {
	mu       sync.Mutex
	data     PensData
	live     penlive.State
	liveErr  string
	expanded map[string]bool
}

// DashboardView is a copy of what the dashboard shows
type DashboardView struct {
	Data PensData
	// LiveState and LiveErr describe the live feed; a non-empty LiveErr is shown as a warning
	LiveState penlive.State
	LiveErr   string
}

func NewDashboard() *Dashboard {
	return &Dashboard{
		data:     PensData{Piggeies: []Piggery{}},
		expanded: make(map[string]bool),
	}
}

// Seed sets the initial snapshot. A failed fetch leaves an empty dashboard.
func (d *Dashboard) Seed(data *PensData, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil || data == nil {
		d.data = PensData{Piggeies: []Piggery{}}
		return
	}
	d.data = *data
}

// Apply replaces the dashboard data with a live payload.
func (d *Dashboard) Apply(data PensData) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data = data
}

// Observe records the state of the live feed.
func (d *Dashboard) Observe(snap penlive.Snapshot[PensData]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live = snap.State
	d.liveErr = snap.Err
}

// Bind makes every payload decoded by client replace the dashboard data. It must be called
// before client.Connect.
func (d *Dashboard) Bind(client *penlive.Client[PensData]) {
	client.OnMessage = d.Apply
}

// Toggle flips whether the abnormal pigs of penID are listed and returns the new value.
func (d *Dashboard) Toggle(penID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.expanded[penID] {
		delete(d.expanded, penID)
		return false
	}
	d.expanded[penID] = true
	return true
}

func (d *Dashboard) Expanded(penID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.expanded[penID]
}

func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()

	return DashboardView{
		Data:      d.data,
		LiveState: d.live,
		LiveErr:   d.liveErr,
	}
}
