package pens

import (
	"sync"

	"github.com/nshafer/penlive"
)

// DefaultChartWindow is how many points a pen chart keeps
const DefaultChartWindow = 20

// Chart is the live time series of one pen. It starts from the detail snapshot and every
// live update appends a point, dropping the oldest beyond the window.
type Chart struct {
	mu     sync.Mutex
	window int
	name   string
	points []TimeSeriesData
}

// NewChart returns an empty chart keeping window points, or DefaultChartWindow when
// window is not positive.
func NewChart(window int) *Chart {
	if window <= 0 {
		window = DefaultChartWindow
	}
	return &Chart{window: window}
}

// Seed replaces the series with the detail snapshot.
func (c *Chart) Seed(detail *DetailData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.name = detail.Name
	c.points = c.points[:0]
	c.add(detail.TimeSeries...)
}

// Append adds the point carried by a live update.
func (c *Chart) Append(update PenUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(update.Data)
}

func (c *Chart) add(points ...TimeSeriesData) {
	c.points = append(c.points, points...)
	if over := len(c.points) - c.window; over > 0 {
		c.points = append(c.points[:0], c.points[over:]...)
	}
}

// Name is the pen name from the detail snapshot.
func (c *Chart) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Points returns a copy of the series, oldest first.
func (c *Chart) Points() []TimeSeriesData {
	c.mu.Lock()
	defer c.mu.Unlock()

	points := make([]TimeSeriesData, len(c.points))
	copy(points, c.points)
	return points
}

// Bind makes every update decoded by client append to the chart. It must be called before
// client.Connect.
func (c *Chart) Bind(client *penlive.Client[PenUpdate]) {
	client.OnMessage = c.Append
}
