package pens

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/nshafer/penlive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureTransport hands the handler of the last opened connection to the test.
type captureTransport struct {
	handler penlive.TransportHandler
}

type nopConn struct{}

func (nopConn) Close() {}

func (t *captureTransport) Open(_ url.URL, _ http.Header, handler penlive.TransportHandler) penlive.Conn {
	t.handler = handler
	return nopConn{}
}

func piggery(id string, pigs int) Piggery {
	return Piggery{PiggeryID: id, PiggeryName: "Barn " + id, TotalPigs: pigs}
}

func TestDashboard_Seed(t *testing.T) {
	d := NewDashboard()
	d.Seed(&PensData{Piggeies: []Piggery{piggery("a", 10)}}, nil)
	assert.Len(t, d.View().Data.Piggeies, 1)

	d.Seed(nil, errors.New("connection refused"))
	view := d.View()
	require.NotNil(t, view.Data.Piggeies)
	assert.Empty(t, view.Data.Piggeies)
}

func TestDashboard_LiveReplacesSnapshot(t *testing.T) {
	transport := &captureTransport{}
	client := penlive.NewClient[PensData]()
	client.Transport = transport
	t.Cleanup(client.Close)

	d := NewDashboard()
	d.Seed(&PensData{Piggeies: []Piggery{piggery("a", 10), piggery("b", 20)}}, nil)
	d.Bind(client)

	require.NoError(t, client.Connect(PensTarget("ws://h", "tok")))
	transport.handler.OnConnOpen()
	transport.handler.OnConnMessage([]byte(`{"piggeies":[{"piggery_id":"c","total_pigs":3}]}`))

	view := d.View()
	require.Len(t, view.Data.Piggeies, 1)
	assert.Equal(t, "c", view.Data.Piggeies[0].PiggeryID)

	transport.handler.OnConnMessage([]byte(`garbage`))
	assert.Equal(t, "c", d.View().Data.Piggeies[0].PiggeryID, "malformed frames keep the last payload")

	transport.handler.OnConnError(errors.New("reset"))
	d.Observe(client.Snapshot())
	view = d.View()
	assert.Equal(t, penlive.ErrTransport.Error(), view.LiveErr)
	assert.Equal(t, penlive.Open, view.LiveState)
}

func TestDashboard_Toggle(t *testing.T) {
	d := NewDashboard()

	assert.False(t, d.Expanded("room_1"))
	assert.True(t, d.Toggle("room_1"))
	assert.True(t, d.Expanded("room_1"))
	assert.False(t, d.Expanded("room_2"))
	assert.False(t, d.Toggle("room_1"))
	assert.False(t, d.Expanded("room_1"))
}

func series(n int) []TimeSeriesData {
	points := make([]TimeSeriesData, n)
	for i := range points {
		points[i] = TimeSeriesData{Activity: float64(i)}
	}
	return points
}

func TestChart_Window(t *testing.T) {
	c := NewChart(0)
	c.Seed(&DetailData{ID: 7, Name: "Pen 7", TimeSeries: series(18)})
	assert.Equal(t, "Pen 7", c.Name())
	assert.Len(t, c.Points(), 18)

	for i := 0; i < 5; i++ {
		c.Append(PenUpdate{PenID: "7", Data: TimeSeriesData{Activity: float64(100 + i)}})
	}

	points := c.Points()
	require.Len(t, points, DefaultChartWindow)
	assert.Equal(t, float64(3), points[0].Activity, "oldest points are dropped")
	assert.Equal(t, float64(104), points[len(points)-1].Activity)
}

func TestChart_SeedLongerThanWindow(t *testing.T) {
	c := NewChart(5)
	c.Seed(&DetailData{TimeSeries: series(8)})

	points := c.Points()
	require.Len(t, points, 5)
	assert.Equal(t, float64(3), points[0].Activity)
}

func TestChart_PointsIsACopy(t *testing.T) {
	c := NewChart(3)
	c.Append(PenUpdate{Data: TimeSeriesData{Activity: 1}})

	points := c.Points()
	points[0].Activity = 99
	assert.Equal(t, float64(1), c.Points()[0].Activity)
}

func TestChart_Bind(t *testing.T) {
	transport := &captureTransport{}
	client := penlive.NewClient[PenUpdate]()
	client.Transport = transport
	t.Cleanup(client.Close)

	c := NewChart(DefaultChartWindow)
	c.Bind(client)

	require.NoError(t, client.Connect(PenTarget("ws://h", "room_7", "tok")))
	transport.handler.OnConnOpen()
	transport.handler.OnConnMessage([]byte(`{"pen_id":"7","timestamp":"2026-03-01T12:00:00Z","data":{"activity":0.5,"feeding_time":12}}`))

	require.Len(t, c.Points(), 1)
	assert.Equal(t, TimeSeriesData{Activity: 0.5, FeedingTime: 12}, c.Points()[0])
}
