package main

import (
	"bytes"
	"testing"

	"github.com/nshafer/penlive"
	"github.com/nshafer/penlive/internal/pens"
	"github.com/stretchr/testify/assert"
)

func testView() pens.DashboardView {
	return pens.DashboardView{
		Data: pens.PensData{Piggeies: []pens.Piggery{{
			PiggeryID:   "p1",
			PiggeryName: "North",
			TotalPigs:   40,
			Pens: []pens.Pen{{
				PenID:           "room_1",
				PenName:         "Pen 1",
				CurrentPigCount: 20,
				AbnormalPigs:    []pens.AbnormalPig{{WID: 3, Activity: 0.1, FeedingTime: 2}},
			}},
		}}},
	}
}

func TestRenderDashboard(t *testing.T) {
	var buf bytes.Buffer
	renderDashboard(&buf, testView(), func(string) bool { return false })

	out := buf.String()
	assert.Contains(t, out, "North (40 pigs)")
	assert.Contains(t, out, "room_1")
	assert.NotContains(t, out, "abnormal pigs:")
	assert.NotContains(t, out, "WebSocket:")
}

func TestRenderDashboard_ExpandedAndDegraded(t *testing.T) {
	view := testView()
	view.LiveErr = penlive.ErrMaxReconnect.Error()

	var buf bytes.Buffer
	renderDashboard(&buf, view, func(penID string) bool { return penID == "room_1" })

	out := buf.String()
	assert.Contains(t, out, "WebSocket: max reconnection attempts reached")
	assert.Contains(t, out, "Pen 1 abnormal pigs:")
	assert.Contains(t, out, "#3")
}

func TestRenderDashboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderDashboard(&buf, pens.DashboardView{}, func(string) bool { return false })
	assert.Equal(t, "No piggeries\n", buf.String())
}

func TestRenderChart(t *testing.T) {
	var buf bytes.Buffer
	renderChart(&buf, "room_7", "", []pens.TimeSeriesData{
		{Activity: 0, FeedingTime: 5},
		{Activity: 1, FeedingTime: 5},
	}, "")

	out := buf.String()
	assert.Contains(t, out, "room_7\n")
	assert.Contains(t, out, "activity      ▁█  1.00")
	assert.Contains(t, out, "feeding time  ▁▁  5.0")
}

func TestRenderChart_NoData(t *testing.T) {
	var buf bytes.Buffer
	renderChart(&buf, "room_7", "Pen 7", nil, penlive.ErrTransport.Error())
	assert.Equal(t, "Pen 7\nWebSocket: websocket connection error\nNo data\n", buf.String())
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▁▁", sparkline([]float64{2, 2, 2}))
	assert.Equal(t, "▁▄█", sparkline([]float64{0, 0.5, 1}))
}
