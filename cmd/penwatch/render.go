package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nshafer/penlive/internal/pens"
)

const sparkBars = "▁▂▃▄▅▆▇█"

func renderDashboard(w io.Writer, view pens.DashboardView, expanded func(penID string) bool) {
	if view.LiveErr != "" {
		fmt.Fprintf(w, "WebSocket: %s\n\n", view.LiveErr)
	}

	if len(view.Data.Piggeies) == 0 {
		fmt.Fprintln(w, "No piggeries")
		return
	}

	for _, piggery := range view.Data.Piggeies {
		fmt.Fprintf(w, "%s (%d pigs)\n", piggery.PiggeryName, piggery.TotalPigs)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  PEN\tNAME\tPIGS\tACTIVITY\tFEEDING (MIN)\tTEMP (°C)\tABNORMAL")
		for _, pen := range piggery.Pens {
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%.2f\t%.1f\t%.1f\t%d\n",
				pen.PenID,
				pen.PenName,
				pen.CurrentPigCount,
				pen.AvgActivityLevel,
				pen.AvgFeedingTimeMinutes,
				pen.AvgTemperatureCelsius,
				len(pen.AbnormalPigs),
			)
		}
		_ = tw.Flush()

		for _, pen := range piggery.Pens {
			if !expanded(pen.PenID) || len(pen.AbnormalPigs) == 0 {
				continue
			}
			fmt.Fprintf(w, "  %s abnormal pigs:\n", pen.PenName)
			for _, pig := range pen.AbnormalPigs {
				fmt.Fprintf(w, "    #%d activity %.2f feeding %.1f %s\n", pig.WID, pig.Activity, pig.FeedingTime, pig.ThumbnailURL)
			}
		}
		fmt.Fprintln(w)
	}
}

func renderChart(w io.Writer, penID, name string, points []pens.TimeSeriesData, liveErr string) {
	if name == "" {
		name = penID
	}
	fmt.Fprintln(w, name)
	if liveErr != "" {
		fmt.Fprintf(w, "WebSocket: %s\n", liveErr)
	}

	if len(points) == 0 {
		fmt.Fprintln(w, "No data")
		return
	}

	activity := make([]float64, len(points))
	feeding := make([]float64, len(points))
	for i, p := range points {
		activity[i] = p.Activity
		feeding[i] = p.FeedingTime
	}

	last := points[len(points)-1]
	fmt.Fprintf(w, "activity      %s  %.2f\n", sparkline(activity), last.Activity)
	fmt.Fprintf(w, "feeding time  %s  %.1f\n", sparkline(feeding), last.FeedingTime)
}

// sparkline scales values between their min and max onto block characters.
func sparkline(values []float64) string {
	bars := []rune(sparkBars)
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	for _, v := range values {
		i := 0
		if hi > lo {
			i = int((v - lo) / (hi - lo) * float64(len(bars)-1))
		}
		b.WriteRune(bars[i])
	}
	return b.String()
}
