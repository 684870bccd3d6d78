package pens

// AbnormalPig is a pig flagged by the vision pipeline
type AbnormalPig struct {
	WID          int     `json:"wid"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Activity     float64 `json:"activity"`
	FeedingTime  float64 `json:"feeding_time"`
}

// Pen holds the current aggregates of one pen
type Pen struct {
	PenID                 string        `json:"pen_id"`
	PenName               string        `json:"pen_name"`
	CurrentPigCount       int           `json:"current_pig_count"`
	AvgActivityLevel      float64       `json:"avg_activity_level"`
	AvgFeedingTimeMinutes float64       `json:"avg_feeding_time_minutes"`
	AvgTemperatureCelsius float64       `json:"avg_temperature_celsius"`
	AbnormalPigs          []AbnormalPig `json:"abnormal_pigs"`
}

// Piggery is one barn and its pens
type Piggery struct {
	PiggeryID   string `json:"piggery_id"`
	PiggeryName string `json:"piggery_name"`
	TotalPigs   int    `json:"total_pigs"`
	Pens        []Pen  `json:"pens"`
}

// PensData is the dashboard payload, both from GET /pens and from the /ws/pens feed.
// The wire name of the list is "piggeies".
type PensData struct {
	Piggeies []Piggery `json:"piggeies"`
}

// TimeSeriesData is one point of a pen chart
type TimeSeriesData struct {
	Activity    float64 `json:"activity"`
	FeedingTime float64 `json:"feeding_time"`
}

// DetailData is the response of GET /pens/{id}/detail
type DetailData struct {
	ID         int              `json:"id"`
	Name       string           `json:"name"`
	TimeSeries []TimeSeriesData `json:"time_series"`
}

// PenUpdate is one message of the /ws/pens/{id} feed
type PenUpdate struct {
	PenID     string         `json:"pen_id"`
	Timestamp string         `json:"timestamp"`
	Data      TimeSeriesData `json:"data"`
}
