package domain

import "time"

// Report holds the aggregates shown on the dashboard.
type Report struct {
	Source        SourceKind
	Label         string
	TotalCount    int
	DailyAverage  int
	WeeklyAverage int
	VideoRatio    float64 // Percentage, one decimal
	FirstPost     time.Time
	LastPost      time.Time

	Hourly   []HourCount
	Weekdays [7]WeekdayCount
	Monthly  []MonthCount // Chronological, untrimmed

	// MonthlyDisplayed is Monthly with a truncated leading month removed.
	MonthlyDisplayed    []MonthCount
	LeadingMonthTrimmed bool

	// Engagement is only computed for uploaded datasets.
	Engagement *Engagement
}

// HourCount is the number of posts published in one hour of day.
type HourCount struct {
	Hour  int
	Count int
}

// WeekdayCount is the number of posts published on one weekday.
type WeekdayCount struct {
	Weekday string
	Count   int
}

// MonthCount is the number of posts published in one month.
type MonthCount struct {
	Month MonthPeriod
	Count int
}

// Engagement holds per-post engagement means.
type Engagement struct {
	MeanLikes    int
	MeanComments int
	PostingGap   PostingGap
}

// PostingGap is the mean distance in days between consecutive posting days.
// Sufficient is false when fewer than two distinct days exist.
type PostingGap struct {
	Days       float64
	Sufficient bool
}
