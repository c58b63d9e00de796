package web

import (
	"fmt"
	"time"

	"instatistics/internal/domain"
)

// reportResponse is the JSON form of a report.
type reportResponse struct {
	Source              domain.SourceKind `json:"source"`
	Label               string            `json:"label"`
	FetchedAt           time.Time         `json:"fetched_at"`
	TotalCount          int               `json:"total_count"`
	DailyAverage        int               `json:"daily_average"`
	WeeklyAverage       int               `json:"weekly_average"`
	VideoRatio          float64           `json:"video_ratio"`
	FirstPost           time.Time         `json:"first_post"`
	LastPost            time.Time         `json:"last_post"`
	Hourly              map[string]int    `json:"hourly"`
	Weekdays            []bucket          `json:"weekdays"`
	Monthly             []bucket          `json:"monthly"`
	MonthlyDisplayed    []bucket          `json:"monthly_displayed"`
	LeadingMonthTrimmed bool              `json:"leading_month_trimmed"`
}

type bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func newReportResponse(r domain.Report, fetchedAt time.Time) reportResponse {
	resp := reportResponse{
		Source:              r.Source,
		Label:               r.Label,
		FetchedAt:           fetchedAt,
		TotalCount:          r.TotalCount,
		DailyAverage:        r.DailyAverage,
		WeeklyAverage:       r.WeeklyAverage,
		VideoRatio:          r.VideoRatio,
		FirstPost:           r.FirstPost,
		LastPost:            r.LastPost,
		Hourly:              make(map[string]int, len(r.Hourly)),
		Weekdays:            make([]bucket, 0, len(r.Weekdays)),
		Monthly:             monthBuckets(r.Monthly),
		MonthlyDisplayed:    monthBuckets(r.MonthlyDisplayed),
		LeadingMonthTrimmed: r.LeadingMonthTrimmed,
	}
	for _, h := range r.Hourly {
		resp.Hourly[fmt.Sprintf("%02d", h.Hour)] = h.Count
	}
	for _, d := range r.Weekdays {
		resp.Weekdays = append(resp.Weekdays, bucket{Label: d.Weekday, Count: d.Count})
	}
	return resp
}

func monthBuckets(months []domain.MonthCount) []bucket {
	out := make([]bucket, len(months))
	for i, m := range months {
		out[i] = bucket{Label: m.Month.String(), Count: m.Count}
	}
	return out
}
