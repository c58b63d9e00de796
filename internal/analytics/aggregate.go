// Package analytics turns a post dataset into dashboard aggregates.
package analytics

import (
	"math"
	"sort"
	"time"

	"instatistics/internal/domain"
)

// Aggregate computes the dashboard report for a dataset.
// Returns domain.ErrEmptyResult without computing anything when the
// dataset has no posts.
func Aggregate(ds *domain.Dataset) (domain.Report, error) {
	if ds == nil || ds.Empty() {
		return domain.Report{}, domain.ErrEmptyResult
	}

	posts := ds.Posts
	report := domain.Report{
		Source:        ds.Source,
		Label:         ds.Label,
		TotalCount:    len(posts),
		DailyAverage:  DailyAverage(posts),
		WeeklyAverage: WeeklyAverage(posts),
		VideoRatio:    VideoRatio(posts),
		Hourly:        HourlyDistribution(posts),
		Weekdays:      WeekdayDistribution(posts),
		Monthly:       MonthlyDistribution(posts),
	}

	report.FirstPost, report.LastPost = span(posts)
	report.MonthlyDisplayed, report.LeadingMonthTrimmed = TrimLeadingMonth(report.Monthly)

	if ds.Source == domain.SourceUpload {
		report.Engagement = engagement(posts)
	}

	return report, nil
}

// DailyAverage returns the mean number of posts per posting day.
func DailyAverage(posts []domain.Post) int {
	days := make(map[domain.Date]int)
	for _, p := range posts {
		days[p.DateOnly()]++
	}
	return meanGroupSize(len(posts), len(days))
}

// WeeklyAverage returns the mean number of posts per Monday-Sunday week
// that has at least one post.
func WeeklyAverage(posts []domain.Post) int {
	weeks := make(map[domain.Date]int)
	for _, p := range posts {
		weeks[p.DateOnly().WeekStart()]++
	}
	return meanGroupSize(len(posts), len(weeks))
}

// meanGroupSize rounds half to even.
func meanGroupSize(total, groups int) int {
	if groups == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(total) / float64(groups)))
}

// VideoRatio returns the share of videos as a percentage with one decimal,
// rounded half to even.
func VideoRatio(posts []domain.Post) float64 {
	if len(posts) == 0 {
		return 0
	}
	videos := 0
	for _, p := range posts {
		if p.IsVideo {
			videos++
		}
	}
	return math.RoundToEven(float64(videos)*1000/float64(len(posts))) / 10
}

// HourlyDistribution counts posts per hour of day.
// Hours without posts are omitted; the result is ordered by hour.
func HourlyDistribution(posts []domain.Post) []domain.HourCount {
	var counts [24]int
	for _, p := range posts {
		counts[p.Hour()]++
	}

	var hourly []domain.HourCount
	for hour, n := range counts {
		if n > 0 {
			hourly = append(hourly, domain.HourCount{Hour: hour, Count: n})
		}
	}
	return hourly
}

// WeekdayDistribution counts posts per weekday, Monday first.
// All seven days are present, days without posts count zero.
func WeekdayDistribution(posts []domain.Post) [7]domain.WeekdayCount {
	var counts [7]int
	for _, p := range posts {
		counts[p.Timestamp.Weekday()]++
	}

	var dist [7]domain.WeekdayCount
	for i, wd := range domain.WeekdayOrder {
		dist[i] = domain.WeekdayCount{Weekday: wd.String(), Count: counts[wd]}
	}
	return dist
}

// MonthlyDistribution counts posts per calendar month in chronological order.
func MonthlyDistribution(posts []domain.Post) []domain.MonthCount {
	counts := make(map[domain.MonthPeriod]int)
	for _, p := range posts {
		counts[p.Month()]++
	}

	monthly := make([]domain.MonthCount, 0, len(counts))
	for m, n := range counts {
		monthly = append(monthly, domain.MonthCount{Month: m, Count: n})
	}
	sort.Slice(monthly, func(i, j int) bool {
		return monthly[i].Month.Before(monthly[j].Month)
	})
	return monthly
}

func span(posts []domain.Post) (first, last time.Time) {
	first, last = posts[0].Timestamp, posts[0].Timestamp
	for _, p := range posts[1:] {
		if p.Timestamp.Before(first) {
			first = p.Timestamp
		}
		if p.Timestamp.After(last) {
			last = p.Timestamp
		}
	}
	return first, last
}

func engagement(posts []domain.Post) *domain.Engagement {
	var likes, comments int
	for _, p := range posts {
		likes += p.Likes
		comments += p.Comments
	}

	e := &domain.Engagement{
		MeanLikes:    int(float64(likes) / float64(len(posts))),
		MeanComments: int(float64(comments) / float64(len(posts))),
	}

	if days, err := MeanPostingGap(posts); err == nil {
		e.PostingGap = domain.PostingGap{Days: days, Sufficient: true}
	}
	return e
}
