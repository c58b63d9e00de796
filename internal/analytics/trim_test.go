package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"instatistics/internal/analytics"
	"instatistics/internal/domain"
)

func months(counts ...int) []domain.MonthCount {
	out := make([]domain.MonthCount, len(counts))
	for i, n := range counts {
		out[i] = domain.MonthCount{
			Month: domain.MonthPeriod{Year: 2024, Month: time.Month(i + 1)},
			Count: n,
		}
	}
	return out
}

func counts(ms []domain.MonthCount) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.Count
	}
	return out
}

func TestTrimLeadingMonth(t *testing.T) {
	testCases := []struct {
		name        string
		input       []domain.MonthCount
		wantCounts  []int
		wantTrimmed bool
	}{
		{name: "truncated first month", input: months(3, 40, 42), wantCounts: []int{40, 42}, wantTrimmed: true},
		{name: "close values", input: months(38, 40), wantCounts: []int{38, 40}},
		{name: "exactly half is kept", input: months(20, 40), wantCounts: []int{20, 40}},
		{name: "larger first month is kept", input: months(100, 40, 41), wantCounts: []int{100, 40, 41}},
		{name: "second month empty of posts", input: months(0, 0), wantCounts: []int{0, 0}},
		{name: "single bucket", input: months(1), wantCounts: []int{1}},
		{name: "no buckets", input: months(), wantCounts: []int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, trimmed := analytics.TrimLeadingMonth(tc.input)

			assert.Equal(t, tc.wantTrimmed, trimmed)
			assert.Equal(t, tc.wantCounts, counts(got))
		})
	}
}

func TestTrimLeadingMonth_RemovesOnlyFirstBucket(t *testing.T) {
	input := months(1, 10, 1, 30)

	got, trimmed := analytics.TrimLeadingMonth(input)

	assert.True(t, trimmed)
	assert.Equal(t, input[1:], got)
	assert.Len(t, input, 4, "input must not be modified")
}

func TestAggregate_KeepsRawMonthlyWhenTrimming(t *testing.T) {
	var posts []domain.Post
	posts = append(posts, domain.Post{Timestamp: at("2024-01-30T10:00:00Z")})
	for d := 1; d <= 20; d++ {
		posts = append(posts, domain.Post{Timestamp: time.Date(2024, 2, d, 12, 0, 0, 0, time.UTC)})
	}

	report, err := analytics.Aggregate(&domain.Dataset{Posts: posts})

	assert.NoError(t, err)
	assert.True(t, report.LeadingMonthTrimmed)
	assert.Equal(t, []int{1, 20}, counts(report.Monthly))
	assert.Equal(t, []int{20}, counts(report.MonthlyDisplayed))
	assert.Equal(t, 21, report.TotalCount)
}
