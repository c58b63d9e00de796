package analytics_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instatistics/internal/analytics"
	"instatistics/internal/domain"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func randomPosts(r *rand.Rand, n int) []domain.Post {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]domain.Post, n)
	for i := range posts {
		posts[i] = domain.Post{
			Timestamp: base.Add(time.Duration(r.Int63n(int64(400 * 24 * time.Hour)))),
			Likes:     r.Intn(5000),
			Comments:  r.Intn(300),
			IsVideo:   r.Intn(3) == 0,
		}
	}
	return posts
}

func TestAggregate_EmptyDataset_ReturnsEmptyResult(t *testing.T) {
	report, err := analytics.Aggregate(&domain.Dataset{Source: domain.SourceProfile})

	require.ErrorIs(t, err, domain.ErrEmptyResult)
	assert.Zero(t, report.TotalCount)
	assert.Nil(t, report.Hourly)
}

func TestAggregate_NilDataset_ReturnsEmptyResult(t *testing.T) {
	_, err := analytics.Aggregate(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyResult)
}

func TestAggregate_DistributionsSumToTotal(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for _, n := range []int{1, 7, 50, 333} {
		ds := &domain.Dataset{Source: domain.SourceProfile, Posts: randomPosts(r, n)}

		report, err := analytics.Aggregate(ds)
		require.NoError(t, err)

		hourly, weekly, monthly := 0, 0, 0
		for _, h := range report.Hourly {
			assert.NotZero(t, h.Count, "hour %d listed with zero posts", h.Hour)
			hourly += h.Count
		}
		for _, w := range report.Weekdays {
			weekly += w.Count
		}
		for _, m := range report.Monthly {
			monthly += m.Count
		}

		assert.Equal(t, n, report.TotalCount)
		assert.Equal(t, n, hourly)
		assert.Equal(t, n, weekly)
		assert.Equal(t, n, monthly)
	}
}

func TestAggregate_SingleDaySingleHour(t *testing.T) {
	posts := []domain.Post{
		{Timestamp: at("2024-03-05T14:01:00Z")},
		{Timestamp: at("2024-03-05T14:20:00Z")},
		{Timestamp: at("2024-03-05T14:59:59Z")},
		{Timestamp: at("2024-03-05T14:30:00Z")},
	}

	report, err := analytics.Aggregate(&domain.Dataset{Posts: posts})
	require.NoError(t, err)

	assert.Equal(t, []domain.HourCount{{Hour: 14, Count: 4}}, report.Hourly)
	assert.Equal(t, 4, report.DailyAverage)
	assert.Equal(t, 4, report.WeeklyAverage)
}

func TestHourlyDistribution_OrderedAscending(t *testing.T) {
	posts := []domain.Post{
		{Timestamp: at("2024-03-05T23:00:00Z")},
		{Timestamp: at("2024-03-05T00:10:00Z")},
		{Timestamp: at("2024-03-06T09:00:00Z")},
		{Timestamp: at("2024-03-07T09:30:00Z")},
	}

	hourly := analytics.HourlyDistribution(posts)

	assert.Equal(t, []domain.HourCount{
		{Hour: 0, Count: 1},
		{Hour: 9, Count: 2},
		{Hour: 23, Count: 1},
	}, hourly)
}

func TestHourlyDistribution_UsesTimestampLocation(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	posts := []domain.Post{{Timestamp: time.Date(2024, 3, 5, 22, 0, 0, 0, time.UTC).In(istanbul)}}

	hourly := analytics.HourlyDistribution(posts)

	assert.Equal(t, []domain.HourCount{{Hour: 1, Count: 1}}, hourly)
}

func TestWeekdayDistribution_AlwaysSevenDaysMondayFirst(t *testing.T) {
	posts := []domain.Post{
		{Timestamp: at("2024-03-03T10:00:00Z")}, // Sunday
		{Timestamp: at("2024-03-06T10:00:00Z")}, // Wednesday
		{Timestamp: at("2024-03-13T10:00:00Z")}, // Wednesday
	}

	dist := analytics.WeekdayDistribution(posts)

	assert.Equal(t, [7]domain.WeekdayCount{
		{Weekday: "Monday", Count: 0},
		{Weekday: "Tuesday", Count: 0},
		{Weekday: "Wednesday", Count: 2},
		{Weekday: "Thursday", Count: 0},
		{Weekday: "Friday", Count: 0},
		{Weekday: "Saturday", Count: 0},
		{Weekday: "Sunday", Count: 1},
	}, dist)
}

func TestMonthlyDistribution_Chronological(t *testing.T) {
	posts := []domain.Post{
		{Timestamp: at("2024-02-10T10:00:00Z")},
		{Timestamp: at("2023-12-31T23:00:00Z")},
		{Timestamp: at("2024-02-11T10:00:00Z")},
		{Timestamp: at("2024-01-01T00:00:00Z")},
	}

	monthly := analytics.MonthlyDistribution(posts)

	require.Len(t, monthly, 3)
	assert.Equal(t, "2023-12", monthly[0].Month.String())
	assert.Equal(t, "2024-01", monthly[1].Month.String())
	assert.Equal(t, "2024-02", monthly[2].Month.String())
	assert.Equal(t, 2, monthly[2].Count)
}

func TestDailyAverage_RoundsHalfToEven(t *testing.T) {
	// 5 posts over 2 days: 2.5 rounds to 2.
	posts := []domain.Post{
		{Timestamp: at("2024-03-05T10:00:00Z")},
		{Timestamp: at("2024-03-05T11:00:00Z")},
		{Timestamp: at("2024-03-05T12:00:00Z")},
		{Timestamp: at("2024-03-06T10:00:00Z")},
		{Timestamp: at("2024-03-06T11:00:00Z")},
	}

	assert.Equal(t, 2, analytics.DailyAverage(posts))
}

func TestWeeklyAverage_GroupsMondayToSunday(t *testing.T) {
	posts := []domain.Post{
		{Timestamp: at("2024-03-04T10:00:00Z")}, // Monday
		{Timestamp: at("2024-03-10T10:00:00Z")}, // Sunday, same week
		{Timestamp: at("2024-03-11T10:00:00Z")}, // next Monday
		{Timestamp: at("2024-03-12T10:00:00Z")},
		{Timestamp: at("2024-03-13T10:00:00Z")},
		{Timestamp: at("2024-03-14T10:00:00Z")},
	}

	// Weeks of 2 and 4 posts.
	assert.Equal(t, 3, analytics.WeeklyAverage(posts))
}

func TestVideoRatio_OneDecimalPercentage(t *testing.T) {
	posts := []domain.Post{
		{IsVideo: true},
		{IsVideo: false},
		{IsVideo: false},
	}

	assert.Equal(t, 33.3, analytics.VideoRatio(posts))
}

func TestVideoRatio_TiesRoundToEven(t *testing.T) {
	testCases := []struct {
		name   string
		videos int
		total  int
		want   float64
	}{
		{name: "6.25 rounds down", videos: 1, total: 16, want: 6.2},
		{name: "18.75 rounds up", videos: 3, total: 16, want: 18.8},
		{name: "all videos", videos: 16, total: 16, want: 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			posts := make([]domain.Post, tc.total)
			for i := range tc.videos {
				posts[i].IsVideo = true
			}

			assert.Equal(t, tc.want, analytics.VideoRatio(posts))
		})
	}
}

func TestAggregate_EngagementOnlyForUploads(t *testing.T) {
	posts := []domain.Post{
		{Timestamp: at("2024-03-01T10:00:00Z"), Likes: 10, Comments: 3},
		{Timestamp: at("2024-03-06T10:00:00Z"), Likes: 11, Comments: 4},
	}

	profile, err := analytics.Aggregate(&domain.Dataset{Source: domain.SourceProfile, Posts: posts})
	require.NoError(t, err)
	assert.Nil(t, profile.Engagement)

	upload, err := analytics.Aggregate(&domain.Dataset{Source: domain.SourceUpload, Posts: posts})
	require.NoError(t, err)
	require.NotNil(t, upload.Engagement)
	assert.Equal(t, 10, upload.Engagement.MeanLikes)
	assert.Equal(t, 3, upload.Engagement.MeanComments)
	assert.True(t, upload.Engagement.PostingGap.Sufficient)
	assert.Equal(t, 5.0, upload.Engagement.PostingGap.Days)
}

func TestAggregate_Span(t *testing.T) {
	posts := []domain.Post{
		{Timestamp: at("2024-03-06T10:00:00Z")},
		{Timestamp: at("2024-01-01T10:00:00Z")},
		{Timestamp: at("2024-02-01T10:00:00Z")},
	}

	report, err := analytics.Aggregate(&domain.Dataset{Posts: posts})
	require.NoError(t, err)

	assert.Equal(t, at("2024-01-01T10:00:00Z"), report.FirstPost)
	assert.Equal(t, at("2024-03-06T10:00:00Z"), report.LastPost)
}
