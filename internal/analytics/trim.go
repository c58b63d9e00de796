package analytics

import "instatistics/internal/domain"

// leadingMonthRatio is the share of the second month's count below which
// the first month is treated as truncated.
const leadingMonthRatio = 0.5

// TrimLeadingMonth drops the first bucket of a chronological monthly
// distribution when it holds fewer than half the posts of the second one.
// A scraped or uploaded window usually starts mid-month, which makes the
// first bucket look like a collapse in the trend chart.
//
// At most the first bucket is removed and the input slice is not modified.
// Distributions with fewer than two buckets are returned unchanged.
func TrimLeadingMonth(months []domain.MonthCount) ([]domain.MonthCount, bool) {
	if len(months) < 2 {
		return months, false
	}

	if float64(months[0].Count) < float64(months[1].Count)*leadingMonthRatio {
		return months[1:], true
	}
	return months, false
}
