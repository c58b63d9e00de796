package analytics

import (
	"sort"

	"instatistics/internal/domain"
)

// MeanPostingGap returns the mean number of days between consecutive
// distinct posting dates.
// Returns domain.ErrInsufficientData when fewer than two distinct dates exist.
func MeanPostingGap(posts []domain.Post) (float64, error) {
	seen := make(map[domain.Date]struct{}, len(posts))
	dates := make([]domain.Date, 0, len(posts))
	for _, p := range posts {
		d := p.DateOnly()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}

	if len(dates) < 2 {
		return 0, domain.ErrInsufficientData
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	// Consecutive differences telescope to last minus first.
	total := dates[len(dates)-1].DaysSince(dates[0])
	return float64(total) / float64(len(dates)-1), nil
}
