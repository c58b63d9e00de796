package views

import (
	"fmt"
	"math"
	"strconv"

	"instatistics/internal/domain"
)

// DashboardData is the input of the dashboard page.
type DashboardData struct {
	Report     domain.Report
	ExportURL  string
	RefreshURL string // Empty for uploads
}

func heading(r domain.Report) string {
	if r.Source == domain.SourceProfile {
		return "@" + r.Label
	}
	return r.Label
}

func trimmedNotice(r domain.Report) string {
	first := r.Monthly[0]
	return fmt.Sprintf("%s is hidden: only %d posts fall in it, likely cut off by the post limit.", first.Month, first.Count)
}

// postingGapDays shows the mean gap in whole days, rounded half to even.
func postingGapDays(gap domain.PostingGap) string {
	return strconv.Itoa(int(math.RoundToEven(gap.Days)))
}
