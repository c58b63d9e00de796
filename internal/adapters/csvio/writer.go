package csvio

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"instatistics/internal/domain"
)

// Derived export columns.
const (
	ColumnDateOnly = "date_only"
	ColumnHour     = "hour"
	ColumnWeekday  = "weekday"
	ColumnMonth    = "month"
)

// ExportHeader is the column order of exported tables.
var ExportHeader = []string{
	ColumnDate,
	ColumnLikes,
	ColumnComments,
	ColumnIsVideo,
	ColumnCode,
	ColumnDateOnly,
	ColumnHour,
	ColumnWeekday,
	ColumnMonth,
}

// Write exports posts with their derived calendar fields as UTF-8 CSV.
// Timestamps are written in RFC 3339 with their offset so that parsing
// the export yields the same derived fields.
func Write(w io.Writer, posts []domain.Post) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ExportHeader); err != nil {
		return err
	}

	for _, p := range posts {
		d := p.Derived()
		record := []string{
			p.Timestamp.Format(time.RFC3339),
			strconv.Itoa(p.Likes),
			strconv.Itoa(p.Comments),
			strconv.FormatBool(p.IsVideo),
			p.Shortcode,
			d.Date.String(),
			strconv.Itoa(d.Hour),
			d.Weekday,
			d.Month.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename returns the download name for a dataset export.
func ExportFilename(ds *domain.Dataset) string {
	if ds.Source == domain.SourceProfile && ds.Label != "" {
		return ds.Label + "_instagram_stats.csv"
	}
	return "instagram_analysis.csv"
}
