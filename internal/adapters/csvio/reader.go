// Package csvio reads uploaded post tables and writes enriched exports.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"instatistics/internal/domain"
)

// Required input columns.
const (
	ColumnDate     = "date"
	ColumnLikes    = "likes"
	ColumnComments = "comments"
	ColumnIsVideo  = "is_video"
	ColumnCode     = "shortcode"
)

var requiredColumns = []string{ColumnDate, ColumnLikes, ColumnComments, ColumnIsVideo}

// Parse reads a CSV post table with a header row.
// Column names are matched case-insensitively and unknown columns are
// ignored, so an exported table can be uploaded again.
// Dates without a zone are interpreted in loc.
// Any structural or value error is wrapped in domain.ErrMalformedInput.
func Parse(r io.Reader, loc *time.Location) ([]domain.Post, error) {
	if loc == nil {
		loc = time.UTC
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header row", domain.ErrMalformedInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var posts []domain.Post
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
		}

		line, _ := cr.FieldPos(0)
		post, err := parseRecord(record, idx, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrMalformedInput, line, err)
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// columnIndex maps lower-cased column names to record positions.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrMalformedInput, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRecord(record []string, idx map[string]int, loc *time.Location) (domain.Post, error) {
	var post domain.Post

	raw := strings.TrimSpace(record[idx[ColumnDate]])
	if raw == "" {
		return post, errors.New("empty date")
	}
	ts, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return post, fmt.Errorf("unparseable date %q", raw)
	}
	post.Timestamp = ts

	if post.Likes, err = parseCount(record[idx[ColumnLikes]]); err != nil {
		return post, fmt.Errorf("likes: %w", err)
	}
	if post.Comments, err = parseCount(record[idx[ColumnComments]]); err != nil {
		return post, fmt.Errorf("comments: %w", err)
	}
	if post.IsVideo, err = parseFlag(record[idx[ColumnIsVideo]]); err != nil {
		return post, fmt.Errorf("is_video: %w", err)
	}
	if i, ok := idx[ColumnCode]; ok {
		post.Shortcode = strings.TrimSpace(record[i])
	}

	return post, nil
}

// parseCount accepts non-negative integers, including integral floats
// such as "12.0" written by spreadsheet tools.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative value %q", s)
		}
		return n, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer %q", s)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative value %q", s)
	}
	return int(f), nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean %q", s)
	}
}
