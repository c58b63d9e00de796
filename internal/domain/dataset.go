package domain

import "time"

// SourceKind identifies where a dataset came from.
type SourceKind string

const (
	SourceProfile SourceKind = "profile"
	SourceUpload  SourceKind = "upload"
)

// Dataset is the table of posts analyzed in one session.
// Posts are never modified after the dataset is built.
type Dataset struct {
	Key       string // Canonical store key
	Source    SourceKind
	Label     string // Username or uploaded file name
	Limit     int    // Requested maximum, profile datasets only
	FetchedAt time.Time
	Posts     []Post
}

// Len returns the number of posts.
func (d *Dataset) Len() int {
	return len(d.Posts)
}

// Empty reports whether the dataset has no posts.
func (d *Dataset) Empty() bool {
	return len(d.Posts) == 0
}
