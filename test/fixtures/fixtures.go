// Package fixtures provides feed documents and tables for tests.
package fixtures

import (
	"encoding/json"
	"fmt"
	"html"
	"time"
)

// Node describes one post in a generated feed document.
type Node struct {
	Shortcode string
	TakenAt   time.Time
	Likes     int
	Comments  int
	IsVideo   bool
}

// GenerateNodes creates n posts, most recent first, spaced by step.
func GenerateNodes(n int, newest time.Time, step time.Duration) []Node {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{
			Shortcode: fmt.Sprintf("P%04d", i),
			TakenAt:   newest.Add(-time.Duration(i) * step),
			Likes:     100 + i,
			Comments:  i % 7,
			IsVideo:   i%3 == 0,
		}
	}
	return nodes
}

func media(nodes []Node, total int, hasNext bool, cursor string) map[string]any {
	edges := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		edges[i] = map[string]any{
			"node": map[string]any{
				"shortcode":                  n.Shortcode,
				"taken_at_timestamp":         n.TakenAt.Unix(),
				"is_video":                   n.IsVideo,
				"edge_liked_by":              map[string]any{"count": n.Likes},
				"edge_media_to_comment":      map[string]any{"count": n.Comments},
				"edge_media_preview_comment": map[string]any{"count": 0},
			},
		}
	}
	return map[string]any{
		"count": total,
		"page_info": map[string]any{
			"has_next_page": hasNext,
			"end_cursor":    cursor,
		},
		"edges": edges,
	}
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// GenerateProfileJSON creates a profile document holding the first page.
func GenerateProfileJSON(userID, username string, firstPage []Node, total int, hasNext bool, cursor string) string {
	return mustJSON(map[string]any{
		"status": "ok",
		"data": map[string]any{
			"user": map[string]any{
				"id":                           userID,
				"username":                     username,
				"is_private":                   false,
				"edge_owner_to_timeline_media": media(firstPage, total, hasNext, cursor),
			},
		},
	})
}

// GenerateTimelineJSON creates one timeline page document.
func GenerateTimelineJSON(page []Node, total int, hasNext bool, cursor string) string {
	return mustJSON(map[string]any{
		"status": "ok",
		"data": map[string]any{
			"user": map[string]any{
				"edge_owner_to_timeline_media": media(page, total, hasNext, cursor),
			},
		},
	})
}

// GenerateMissingProfile creates the document returned for unknown usernames.
func GenerateMissingProfile() string {
	return `{"data":{"user":null},"status":"ok"}`
}

// GeneratePrivateProfile creates the document of a private account.
func GeneratePrivateProfile() string {
	return mustJSON(map[string]any{
		"status": "ok",
		"data": map[string]any{
			"user": map[string]any{
				"id":                           "99",
				"username":                     "hidden",
				"is_private":                   true,
				"edge_owner_to_timeline_media": media(nil, 31, false, ""),
			},
		},
	})
}

// WrapInBrowserDocument wraps a JSON body the way Chrome renders it.
func WrapInBrowserDocument(body string) string {
	return `<html><head><meta name="color-scheme" content="light dark"></head><body>` +
		`<pre style="word-wrap: break-word; white-space: pre-wrap;">` + html.EscapeString(body) + `</pre>` +
		`</body></html>`
}

// GenerateLoginWall creates an HTML page without a JSON document.
func GenerateLoginWall() string {
	return `
<!DOCTYPE html>
<html>
<head><title>Login • Instagram</title></head>
<body>
<div id="loginForm">Log in to see photos and videos from friends.</div>
</body>
</html>
`
}

// GenerateUploadCSV creates an uploaded post table.
func GenerateUploadCSV() string {
	return `date,likes,comments,is_video
2024-03-01 09:15:00,120,8,False
2024-03-02T18:00:00Z,340,21,True
2024-03-06 12:30:00,95,4,False
2024-04-11 20:45:00,210,13,True
`
}
