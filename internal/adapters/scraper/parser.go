package scraper

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"instatistics/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// errNoJSON is returned when a loaded page does not carry a JSON document.
var errNoJSON = errors.New("page does not contain a JSON document")

// profileDocument is the profile info response.
type profileDocument struct {
	Status string `json:"status"`
	Data   struct {
		User *profileUser `json:"user"`
	} `json:"data"`
}

type profileUser struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	IsPrivate bool          `json:"is_private"`
	Media     timelineMedia `json:"edge_owner_to_timeline_media"`
}

// timelineDocument is the response of a timeline page query.
type timelineDocument struct {
	Status string `json:"status"`
	Data   struct {
		User *struct {
			Media timelineMedia `json:"edge_owner_to_timeline_media"`
		} `json:"user"`
	} `json:"data"`
}

type timelineMedia struct {
	Count    int `json:"count"`
	PageInfo struct {
		HasNextPage bool   `json:"has_next_page"`
		EndCursor   string `json:"end_cursor"`
	} `json:"page_info"`
	Edges []struct {
		Node mediaNode `json:"node"`
	} `json:"edges"`
}

type edgeCount struct {
	Count int `json:"count"`
}

type mediaNode struct {
	Shortcode      string     `json:"shortcode"`
	TakenAt        int64      `json:"taken_at_timestamp"`
	IsVideo        bool       `json:"is_video"`
	LikedBy        *edgeCount `json:"edge_liked_by"`
	PreviewLike    *edgeCount `json:"edge_media_preview_like"`
	ToComment      *edgeCount `json:"edge_media_to_comment"`
	PreviewComment *edgeCount `json:"edge_media_preview_comment"`
}

// extractJSON returns the JSON document carried by a loaded page.
// Browsers wrap JSON responses in a <pre> element; raw bodies are
// returned as they are.
func extractJSON(page string) ([]byte, error) {
	trimmed := strings.TrimSpace(page)
	if strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(doc.Find("pre").First().Text())
	if text == "" {
		text = strings.TrimSpace(doc.Find("body").Text())
	}
	if !strings.HasPrefix(text, "{") {
		return nil, errNoJSON
	}
	return []byte(text), nil
}

// parseProfilePage decodes the profile document of a loaded page.
func parseProfilePage(page string) (*profileUser, error) {
	body, err := extractJSON(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	var doc profileDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", domain.ErrSourceUnavailable, err)
	}

	user := doc.Data.User
	if user == nil {
		return nil, domain.ErrProfileNotFound
	}
	if user.IsPrivate && len(user.Media.Edges) == 0 {
		return nil, domain.ErrProfilePrivate
	}
	return user, nil
}

// parseTimelinePage decodes one page of the timeline query.
func parseTimelinePage(page string) (*timelineMedia, error) {
	body, err := extractJSON(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	var doc timelineDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode timeline: %v", domain.ErrSourceUnavailable, err)
	}
	if doc.Data.User == nil {
		return nil, fmt.Errorf("%w: timeline page without user", domain.ErrSourceUnavailable)
	}
	return &doc.Data.User.Media, nil
}

// toPost converts a media node into a post in loc.
func (n mediaNode) toPost(loc *time.Location) domain.Post {
	return domain.Post{
		Timestamp: time.Unix(n.TakenAt, 0).In(loc),
		Likes:     firstCount(n.LikedBy, n.PreviewLike),
		Comments:  firstCount(n.ToComment, n.PreviewComment),
		IsVideo:   n.IsVideo,
		Shortcode: n.Shortcode,
	}
}

func firstCount(edges ...*edgeCount) int {
	for _, e := range edges {
		if e != nil {
			return e.Count
		}
	}
	return 0
}
