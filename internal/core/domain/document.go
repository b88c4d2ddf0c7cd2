package domain

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryNews    Category = "news"
	CategoryPolicy  Category = "policy"
	CategoryGeneral Category = "general"
)

// PublishedAtLayout is the only date layout corpus feeds emit,
// e.g. "Thu, 24 Jul 2025 09:25:24 -0500".
const PublishedAtLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

// Document is one immutable corpus entry. The corpus owns documents for the
// process lifetime; search results reference them, never copy or mutate them.
type Document struct {
	Title       string   `json:"title"`
	URL         string   `json:"url,omitempty"`
	Body        string   `json:"body"`
	Category    Category `json:"category"`
	PublishedAt string   `json:"published_at,omitempty"`
}

func NormalizeCategory(raw string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryNews:
		return CategoryNews
	case CategoryPolicy:
		return CategoryPolicy
	default:
		return CategoryGeneral
	}
}

// PublicationTime parses the publication date lazily. A missing or malformed
// date yields the zero time so the document sorts after every dated one.
func (d *Document) PublicationTime() time.Time {
	raw := strings.TrimSpace(d.PublishedAt)
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(PublishedAtLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
