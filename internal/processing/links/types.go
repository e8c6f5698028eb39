package links

import "time"

// Link is a single slug to destination mapping.
type Link struct {
	ID        string
	Slug      string
	URL       string
	OwnerID   string // empty for anonymous links
	Clicks    int64
	CreatedAt time.Time
}

// OwnerStats aggregates the links of one owner.
type OwnerStats struct {
	TotalURLs   int64 `json:"totalUrls"`
	TotalClicks int64 `json:"totalClicks"`
}

type CreateLinkInput struct {
	URL        string
	OwnerID    string
	CustomSlug string
}
