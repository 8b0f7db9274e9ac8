package models

import "time"

// ============================================================================
// SEARCH MODELS
// ============================================================================

type SearchResultType string

const (
	SearchResultEvent   SearchResultType = "event"
	SearchResultContact SearchResultType = "contact"
)

type SearchFilters struct {
	Types []SearchResultType `json:"types,omitempty" form:"types"`
	Limit int                `json:"limit,omitempty" form:"limit"`
}

type SearchResult struct {
	ID        string           `json:"id"`
	Type      SearchResultType `json:"type"`
	Title     string           `json:"title"`
	Subtitle  string           `json:"subtitle,omitempty"`
	Score     int              `json:"score"`
	CreatedAt time.Time        `json:"created_at"`
}

type RecentSearch struct {
	Query      string    `json:"query"`
	SearchedAt time.Time `json:"searched_at"`
}
