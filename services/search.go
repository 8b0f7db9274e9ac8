package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"partypass-api/models"
	"partypass-api/utils"
)

const (
	searchCacheTTL     = 5 * time.Minute
	searchCacheMax     = 50
	defaultSearchLimit = 20
	suggestionFetch    = 20
	suggestionMax      = 5
	recentSearchMax    = 10
	recencyBoostWindow = 30 * 24 * time.Hour
)

// Relevance weights. These are a behavioral contract with the dashboard
// ordering; do not tune them without changing the clients too.
const (
	scoreEventTitle       = 10
	scoreEventDescription = 5
	scoreEventLocation    = 3
	scoreContactName      = 10
	scoreContactEmail     = 8
	scoreContactPhone     = 6
	scoreRecency          = 2
	scoreActiveEvent      = 3
)

// ============================================================================
// SEARCH CACHE
// ============================================================================

// SearchCache is a TTL- and size-bounded cache of search responses. Expiry is
// checked lazily on read; when the entry cap is exceeded the oldest-INSERTED
// key is evicted (FIFO, not LRU — reads do not refresh a key's position).
type SearchCache struct {
	mu      sync.Mutex
	entries map[string]*searchCacheEntry
	order   []string // insertion order, oldest first
	max     int
	ttl     time.Duration
	now     func() time.Time
}

type searchCacheEntry struct {
	results  []models.SearchResult
	storedAt time.Time
}

type SearchCacheOption func(*SearchCache)

// WithCacheClock substitutes the time source, for deterministic expiry tests.
func WithCacheClock(now func() time.Time) SearchCacheOption {
	return func(c *SearchCache) {
		c.now = now
	}
}

// WithCacheLimits overrides the entry cap and freshness window.
func WithCacheLimits(max int, ttl time.Duration) SearchCacheOption {
	return func(c *SearchCache) {
		c.max = max
		c.ttl = ttl
	}
}

func NewSearchCache(opts ...SearchCacheOption) *SearchCache {
	cache := &SearchCache{
		entries: make(map[string]*searchCacheEntry),
		max:     searchCacheMax,
		ttl:     searchCacheTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Get returns the cached results for key if present and still fresh.
func (c *SearchCache) Get(key string) ([]models.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.removeLocked(key)
		return nil, false
	}
	return entry.results, true
}

// Set stores results under key. Overwriting an existing key keeps its
// original insertion position.
func (c *SearchCache) Set(key string, results []models.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
		if len(c.order) > c.max {
			c.removeLocked(c.order[0])
		}
	}
	c.entries[key] = &searchCacheEntry{results: results, storedAt: c.now()}
}

// Clear empties the cache. Called by event mutation paths so writes are
// never shadowed by stale search results.
func (c *SearchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*searchCacheEntry)
	c.order = c.order[:0]
}

func (c *SearchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *SearchCache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// ============================================================================
// SEARCH SERVICE
// ============================================================================

type SearchService struct {
	db    *sql.DB
	cache *SearchCache
}

func NewSearchService(db *sql.DB, cache *SearchCache) *SearchService {
	return &SearchService{db: db, cache: cache}
}

// Search runs a ranked cross-domain search for a user. A blank query returns
// an empty slice without touching the database. Each result domain is
// guarded independently: if one fails it contributes zero results and the
// other still answers.
func (s *SearchService) Search(ctx context.Context, userID, query string, filters models.SearchFilters) ([]models.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []models.SearchResult{}, nil
	}

	normalized := strings.ToLower(trimmed)
	limit := filters.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	types := filters.Types
	if len(types) == 0 {
		types = []models.SearchResultType{models.SearchResultEvent, models.SearchResultContact}
	}

	key := cacheKey(userID, normalized, types, limit)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	now := time.Now()
	var results []models.SearchResult

	for _, t := range types {
		switch t {
		case models.SearchResultEvent:
			events, err := s.searchEvents(ctx, userID, normalized, now)
			if err != nil {
				utils.SafeWarn("event search failed for query %q: %v", normalized, err)
				continue
			}
			results = append(results, events...)
		case models.SearchResultContact:
			contacts, err := s.searchContacts(ctx, userID, normalized, now)
			if err != nil {
				utils.SafeWarn("contact search failed for query %q: %v", normalized, err)
				continue
			}
			results = append(results, contacts...)
		}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	s.cache.Set(key, results)
	return results, nil
}

func cacheKey(userID, normalized string, types []models.SearchResultType, limit int) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return fmt.Sprintf("%s|%s|%s|%d", userID, normalized, strings.Join(parts, ","), limit)
}

func (s *SearchService) searchEvents(ctx context.Context, userID, query string, now time.Time) ([]models.SearchResult, error) {
	sqlQuery := `
		SELECT id, title, COALESCE(description, ''), COALESCE(location, ''), status, created_at, date
		FROM events
		WHERE user_id = $1
		  AND (title ILIKE $2 OR description ILIKE $2 OR location ILIKE $2)
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, sqlQuery, userID, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var id, title, description, location string
		var status models.EventStatus
		var createdAt, date time.Time
		if err := rows.Scan(&id, &title, &description, &location, &status, &createdAt, &date); err != nil {
			return nil, err
		}

		score := 0
		if strings.Contains(strings.ToLower(title), query) {
			score += scoreEventTitle
		}
		if strings.Contains(strings.ToLower(description), query) {
			score += scoreEventDescription
		}
		if strings.Contains(strings.ToLower(location), query) {
			score += scoreEventLocation
		}
		if now.Sub(createdAt) < recencyBoostWindow {
			score += scoreRecency
		}
		if status == models.EventStatusActive {
			score += scoreActiveEvent
		}

		subtitle := location
		if subtitle == "" {
			subtitle = date.Format("2006-01-02")
		}

		results = append(results, models.SearchResult{
			ID:        id,
			Type:      models.SearchResultEvent,
			Title:     title,
			Subtitle:  subtitle,
			Score:     score,
			CreatedAt: createdAt,
		})
	}

	return results, rows.Err()
}

// searchContacts fetches the user's contacts and filters client-side, the way
// the original did against its document store (no text index on contacts).
func (s *SearchService) searchContacts(ctx context.Context, userID, query string, now time.Time) ([]models.SearchResult, error) {
	sqlQuery := `
		SELECT id, first_name, COALESCE(last_name, ''), COALESCE(email, ''), COALESCE(phone, ''), created_at
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, sqlQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var id, firstName, lastName, email, phone string
		var createdAt time.Time
		if err := rows.Scan(&id, &firstName, &lastName, &email, &phone, &createdAt); err != nil {
			return nil, err
		}

		fullName := strings.TrimSpace(firstName + " " + lastName)

		score := 0
		if strings.Contains(strings.ToLower(fullName), query) {
			score += scoreContactName
		}
		if strings.Contains(strings.ToLower(email), query) {
			score += scoreContactEmail
		}
		if strings.Contains(strings.ToLower(phone), query) {
			score += scoreContactPhone
		}
		if score == 0 {
			continue
		}
		if now.Sub(createdAt) < recencyBoostWindow {
			score += scoreRecency
		}

		results = append(results, models.SearchResult{
			ID:        id,
			Type:      models.SearchResultContact,
			Title:     fullName,
			Subtitle:  email,
			Score:     score,
			CreatedAt: createdAt,
		})
	}

	return results, rows.Err()
}

// Suggestions derives autocomplete entries from a wider search: distinct
// whole-word prefixes plus full titles matching the partial query.
func (s *SearchService) Suggestions(ctx context.Context, userID, partial string) ([]string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(partial))
	if trimmed == "" {
		return []string{}, nil
	}

	results, err := s.Search(ctx, userID, trimmed, models.SearchFilters{Limit: suggestionFetch})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	suggestions := []string{}
	add := func(s string) {
		key := strings.ToLower(s)
		if !seen[key] && len(suggestions) < suggestionMax {
			seen[key] = true
			suggestions = append(suggestions, s)
		}
	}

	for _, r := range results {
		if strings.HasPrefix(strings.ToLower(r.Title), trimmed) {
			add(r.Title)
		}
		for _, word := range strings.Fields(r.Title) {
			if strings.HasPrefix(strings.ToLower(word), trimmed) {
				add(word)
			}
		}
	}

	return suggestions, nil
}

// ============================================================================
// RECENT SEARCHES (persisted, survive reload)
// ============================================================================

// SaveRecentSearch records a query in the user's most-recently-used list:
// deduplicated, newest first, capped. A write failure clears the user's
// whole list rather than leaving it partially updated.
func (s *SearchService) SaveRecentSearch(ctx context.Context, userID, query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}

	upsert := `
		INSERT INTO recent_searches (user_id, query, searched_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, query) DO UPDATE SET searched_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, upsert, userID, trimmed); err != nil {
		utils.SafeWarn("recent search write failed, clearing list: %v", err)
		s.db.ExecContext(ctx, `DELETE FROM recent_searches WHERE user_id = $1`, userID)
		return err
	}

	trim := `
		DELETE FROM recent_searches
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM recent_searches
			WHERE user_id = $1
			ORDER BY searched_at DESC
			LIMIT $2
		)
	`
	_, err := s.db.ExecContext(ctx, trim, userID, recentSearchMax)
	return err
}

func (s *SearchService) RecentSearches(ctx context.Context, userID string) ([]models.RecentSearch, error) {
	query := `
		SELECT query, searched_at
		FROM recent_searches
		WHERE user_id = $1
		ORDER BY searched_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, recentSearchMax)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	searches := []models.RecentSearch{}
	for rows.Next() {
		var rs models.RecentSearch
		if err := rows.Scan(&rs.Query, &rs.SearchedAt); err != nil {
			return nil, err
		}
		searches = append(searches, rs)
	}

	return searches, rows.Err()
}

func (s *SearchService) ClearRecentSearches(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recent_searches WHERE user_id = $1`, userID)
	return err
}

// DeleteOldRecentSearches drops entries older than 24h. Run from the cron job.
func (s *SearchService) DeleteOldRecentSearches(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM recent_searches WHERE searched_at < NOW() - INTERVAL '24 hours'`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
