package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partypass-api/models"
)

func eventSearchColumns() []string {
	return []string{"id", "title", "description", "location", "status", "created_at", "date"}
}

func contactSearchColumns() []string {
	return []string{"id", "first_name", "last_name", "email", "phone", "created_at"}
}

func TestSearchBlankQuerySkipsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewSearchService(db, NewSearchCache())

	results, err := svc.Search(context.Background(), "user-1", "   ", models.SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchRanksTitleAboveDescription(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	old := time.Now().Add(-60 * 24 * time.Hour)
	mock.ExpectQuery("SELECT id, title").
		WithArgs("user-1", "%party%").
		WillReturnRows(sqlmock.NewRows(eventSearchColumns()).
			AddRow("e2", "Quiet dinner", "a small party afterwards", "Home", "draft", old, old).
			AddRow("e1", "Garden Party", "", "Backyard", "draft", old, old))
	mock.ExpectQuery("SELECT id, first_name").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(contactSearchColumns()))

	svc := NewSearchService(db, NewSearchCache())

	results, err := svc.Search(context.Background(), "user-1", "Party", models.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "e1", results[0].ID)
	assert.Equal(t, 10, results[0].Score)
	assert.Equal(t, "e2", results[1].ID)
	assert.Equal(t, 5, results[1].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchActiveEventOutranksDraft(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	old := time.Now().Add(-60 * 24 * time.Hour)
	mock.ExpectQuery("SELECT id, title").
		WithArgs("user-1", "%gala%").
		WillReturnRows(sqlmock.NewRows(eventSearchColumns()).
			AddRow("draft", "Gala Draft", "", "", "draft", old, old).
			AddRow("active", "Gala Night", "", "", "active", old, old))
	mock.ExpectQuery("SELECT id, first_name").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(contactSearchColumns()))

	svc := NewSearchService(db, NewSearchCache())

	results, err := svc.Search(context.Background(), "user-1", "gala", models.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "active", results[0].ID)
	assert.Equal(t, 13, results[0].Score)
	assert.Equal(t, "draft", results[1].ID)
	assert.Equal(t, 10, results[1].Score)
}

func TestSearchServedFromCacheOnRepeat(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	old := time.Now().Add(-60 * 24 * time.Hour)
	mock.ExpectQuery("SELECT id, title").
		WithArgs("user-1", "%bbq%").
		WillReturnRows(sqlmock.NewRows(eventSearchColumns()).
			AddRow("e1", "Summer BBQ", "", "Park", "draft", old, old))
	mock.ExpectQuery("SELECT id, first_name").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(contactSearchColumns()))

	cache := NewSearchCache()
	svc := NewSearchService(db, cache)

	first, err := svc.Search(context.Background(), "user-1", "bbq", models.SearchFilters{})
	require.NoError(t, err)

	// Same query again: the mock has no more expectations, so a second
	// database round would fail the test.
	second, err := svc.Search(context.Background(), "user-1", "BBQ", models.SearchFilters{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchCacheClearForcesFreshQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	old := time.Now().Add(-60 * 24 * time.Hour)
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT id, title").
			WithArgs("user-1", "%bbq%").
			WillReturnRows(sqlmock.NewRows(eventSearchColumns()).
				AddRow("e1", "Summer BBQ", "", "Park", "draft", old, old))
		mock.ExpectQuery("SELECT id, first_name").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows(contactSearchColumns()))
	}

	cache := NewSearchCache()
	svc := NewSearchService(db, cache)

	_, err = svc.Search(context.Background(), "user-1", "bbq", models.SearchFilters{})
	require.NoError(t, err)

	cache.Clear()

	_, err = svc.Search(context.Background(), "user-1", "bbq", models.SearchFilters{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchContactScoring(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	old := time.Now().Add(-60 * 24 * time.Hour)
	mock.ExpectQuery("SELECT id, first_name").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(contactSearchColumns()).
			AddRow("c1", "Anna", "Nowak", "anna@example.com", "123456", old).
			AddRow("c2", "Piotr", "Kowalski", "piotr.anna@example.com", "", old).
			AddRow("c3", "Marek", "Wiśniewski", "marek@example.com", "", old))

	svc := NewSearchService(db, NewSearchCache())

	results, err := svc.Search(context.Background(), "user-1", "anna", models.SearchFilters{
		Types: []models.SearchResultType{models.SearchResultContact},
	})
	require.NoError(t, err)

	// c3 matches nothing and is dropped entirely.
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].ID)
	assert.Equal(t, 18, results[0].Score) // name + email
	assert.Equal(t, "c2", results[1].ID)
	assert.Equal(t, 8, results[1].Score) // email only
}

func TestSearchSurvivesOneFailingDomain(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	old := time.Now().Add(-60 * 24 * time.Hour)
	mock.ExpectQuery("SELECT id, title").
		WithArgs("user-1", "%anna%").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectQuery("SELECT id, first_name").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(contactSearchColumns()).
			AddRow("c1", "Anna", "Nowak", "anna@example.com", "", old))

	svc := NewSearchService(db, NewSearchCache())

	results, err := svc.Search(context.Background(), "user-1", "anna", models.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ID)
}

func TestSuggestionsFromTitlesAndWords(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	old := time.Now().Add(-60 * 24 * time.Hour)
	mock.ExpectQuery("SELECT id, title").
		WithArgs("user-1", "%bir%").
		WillReturnRows(sqlmock.NewRows(eventSearchColumns()).
			AddRow("e1", "Birthday Bash", "", "", "draft", old, old).
			AddRow("e2", "Birthday Dinner", "", "", "draft", old, old))
	mock.ExpectQuery("SELECT id, first_name").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(contactSearchColumns()))

	svc := NewSearchService(db, NewSearchCache())

	suggestions, err := svc.Suggestions(context.Background(), "user-1", "Bir")
	require.NoError(t, err)
	assert.Equal(t, []string{"Birthday Bash", "Birthday", "Birthday Dinner"}, suggestions)
}

func TestSuggestionsBlankPartial(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewSearchService(db, NewSearchCache())

	suggestions, err := svc.Suggestions(context.Background(), "user-1", "  ")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

// ============================================================================
// CACHE BEHAVIOR
// ============================================================================

func TestSearchCacheExpiresLazily(t *testing.T) {
	now := time.Now()
	cache := NewSearchCache(
		WithCacheClock(func() time.Time { return now }),
		WithCacheLimits(50, 5*time.Minute),
	)

	cache.Set("k", []models.SearchResult{{ID: "e1"}})

	_, ok := cache.Get("k")
	assert.True(t, ok)

	now = now.Add(5*time.Minute + time.Second)

	_, ok = cache.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestSearchCacheEvictsOldestInserted(t *testing.T) {
	cache := NewSearchCache(WithCacheLimits(2, time.Hour))

	cache.Set("a", nil)
	cache.Set("b", nil)

	// A read must not refresh a key's eviction position.
	cache.Get("a")

	cache.Set("c", nil)

	_, ok := cache.Get("a")
	assert.False(t, ok, "oldest inserted key should be evicted")
	_, ok = cache.Get("b")
	assert.True(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
}

func TestSearchCacheOverwriteKeepsPosition(t *testing.T) {
	cache := NewSearchCache(WithCacheLimits(2, time.Hour))

	cache.Set("a", nil)
	cache.Set("b", nil)
	cache.Set("a", []models.SearchResult{{ID: "fresh"}})
	cache.Set("c", nil)

	// "a" kept its original slot at the front of the queue, so it is the
	// one evicted, not "b".
	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.True(t, ok)
}

// ============================================================================
// RECENT SEARCHES
// ============================================================================

func TestSaveRecentSearchUpsertsAndTrims(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO recent_searches").
		WithArgs("user-1", "garden party").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM recent_searches").
		WithArgs("user-1", recentSearchMax).
		WillReturnResult(sqlmock.NewResult(0, 0))

	svc := NewSearchService(db, NewSearchCache())

	require.NoError(t, svc.SaveRecentSearch(context.Background(), "user-1", "  garden party "))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRecentSearchFailureClearsList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO recent_searches").
		WithArgs("user-1", "party").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectExec("DELETE FROM recent_searches").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	svc := NewSearchService(db, NewSearchCache())

	err = svc.SaveRecentSearch(context.Background(), "user-1", "party")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRecentSearchIgnoresBlank(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewSearchService(db, NewSearchCache())

	require.NoError(t, svc.SaveRecentSearch(context.Background(), "user-1", "   "))
	assert.NoError(t, mock.ExpectationsWereMet())
}
