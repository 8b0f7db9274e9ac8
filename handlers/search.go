package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"partypass-api/middleware"
	"partypass-api/models"
	"partypass-api/services"
)

type SearchHandler struct {
	Search *services.SearchService
}

func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{Search: search}
}

// GetSearch answers ?q=...&types=event,contact&limit=N.
func (h *SearchHandler) GetSearch(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	query := c.Query("q")
	filters := models.SearchFilters{}
	if limit := c.Query("limit"); limit != "" {
		filters.Limit, _ = strconv.Atoi(limit)
	}
	for _, t := range c.QueryArray("types") {
		switch models.SearchResultType(t) {
		case models.SearchResultEvent, models.SearchResultContact:
			filters.Types = append(filters.Types, models.SearchResultType(t))
		}
	}

	results, err := h.Search.Search(c.Request.Context(), userID, query, filters)
	if err != nil {
		log.Printf("Error searching: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	if len(results) > 0 {
		if err := h.Search.SaveRecentSearch(c.Request.Context(), userID, query); err != nil {
			log.Printf("⚠️ Failed to save recent search: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *SearchHandler) GetSuggestions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	suggestions, err := h.Search.Suggestions(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		log.Printf("Error getting suggestions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *SearchHandler) GetRecentSearches(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	searches, err := h.Search.RecentSearches(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error fetching recent searches: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent searches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"searches": searches})
}

func (h *SearchHandler) ClearRecentSearches(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.Search.ClearRecentSearches(c.Request.Context(), userID); err != nil {
		log.Printf("Error clearing recent searches: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear recent searches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recent searches cleared"})
}
