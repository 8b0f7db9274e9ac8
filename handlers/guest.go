package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"partypass-api/middleware"
	"partypass-api/models"
	"partypass-api/services"
	"partypass-api/utils"
)

type GuestHandler struct {
	DB     *sql.DB
	Guests *services.GuestService
	Email  *services.EmailService
	WS     *WSHandler
}

func NewGuestHandler(db *sql.DB, guests *services.GuestService, email *services.EmailService, ws *WSHandler) *GuestHandler {
	return &GuestHandler{DB: db, Guests: guests, Email: email, WS: ws}
}

func (h *GuestHandler) GetGuests(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	guests, err := h.Guests.ListByEvent(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		log.Printf("Error listing guests: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch guests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guests": guests})
}

// CreateGuest invites a guest to an event. The invitation email is
// best-effort: a mail failure never rolls back the guest.
func (h *GuestHandler) CreateGuest(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventID := c.Param("id")
	guest, err := h.Guests.Create(c.Request.Context(), userID, eventID, req)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if err != nil {
		log.Printf("Error creating guest: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create guest"})
		return
	}

	var hostName, eventTitle string
	err = h.DB.QueryRow(`
		SELECT u.name, e.title
		FROM events e
		JOIN users u ON e.user_id = u.id
		WHERE e.id = $1
	`, eventID).Scan(&hostName, &eventTitle)
	if err == nil {
		if mailErr := h.Email.SendGuestInvitation(c.Request.Context(),
			guest.Email, guest.Name, hostName, eventTitle, guest.RSVPToken); mailErr != nil {
			utils.SafeWarn("invitation email to %s failed: %v", guest.Email, mailErr)
		}
	}

	h.WS.BroadcastToUser(userID, "guest_added", guest)
	c.JSON(http.StatusCreated, guest)
}

func (h *GuestHandler) UpdateGuest(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guest, err := h.Guests.Update(c.Request.Context(), c.Param("guest_id"), userID, req)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
		return
	}
	if err != nil {
		log.Printf("Error updating guest: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update guest"})
		return
	}

	h.WS.BroadcastToUser(userID, "guest_updated", guest)
	c.JSON(http.StatusOK, guest)
}

func (h *GuestHandler) DeleteGuest(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	guestID := c.Param("guest_id")
	err := h.Guests.Delete(c.Request.Context(), guestID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
		return
	}
	if err != nil {
		log.Printf("Error deleting guest: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete guest"})
		return
	}

	h.WS.BroadcastToUser(userID, "guest_removed", gin.H{"id": guestID})
	c.JSON(http.StatusOK, gin.H{"message": "Guest removed successfully"})
}

// ============================================================================
// PUBLIC RSVP ENDPOINTS (no auth, token in the URL)
// ============================================================================

func (h *GuestHandler) GetRSVP(c *gin.Context) {
	view, err := h.Guests.GetByToken(c.Request.Context(), c.Param("token"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}
	if err != nil {
		log.Printf("Error fetching RSVP: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invitation"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *GuestHandler) RespondRSVP(c *gin.Context) {
	var req models.RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guest, err := h.Guests.RespondByToken(c.Request.Context(), c.Param("token"), req)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}
	if err != nil {
		log.Printf("Error recording RSVP: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to record response"})
		return
	}

	h.WS.BroadcastToUser(guest.UserID, "guest_responded", guest)
	c.JSON(http.StatusOK, gin.H{
		"message": "Response recorded",
		"status":  guest.Status,
	})
}
