package routes

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"partypass-api/handlers"
	"partypass-api/middleware"
	"partypass-api/services"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, db *sql.DB) {
	authHandler := &handlers.AuthHandler{DB: db}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
	rg.POST("/auth/refresh", authHandler.Refresh)
	rg.POST("/auth/logout", authHandler.Logout)
}

// SetupRSVPRoutes sets up the public invitation routes. Guests reach these
// through the token in their email, no account needed.
func SetupRSVPRoutes(rg *gin.RouterGroup, guests *services.GuestService, ws *handlers.WSHandler) {
	h := handlers.NewGuestHandler(nil, guests, nil, ws)

	rg.GET("/rsvp/:token", h.GetRSVP)
	rg.POST("/rsvp/:token", h.RespondRSVP)
}

// SetupEventRoutes sets up protected event and nested guest routes.
func SetupEventRoutes(rg *gin.RouterGroup, db *sql.DB, deps *Services, ws *handlers.WSHandler) {
	eventHandler := handlers.NewEventHandler(deps.Events, ws)
	guestHandler := handlers.NewGuestHandler(db, deps.Guests, deps.Email, ws)

	rg.GET("/events", eventHandler.GetEvents)
	rg.POST("/events", eventHandler.CreateEvent)
	rg.GET("/events/:id", eventHandler.GetEvent)
	rg.PUT("/events/:id", eventHandler.UpdateEvent)
	rg.DELETE("/events/:id", eventHandler.DeleteEvent)

	rg.GET("/events/:id/guests", guestHandler.GetGuests)
	rg.POST("/events/:id/guests", guestHandler.CreateGuest)
	rg.PUT("/events/:id/guests/:guest_id", guestHandler.UpdateGuest)
	rg.DELETE("/events/:id/guests/:guest_id", guestHandler.DeleteGuest)
}

// SetupContactRoutes sets up protected contact routes, including CSV
// import/export.
func SetupContactRoutes(rg *gin.RouterGroup, deps *Services) {
	h := handlers.NewContactHandler(deps.Contacts)

	rg.GET("/contacts", h.GetContacts)
	rg.POST("/contacts", h.CreateContact)
	rg.PUT("/contacts/:id", h.UpdateContact)
	rg.DELETE("/contacts/:id", h.DeleteContact)

	rg.GET("/contacts/export", h.ExportContacts)
	rg.POST("/contacts/import", h.ImportContacts)
}

// SetupSearchRoutes sets up protected search routes behind the per-user
// search throttle.
func SetupSearchRoutes(rg *gin.RouterGroup, deps *Services) {
	h := handlers.NewSearchHandler(deps.Search)

	search := rg.Group("/search")
	search.Use(middleware.SearchRateLimiter())
	{
		search.GET("", h.GetSearch)
		search.GET("/suggestions", h.GetSuggestions)
	}

	rg.GET("/search/recent", h.GetRecentSearches)
	rg.DELETE("/search/recent", h.ClearRecentSearches)
}

// SetupAnalyticsRoutes sets up the protected analytics route.
func SetupAnalyticsRoutes(rg *gin.RouterGroup, deps *Services) {
	h := handlers.NewAnalyticsHandler(deps.Analytics)

	rg.GET("/analytics", h.GetReport)
}

// SetupNotificationRoutes sets up protected notification and activity routes.
func SetupNotificationRoutes(rg *gin.RouterGroup, deps *Services) {
	h := handlers.NewNotificationHandler(deps.Notifications, deps.Activities)

	rg.GET("/notifications", h.GetNotifications)
	rg.PUT("/notifications/read-all", h.MarkAllRead)
	rg.PUT("/notifications/:id/read", h.MarkRead)
	rg.DELETE("/notifications/:id", h.DeleteNotification)

	rg.GET("/activities", h.GetActivities)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, db *sql.DB) {
	userHandler := &handlers.UserHandler{DB: db}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", userHandler.UpdateProfile)
	rg.POST("/user/password", userHandler.ChangePassword)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
	rg.DELETE("/user/account", userHandler.DeleteAccount)
}

// Services bundles the service layer so route setup stays one wiring site.
type Services struct {
	Activities    *services.ActivityService
	Notifications *services.NotificationService
	Events        *services.EventService
	Guests        *services.GuestService
	Contacts      *services.ContactService
	Search        *services.SearchService
	Analytics     *services.AnalyticsService
	Email         *services.EmailService
}

// NewServices wires the full service layer against one database handle.
func NewServices(db *sql.DB, email *services.EmailService) *Services {
	cache := services.NewSearchCache()
	activities := services.NewActivityService(db)
	notifications := services.NewNotificationService(db)

	return &Services{
		Activities:    activities,
		Notifications: notifications,
		Events:        services.NewEventService(db, cache, activities, notifications),
		Guests:        services.NewGuestService(db, activities, notifications),
		Contacts:      services.NewContactService(db, activities),
		Search:        services.NewSearchService(db, cache),
		Analytics:     services.NewAnalyticsService(db),
		Email:         email,
	}
}
