package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"partypass-api/config"
	"partypass-api/handlers"
	"partypass-api/middleware"
	"partypass-api/models"
	"partypass-api/routes"
	"partypass-api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	log.Println("✅ Database connected successfully")

	if err := config.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	email := services.NewEmailService(
		os.Getenv("RESEND_API_KEY"),
		os.Getenv("FROM_EMAIL"),
		os.Getenv("FRONTEND_URL"),
	)
	deps := routes.NewServices(db, email)

	scheduler := startScheduler(db, deps)
	defer scheduler.Stop()

	wsHandler := handlers.NewWSHandler()
	deps.Notifications.SetBroadcast(func(userID string, n *models.Notification) {
		wsHandler.BroadcastToUser(userID, "notification", n)
	})

	router := gin.Default()

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	allowedOrigins := []string{
		frontendURL,
		"https://partypass.app",
		"https://www.partypass.app",
	}

	log.Printf("🌍 CORS: Allowing origins:")
	for _, origin := range allowedOrigins {
		log.Printf("   - %s", origin)
	}

	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		log.Printf("📨 %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
		c.Next()
		duration := time.Since(start)
		log.Printf("✅ %s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	})

	router.Use(middleware.RateLimiter())

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, db)
		routes.SetupRSVPRoutes(v1, deps.Guests, wsHandler)
		v1.GET("/ws", wsHandler.HandleWS)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.SetupEventRoutes(protected, db, deps, wsHandler)
			routes.SetupContactRoutes(protected, deps)
			routes.SetupSearchRoutes(protected, deps)
			routes.SetupAnalyticsRoutes(protected, deps)
			routes.SetupNotificationRoutes(protected, deps)
			routes.SetupUserRoutes(protected, db)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server starting on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// startScheduler runs the background cleanups: expired notifications and
// stale recent searches hourly, dead sessions daily.
func startScheduler(db *sql.DB, deps *routes.Services) *cron.Cron {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if n, err := deps.Notifications.DeleteExpired(ctx); err != nil {
			log.Printf("❌ Notification cleanup failed: %v", err)
		} else if n > 0 {
			log.Printf("🧹 Cleaned %d expired notifications", n)
		}

		if n, err := deps.Search.DeleteOldRecentSearches(ctx); err != nil {
			log.Printf("❌ Recent search cleanup failed: %v", err)
		} else if n > 0 {
			log.Printf("🧹 Cleaned %d stale recent searches", n)
		}
	})

	c.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
		if err != nil {
			log.Printf("❌ Session cleanup failed: %v", err)
			return
		}
		if rows, _ := result.RowsAffected(); rows > 0 {
			log.Printf("🧹 Cleaned %d expired sessions", rows)
		}
	})

	c.Start()
	return c
}
