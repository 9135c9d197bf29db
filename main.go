// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cardlink/api/analytics"
	"cardlink/api/database"
	"cardlink/api/handlers"
	"cardlink/api/middleware"
	"cardlink/api/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize PostgreSQL (client accounts + profile catalog) ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- Initialize ClickHouse (interaction events) ---
	chClient, err := database.NewClickHouseDB()
	if err != nil {
		log.Fatalf("Failed to initialize ClickHouse database: %v", err)
	}
	defer chClient.Close()

	// --- Initialize Redis (session-origin slots) ---
	redisClient, err := database.NewRedisClient()
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisClient.Close()

	// --- Initialize Stores ---
	clientStore := store.NewClientStore(dbClient.DB)
	profileStore := store.NewProfileStore(dbClient.DB)
	eventStore := store.NewEventStore(chClient)
	origins := analytics.NewOrigins(store.NewRedisOriginStore(redisClient))

	// --- Initialize Handlers ---
	authHandlers := handlers.NewAuthHandlers(clientStore)
	analyticsHandlers := handlers.NewAnalyticsHandlers(eventStore, profileStore, origins)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Authentication endpoints (no authentication required)
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		// Public tracking endpoints, hit by the profile pages themselves.
		api.POST("/track", analyticsHandlers.TrackEvent)
		api.POST("/session-origin", analyticsHandlers.CaptureOrigin)
		api.GET("/session-origin", analyticsHandlers.GetOrigin)

		// Dashboard routes (require a valid JWT token)
		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/profiles", analyticsHandlers.ListProfiles)

			statsGroup := protected.Group("/stats")
			{
				statsGroup.GET("/summary", analyticsHandlers.GetProfileSummary)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("CardLink API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("CardLink API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
