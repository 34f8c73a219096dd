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

	"yeniliko/api/dashboard"
	"yeniliko/api/database"
	"yeniliko/api/handlers"
	"yeniliko/api/middleware"
	"yeniliko/api/store"
	"yeniliko/api/tracker"
	"yeniliko/api/utils"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- PostgreSQL (users + presence) ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- ClickHouse (activity event log) ---
	chClient, err := database.NewClickHouseDB()
	if err != nil {
		log.Fatalf("Failed to initialize ClickHouse database: %v", err)
	}
	defer chClient.Close()

	// --- Redis (cart snapshots) ---
	redisClient, err := database.NewRedisClient()
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisClient.Close()

	// --- Stores ---
	userStore := store.NewUserStore(dbClient.DB)
	activityStore := store.NewActivityStore(chClient)
	presenceStore := store.NewPresenceStore(dbClient.DB)
	cartStore := store.NewCartStore(redisClient)

	// --- Tracking ---
	trackers := tracker.NewManager(tracker.ManagerConfig{
		Activities: activityStore,
		Presence:   presenceStore,
	})
	trackerService := tracker.NewService(activityStore, presenceStore, cartStore)

	// Clients that vanish without a logout leave their sessions behind;
	// the reaper ends anything idle past the JWT lifetime.
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	trackers.StartReaper(reaperCtx, time.Hour, utils.TokenLifetime)

	// Shared poller backing the online-users dashboard widget.
	onlinePoller := dashboard.NewPoller("online-users", dashboard.DefaultInterval, func(ctx context.Context) (any, error) {
		return trackerService.GetOnlineUsers(ctx), nil
	})
	onlinePoller.Start(context.Background())
	defer onlinePoller.Stop()

	// --- Handlers ---
	authHandlers := handlers.NewAuthHandlers(userStore, trackers)
	trackHandlers := handlers.NewTrackHandlers(trackers)
	cartHandlers := handlers.NewCartHandlers(cartStore, trackers)
	adminHandlers := handlers.NewAdminHandlers(trackerService, userStore, onlinePoller)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			track := protected.Group("/track")
			{
				track.POST("", trackHandlers.TrackEvent)
				track.POST("/navigation", trackHandlers.TrackNavigation)
				track.POST("/visibility", trackHandlers.TrackVisibility)
				track.POST("/unload", trackHandlers.TrackUnload)
			}

			cart := protected.Group("/cart")
			{
				cart.GET("", cartHandlers.GetCart)
				cart.POST("/add", cartHandlers.AddItem)
				cart.POST("/remove", cartHandlers.RemoveItem)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminRequired())
			{
				admin.GET("/online-users", adminHandlers.GetOnlineUsers)
				admin.GET("/users/:id/session", adminHandlers.GetUserSession)
				admin.GET("/users/:id/activities", adminHandlers.GetUserActivities)
				admin.GET("/activities", adminHandlers.GetAllActivities)
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
		log.Printf("Go API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Go API server failed to start: %v", err)
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
