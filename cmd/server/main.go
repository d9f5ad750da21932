package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/orientanurag/upnext-mvp/docs"
	"github.com/orientanurag/upnext-mvp/internal/config"
	"github.com/orientanurag/upnext-mvp/internal/database"
	"github.com/orientanurag/upnext-mvp/internal/handlers"
	mW "github.com/orientanurag/upnext-mvp/internal/middleware"
	"github.com/orientanurag/upnext-mvp/internal/services"
	"github.com/orientanurag/upnext-mvp/internal/store"
)

// @title UpNext Auction API
// @version 1.0
// @description Live song-request auction: slots, bids and wallet ledger
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env
	viper.ReadInConfig()        // read .env file

	viper.SetEnvPrefix("")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("store.driver", "STORE_DRIVER")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("public.base_url", "PUBLIC_BASE_URL")
	viper.BindEnv("auction.min_bid_amount", "AUCTION_MIN_BID_AMOUNT")
	viper.BindEnv("auction.max_bids_per_slot", "AUCTION_MAX_BIDS_PER_SLOT")
	viper.BindEnv("music.base_url", "MUSIC_BASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "UpNext Auction API"
	docs.SwaggerInfo.Description = "Live song-request auction: slots, bids and wallet ledger"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	auctionCfg := config.LoadAuctionConfig()
	musicCfg := config.LoadMusicConfig()
	publicCfg := config.LoadPublicConfig()

	// Store backend: postgres for deployments, memory for pop-up events and dev.
	viper.SetDefault("store.driver", "memory")
	var st store.Store
	switch driver := viper.GetString("store.driver"); driver {
	case "postgres":
		db := database.InitDatabase()
		defer db.Close()
		st = store.NewPostgresStore(db)
		log.Println("[STORE] Using postgres store")
	default:
		st = store.NewMemoryStore()
		log.Println("[STORE] Using in-memory store")
	}

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize services
	broadcaster := services.NewBroadcaster(redisClient)
	slotService := services.NewSlotService(st, auctionCfg)
	bidService := services.NewBidService(st, slotService, broadcaster, auctionCfg)
	walletService := services.NewWalletService(st)
	eventService := services.NewEventService(st, slotService, bidService)
	expiryService := services.NewExpiryService(st, bidService, slotService, broadcaster)
	musicService := services.NewMusicService(redisClient, musicCfg)
	authService := services.NewAuthService(config.LoadOperators())

	broadcaster.SetSnapshotFunc(eventService.Snapshot)
	slotService.SetRotateFunc(expiryService.Rotate)
	defer slotService.StopRotation()

	// Background sweep catches slots the rotation timer missed.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go expiryService.Run(sweepCtx, auctionCfg.SweepInterval)

	// Rearm the rotation timer if an event was already live before a restart.
	if event, err := eventService.Active(context.Background()); err == nil {
		if err := slotService.ScheduleRotation(context.Background(), event.ID); err != nil {
			log.Printf("[SLOTS] Failed to arm rotation for event %s: %v", event.ID, err)
		}
	}

	bidHandler := handlers.NewBidHandler(bidService)
	walletHandler := handlers.NewWalletHandler(walletService)
	slotHandler := handlers.NewSlotHandler(slotService, bidService, expiryService)
	eventHandler := handlers.NewEventHandler(eventService, slotService, publicCfg)
	musicHandler := handlers.NewMusicHandler(musicService)
	wsHandler := handlers.NewWSHandler(broadcaster)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Realtime stream (websocket upgrades bypass the timeout middleware)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/ws", wsHandler.Serve)
	})

	// Screen and guest pages
	r.Handle("/static/*", http.StripPrefix("/static/",
		mW.StaticFileServer("./static")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/login", authService.Login)

		r.Get("/events/active", eventHandler.GetActiveEvent)
		r.Get("/events/{eventId}", eventHandler.GetEvent)
		r.Get("/events/{eventId}/qr", eventHandler.GetJoinQR)
		r.Get("/events/{eventId}/leaderboard", bidHandler.GetLeaderboard)
		r.Get("/events/{eventId}/slots/current", slotHandler.GetCurrentSlot)
		r.Get("/events/{eventId}/slots/upcoming", slotHandler.GetUpcomingSlots)
		r.Get("/slots/{slotId}/bids", slotHandler.GetTopBids)

		r.Post("/bids", bidHandler.CreateBid)
		r.Get("/bids", bidHandler.ListBids)

		r.Post("/wallet/funds", walletHandler.AddFunds)
		r.Get("/wallet/balance", walletHandler.GetBalance)
		r.Get("/wallet/transactions", walletHandler.GetTransactions)

		r.Get("/music/search", musicHandler.SearchTracks)

		// Operator endpoints (DJ or admin token required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)
			r.Use(mW.RequireOperator)

			r.Post("/events", eventHandler.CreateEvent)
			r.Post("/events/{eventId}/slots", eventHandler.GenerateSlots)
			r.Post("/events/{eventId}/activate", eventHandler.ActivateEvent)
			r.Post("/events/{eventId}/slots/next", slotHandler.ForceNextSlot)
			r.Get("/events/{eventId}/statistics", slotHandler.GetStatistics)

			r.Put("/bids/{bidId}/status", bidHandler.SetBidStatus)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
