package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/vidtube/vidtube-backend/internal/config"
	"github.com/vidtube/vidtube-backend/internal/database"
	"github.com/vidtube/vidtube-backend/internal/handlers"
	"github.com/vidtube/vidtube-backend/internal/repo"
	"github.com/vidtube/vidtube-backend/internal/routes"
	"github.com/vidtube/vidtube-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Token secrets are mandatory; refusing to start beats signing with a
	// default secret.
	tokens, err := services.NewTokenService(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenExpiry,
		cfg.RefreshTokenExpiry,
	)
	if err != nil {
		log.Fatal("Token service misconfigured: ", err)
	}

	media, err := services.NewMediaService(
		cfg.CloudinaryName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
		"vidtube",
	)
	if err != nil {
		log.Fatal("Failed to initialize Cloudinary: ", err)
	}

	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer database.Disconnect()

	if err := database.EnsureUserIndexes(context.Background()); err != nil {
		log.Fatal("Failed to ensure user indexes: ", err)
	}

	// Redis only backs the channel-profile cache; run without it if absent.
	if cfg.RedisURI != "" {
		if err := database.ConnectRedis(cfg.RedisURI); err != nil {
			log.Printf("Warning: Redis unavailable, read-model caching disabled: %v", err)
		} else {
			defer database.DisconnectRedis()
		}
	}

	users := repo.NewMongoUserRepo(database.DB)
	sessions := services.NewSessionService(users, tokens, media)
	profiles := services.NewProfileService(users, media)
	cache := services.NewCacheService(database.RedisClient)
	channels := services.NewChannelService(database.DB, cache)

	authHandler := handlers.NewAuthHandler(sessions, cfg)
	profileHandler := handlers.NewProfileHandler(profiles, cfg)
	channelHandler := handlers.NewChannelHandler(channels)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, tokens, authHandler, profileHandler, channelHandler)

	log.Printf("vidtube backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
