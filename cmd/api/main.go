package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"newsbag/db"
	"newsbag/internal/config"
	"newsbag/internal/handler"
	"newsbag/internal/repository"
	"newsbag/internal/service"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	err = db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectLedger()
	if err != nil {
		log.Fatalf("error opening subscription ledger: %v", err)
	}
	defer db.CloseLedger()

	articleRepo := repository.NewArticleRepository(db.DB)
	if err := articleRepo.EnsureSchema(); err != nil {
		log.Fatalf("error ensuring article schema: %v", err)
	}

	subRepo := repository.NewSubscriptionRepository(db.Ledger)
	if err := subRepo.EnsureSchema(); err != nil {
		log.Fatalf("error ensuring ledger schema: %v", err)
	}

	core := service.New(subRepo, articleRepo, cfg.Tickers, cfg.DigestLimit)
	h := handler.New(core, articleRepo, cfg.DigestHours)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.POST("/subscriptions", h.PostSubscription)
	r.DELETE("/subscriptions/:ticker", h.DeleteSubscription)
	r.GET("/subscriptions", h.GetSubscriptions)
	r.GET("/digest", h.GetDigest)
	r.GET("/rankings", h.GetRankings)
	r.GET("/feed", h.GetFeed)
	r.GET("/health", h.GetHealth)

	err = r.Run(":8080")
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
