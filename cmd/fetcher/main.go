package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"newsbag/db"
	"newsbag/internal/config"
	"newsbag/internal/ingest"
	"newsbag/internal/repository"
	"newsbag/pkg/feed"
)

// matchQueue adapts the Redis list to the runner's queue port.
type matchQueue struct{}

func (matchQueue) Push(id string) error {
	return db.PushToQueue(db.MatchQueueKey, id)
}

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

	err = db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	repo := repository.NewArticleRepository(db.DB)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatalf("error ensuring schema: %v", err)
	}

	var sources []feed.Source
	for _, f := range cfg.Feeds {
		sources = append(sources, feed.NewRSSClient(f.Name, f.URL))
	}
	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		sources = append(sources, feed.NewFinnhubClient(key))
	}

	if len(sources) == 0 {
		slog.Error("no feed sources configured")
		return
	}

	// One pass per invocation; the scheduler (cron, systemd timer) decides
	// when to run again.
	runner := ingest.NewRunner(sources, repo, matchQueue{}, 50)
	stats := runner.Run()

	slog.Info("ingestion run complete", "saved", stats.Saved, "duplicated", stats.Duplicated, "errors", stats.Errors)
}
