package main

import (
	"errors"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"newsbag/db"
	"newsbag/internal/config"
	"newsbag/internal/ingest"
	"newsbag/internal/match"
	"newsbag/internal/model"
	"newsbag/internal/repository"
	"newsbag/pkg/llm"
)

const maxRetries = 3
const popTimeout = 30 * time.Second

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	err = db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	err = db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	repo := repository.NewArticleRepository(db.DB)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatalf("error ensuring schema: %v", err)
	}

	var analyzer llm.Analyzer
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		analyzer = llm.NewOpenAIClient(key)
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		analyzer = llm.NewAnthropicClient(key)
	} else {
		slog.Info("no analyzer API key configured, rule-based matching only")
	}

	tagger := ingest.NewTagger(repo, match.New(cfg.Tickers), analyzer)

	for {
		id, err := db.PopFromQueue(db.MatchQueueKey, popTimeout)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			slog.Error("error popping from match queue", "error", err)
			break
		}

		rawID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			slog.Error("invalid article id in queue", "id", id, "error", err)
			continue
		}

		errorCount, err := repo.GetErrorCount(rawID)
		if err != nil {
			slog.Error("error getting error count", "error", err, "article_id", rawID)
			continue
		}

		if errorCount >= maxRetries {
			slog.Warn("article exceeded max retries, marking as failed", "article_id", rawID, "error_count", errorCount)
			repo.UpdateRawStatus(rawID, model.StatusFailed)
			db.PushToQueue(db.DeadLetterKey, id)
			continue
		}

		if err := tagger.Process(rawID); err != nil {
			slog.Error("error tagging article", "error", err, "article_id", rawID)

			repo.SaveError(rawID, err.Error(), "match_error")

			db.PushToQueue(db.MatchQueueKey, id)

			time.Sleep(5 * time.Second)
			continue
		}

		slog.Info("article tagged", "article_id", rawID)
	}
}
