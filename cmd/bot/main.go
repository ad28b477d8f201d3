package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"newsbag/db"
	"newsbag/internal/config"
	"newsbag/internal/repository"
	"newsbag/internal/service"
)

const helpText = `/subscribe <TICKER> - subscribe to a ticker
/unsubscribe <TICKER> - unsubscribe from a ticker
/list - show your subscriptions
/digest - recent news for your subscriptions
/rank - most subscribed tickers
/help - show this help`

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		log.Fatal("TELEGRAM_TOKEN not set")
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	err = db.ConnectLedger()
	if err != nil {
		log.Fatalf("error opening subscription ledger: %v", err)
	}
	defer db.CloseLedger()

	subRepo := repository.NewSubscriptionRepository(db.Ledger)
	if err := subRepo.EnsureSchema(); err != nil {
		log.Fatalf("error ensuring ledger schema: %v", err)
	}

	// The ledger is local, so subscribe/list/rank keep working when Postgres
	// is unreachable; only digests need the article store.
	var articleStore service.ArticleStore
	if err := db.Connect(); err != nil {
		slog.Warn("article store unavailable, digests disabled", "error", err)
	} else {
		defer db.Close()
		articleRepo := repository.NewArticleRepository(db.DB)
		if err := articleRepo.EnsureSchema(); err != nil {
			log.Fatalf("error ensuring article schema: %v", err)
		}
		articleStore = articleRepo
	}

	core := service.New(subRepo, articleStore, cfg.Tickers, cfg.DigestLimit)

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatalf("error creating bot API: %v", err)
	}

	slog.Info("bot started", "username", api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	for update := range api.GetUpdatesChan(u) {
		if update.Message == nil || update.Message.From == nil || !update.Message.IsCommand() {
			continue
		}

		userID := update.Message.From.ID
		text := handleCommand(core, cfg, userID, update.Message.Command(), update.Message.CommandArguments())

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, text)
		if _, err := api.Send(msg); err != nil {
			slog.Error("error sending message", "error", err, "user_id", userID)
		}
	}
}

// handleCommand maps one bot command onto the core service; the gateway
// itself holds no subscription or digest logic.
func handleCommand(core *service.Service, cfg *config.Config, userID int64, command, args string) string {
	switch command {
	case "start":
		return "Hi! Use /subscribe <TICKER> to follow ticker news.\n" + helpText
	case "help":
		return helpText
	case "subscribe":
		if args == "" {
			return "Usage: /subscribe <TICKER>"
		}
		symbol, err := core.Subscribe(userID, args)
		if errors.Is(err, service.ErrUnknownTicker) {
			return fmt.Sprintf("Unknown ticker: %s", strings.ToUpper(strings.TrimSpace(args)))
		}
		if err != nil {
			slog.Error("error subscribing", "error", err, "user_id", userID)
			return "Something went wrong, try again later."
		}
		slog.Info("subscribed", "user_id", userID, "ticker", symbol)
		return fmt.Sprintf("Subscribed to %s", symbol)
	case "unsubscribe":
		if args == "" {
			return "Usage: /unsubscribe <TICKER>"
		}
		symbol, err := core.Unsubscribe(userID, args)
		if err != nil {
			slog.Error("error unsubscribing", "error", err, "user_id", userID)
			return "Something went wrong, try again later."
		}
		slog.Info("unsubscribed", "user_id", userID, "ticker", symbol)
		return fmt.Sprintf("Unsubscribed from %s", symbol)
	case "list":
		tickers, err := core.List(userID)
		if err != nil {
			slog.Error("error listing subscriptions", "error", err, "user_id", userID)
			return "Something went wrong, try again later."
		}
		if len(tickers) == 0 {
			return "You have no subscriptions."
		}
		return strings.Join(tickers, ", ")
	case "digest":
		since := time.Now().Add(-time.Duration(cfg.DigestHours) * time.Hour)
		digest, err := core.Digest(userID, since)
		if errors.Is(err, service.ErrStoreUnavailable) {
			return "The news database is unavailable right now, try again later."
		}
		if err != nil {
			slog.Error("error composing digest", "error", err, "user_id", userID)
			return "Something went wrong, try again later."
		}
		if len(digest.Tickers) == 0 {
			return "You have no subscriptions."
		}
		if len(digest.Items) == 0 {
			return "No fresh news for your tickers."
		}
		var lines []string
		for _, item := range digest.Items {
			lines = append(lines, fmt.Sprintf("%s: %s (%s)\n%s", item.Ticker, item.Title, item.Source, item.Link))
		}
		return strings.Join(lines, "\n\n")
	case "rank":
		entries, err := core.Rank(10)
		if err != nil {
			slog.Error("error ranking tickers", "error", err)
			return "Something went wrong, try again later."
		}
		if len(entries) == 0 {
			return "No subscriptions yet."
		}
		var lines []string
		for i, e := range entries {
			lines = append(lines, fmt.Sprintf("%d. %s - %d", i+1, e.Ticker, e.Subscribers))
		}
		return strings.Join(lines, "\n")
	default:
		return "Unknown command. " + helpText
	}
}
