package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"newsbag/internal/model"
	"newsbag/internal/service"
)

// Core is the subscription/digest command surface the API exposes.
type Core interface {
	Subscribe(userID int64, ticker string) (string, error)
	Unsubscribe(userID int64, ticker string) (string, error)
	List(userID int64) ([]string, error)
	Rank(topN int) ([]model.RankEntry, error)
	Digest(userID int64, since time.Time) (model.Digest, error)
}

type ArticleStore interface {
	ListArticles(limit, offset int) ([]model.Article, error)
	ArticleTotal() (int, error)
}

type Handler struct {
	core        Core
	articles    ArticleStore
	digestHours int
}

func New(core Core, articles ArticleStore, digestHours int) *Handler {
	if digestHours <= 0 {
		digestHours = 24
	}
	return &Handler{core: core, articles: articles, digestHours: digestHours}
}

func (h *Handler) PostSubscription(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == 0 || req.Ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and ticker are required"})
		return
	}

	symbol, err := h.core.Subscribe(req.UserID, req.Ticker)
	if errors.Is(err, service.ErrUnknownTicker) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown ticker: " + req.Ticker})
		return
	}
	if err != nil {
		slog.Error("error subscribing", "error", err, "user_id", req.UserID, "ticker", req.Ticker)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	tickers, err := h.core.List(req.UserID)
	if err != nil {
		slog.Error("error listing subscriptions", "error", err, "user_id", req.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	slog.Info("subscribed", "user_id", req.UserID, "ticker", symbol)
	c.JSON(http.StatusCreated, SubscriptionResponse{UserID: req.UserID, Tickers: tickers})
}

func (h *Handler) DeleteSubscription(c *gin.Context) {
	userID, ok := getQueryUserID(c)
	if !ok {
		return
	}

	symbol, err := h.core.Unsubscribe(userID, c.Param("ticker"))
	if err != nil {
		slog.Error("error unsubscribing", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	slog.Info("unsubscribed", "user_id", userID, "ticker", symbol)
	c.JSON(http.StatusOK, gin.H{"ticker": symbol})
}

func (h *Handler) GetSubscriptions(c *gin.Context) {
	userID, ok := getQueryUserID(c)
	if !ok {
		return
	}

	tickers, err := h.core.List(userID)
	if err != nil {
		slog.Error("error listing subscriptions", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, SubscriptionResponse{UserID: userID, Tickers: tickers})
}

func (h *Handler) GetDigest(c *gin.Context) {
	userID, ok := getQueryUserID(c)
	if !ok {
		return
	}

	hours := h.digestHours
	if v := c.Query("hours"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			hours = parsed
		}
	}

	digest, err := h.core.Digest(userID, time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		slog.Error("error composing digest", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := DigestResponse{Tickers: digest.Tickers, Items: []DigestItemResponse{}}
	if res.Tickers == nil {
		res.Tickers = []string{}
	}
	for _, item := range digest.Items {
		res.Items = append(res.Items, DigestItemResponse{
			Ticker:      item.Ticker,
			Title:       item.Title,
			Source:      item.Source,
			URL:         item.Link,
			PublishedAt: item.PublishedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetRankings(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.core.Rank(limit)
	if err != nil {
		slog.Error("error ranking tickers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]RankEntryResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, RankEntryResponse{Ticker: e.Ticker, Subscribers: e.Subscribers})
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetFeed(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)

	articles, err := h.articles.ListArticles(limit, offset)
	if err != nil {
		slog.Error("error fetching feed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	total, err := h.articles.ArticleTotal()
	if err != nil {
		slog.Error("error fetching feed total", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := FeedResponse{Articles: []ArticleResponse{}, Total: total, Limit: limit, Offset: offset}
	for _, a := range articles {
		res.Articles = append(res.Articles, ArticleResponse{
			ID:                a.ID,
			Title:             a.Title,
			Source:            a.Source,
			URL:               a.Link,
			PublishedAt:       a.PublishedAt.Format(time.RFC3339),
			NewsType:          a.NewsType,
			Region:            a.Region,
			Topics:            a.Topics,
			RelatedMarkets:    a.RelatedMarkets,
			MacroSensitive:    a.MacroSensitive,
			LikelyToInfluence: a.LikelyToInfluence,
			InfluenceReason:   a.InfluenceReason,
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetHealth(c *gin.Context) {
	_, err := h.articles.ArticleTotal()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getQueryUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return 0, false
	}
	return userID, true
}

func getQueryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		return 10
	}
	return limit
}

func getQueryOffset(c *gin.Context) int {
	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
