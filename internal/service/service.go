package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"newsbag/internal/model"
)

// ErrUnknownTicker rejects subscriptions to symbols outside the registry.
var ErrUnknownTicker = errors.New("unknown ticker")

// ErrStoreUnavailable means the article store is not connected, so digests
// cannot be composed. Subscription operations are unaffected.
var ErrStoreUnavailable = errors.New("article store unavailable")

type Ledger interface {
	Subscribe(userID int64, ticker string) error
	Unsubscribe(userID int64, ticker string) error
	List(userID int64) ([]string, error)
	Rankings() ([]model.RankEntry, error)
}

type ArticleStore interface {
	QueryByTickers(tickers []string, since time.Time, limit int) ([]model.Article, error)
}

// Service is the command surface consumed by the gateways (HTTP API and
// Telegram bot). It owns normalization and registry checks; persistence
// failures propagate to the caller unmodified.
type Service struct {
	ledger      Ledger
	articles    ArticleStore
	registry    map[string][]string
	digestLimit int
}

func New(ledger Ledger, articles ArticleStore, registry map[string][]string, digestLimit int) *Service {
	if digestLimit <= 0 {
		digestLimit = 10
	}
	return &Service{
		ledger:      ledger,
		articles:    articles,
		registry:    registry,
		digestLimit: digestLimit,
	}
}

// Subscribe adds a (user, ticker) pair and returns the canonical symbol.
// Unknown symbols are rejected; duplicates are a no-op.
func (s *Service) Subscribe(userID int64, ticker string) (string, error) {
	symbol := normalize(ticker)
	if _, ok := s.registry[symbol]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	if err := s.ledger.Subscribe(userID, symbol); err != nil {
		return "", err
	}
	return symbol, nil
}

// Unsubscribe removes the pair. Removing an absent pair is a no-op, so no
// registry check here.
func (s *Service) Unsubscribe(userID int64, ticker string) (string, error) {
	symbol := normalize(ticker)
	if err := s.ledger.Unsubscribe(userID, symbol); err != nil {
		return "", err
	}
	return symbol, nil
}

func (s *Service) List(userID int64) ([]string, error) {
	return s.ledger.List(userID)
}

// Rank returns the topN most subscribed tickers, count descending with
// ticker-ascending tie-break. Empty when nobody subscribed to anything.
func (s *Service) Rank(topN int) ([]model.RankEntry, error) {
	entries, err := s.ledger.Rankings()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Subscribers != entries[j].Subscribers {
			return entries[i].Subscribers > entries[j].Subscribers
		}
		return entries[i].Ticker < entries[j].Ticker
	})

	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	return entries, nil
}

// Digest joins the user's subscriptions against the article store. A user
// with no subscriptions gets an empty digest, not an error. At most
// digestLimit items are returned, most recent first.
func (s *Service) Digest(userID int64, since time.Time) (model.Digest, error) {
	tickers, err := s.ledger.List(userID)
	if err != nil {
		return model.Digest{}, err
	}
	if len(tickers) == 0 {
		return model.Digest{}, nil
	}
	if s.articles == nil {
		return model.Digest{}, ErrStoreUnavailable
	}

	articles, err := s.articles.QueryByTickers(tickers, since, s.digestLimit)
	if err != nil {
		return model.Digest{}, err
	}

	subscribed := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		subscribed[t] = struct{}{}
	}

	items := make([]model.DigestItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, model.DigestItem{
			Ticker:      digestTicker(a.RelatedMarkets, subscribed),
			Title:       a.Title,
			Source:      a.Source,
			Link:        a.Link,
			PublishedAt: a.PublishedAt,
		})
	}

	return model.Digest{Tickers: tickers, Items: items}, nil
}

// digestTicker picks the first subscribed ticker an article relates to, so
// each digest line is labelled with a symbol the user actually follows.
func digestTicker(related []string, subscribed map[string]struct{}) string {
	for _, t := range related {
		if _, ok := subscribed[t]; ok {
			return t
		}
	}
	if len(related) > 0 {
		return related[0]
	}
	return ""
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
