package model

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RawArticle is a feed item as it arrived from a source, before ticker
// matching. Status tracks its progress through the match queue.
type RawArticle struct {
	ID          int64
	DedupID     string
	Title       string
	Body        string
	Link        string
	Source      string
	PublishedAt time.Time
	FetchedAt   time.Time
	Status      string
}

// Article is the tagged record produced by the matcher stage. Immutable once
// stored; DedupID guarantees at most one copy per logical article.
type Article struct {
	ID                int64
	DedupID           string
	Title             string
	Body              string
	Link              string
	Source            string
	PublishedAt       time.Time
	NewsType          string
	Region            string
	Topics            []string
	RelatedMarkets    []string
	MacroSensitive    bool
	LikelyToInfluence bool
	InfluenceReason   string
}

// RankEntry is one row of the ticker popularity ranking. Derived from the
// subscription ledger on request, never persisted.
type RankEntry struct {
	Ticker      string
	Subscribers int
}

// DigestItem is one line of a user digest.
type DigestItem struct {
	Ticker      string
	Title       string
	Source      string
	Link        string
	PublishedAt time.Time
}

// Digest is the composed result for one user. An empty Tickers slice means
// the user has no subscriptions; that is a normal result, not an error.
type Digest struct {
	Tickers []string
	Items   []DigestItem
}
