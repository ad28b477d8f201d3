package service

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"newsbag/internal/model"
)

type fakeLedger struct {
	subs     map[int64][]string
	rankings []model.RankEntry
	err      error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{subs: make(map[int64][]string)}
}

func (f *fakeLedger) Subscribe(userID int64, ticker string) error {
	if f.err != nil {
		return f.err
	}
	for _, t := range f.subs[userID] {
		if t == ticker {
			return nil
		}
	}
	f.subs[userID] = append(f.subs[userID], ticker)
	return nil
}

func (f *fakeLedger) Unsubscribe(userID int64, ticker string) error {
	if f.err != nil {
		return f.err
	}
	kept := f.subs[userID][:0]
	for _, t := range f.subs[userID] {
		if t != ticker {
			kept = append(kept, t)
		}
	}
	f.subs[userID] = kept
	return nil
}

func (f *fakeLedger) List(userID int64) ([]string, error) {
	return f.subs[userID], f.err
}

func (f *fakeLedger) Rankings() ([]model.RankEntry, error) {
	return f.rankings, f.err
}

// fakeStore filters like the real query: ticker intersection, since cutoff,
// most recent first, limit.
type fakeStore struct {
	articles []model.Article
	err      error
}

func (f *fakeStore) QueryByTickers(tickers []string, since time.Time, limit int) ([]model.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		wanted[t] = struct{}{}
	}

	var out []model.Article
	for _, a := range f.articles {
		if a.PublishedAt.Before(since) {
			continue
		}
		for _, rm := range a.RelatedMarkets {
			if _, ok := wanted[rm]; ok {
				out = append(out, a)
				break
			}
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].PublishedAt.After(out[i].PublishedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func testRegistry() map[string][]string {
	return map[string][]string{
		"AAPL": {"Apple"},
		"TSLA": {"Tesla"},
	}
}

func TestSubscribe_NormalizesAndChecksRegistry(t *testing.T) {
	ledger := newFakeLedger()
	svc := New(ledger, &fakeStore{}, testRegistry(), 10)

	symbol, err := svc.Subscribe(1, " aapl ")
	assert.Equal(t, nil, err)
	assert.Equal(t, "AAPL", symbol)
	assert.Equal(t, []string{"AAPL"}, ledger.subs[1])
}

func TestSubscribe_UnknownTicker(t *testing.T) {
	ledger := newFakeLedger()
	svc := New(ledger, &fakeStore{}, testRegistry(), 10)

	_, err := svc.Subscribe(1, "ZZZZ")
	assert.Equal(t, true, errors.Is(err, ErrUnknownTicker))

	// ledger is unchanged on rejection
	assert.Equal(t, 0, len(ledger.subs[1]))
}

func TestUnsubscribe_UnknownTickerIsNoop(t *testing.T) {
	ledger := newFakeLedger()
	svc := New(ledger, &fakeStore{}, testRegistry(), 10)

	_, err := svc.Unsubscribe(1, "ZZZZ")
	assert.Equal(t, nil, err)
}

func TestRank_SortsAndTruncates(t *testing.T) {
	ledger := newFakeLedger()
	ledger.rankings = []model.RankEntry{
		{Ticker: "TSLA", Subscribers: 1},
		{Ticker: "MSFT", Subscribers: 1},
		{Ticker: "AAPL", Subscribers: 2},
	}
	svc := New(ledger, &fakeStore{}, testRegistry(), 10)

	entries, err := svc.Rank(2)
	assert.Equal(t, nil, err)
	assert.Equal(t, []model.RankEntry{
		{Ticker: "AAPL", Subscribers: 2},
		{Ticker: "MSFT", Subscribers: 1},
	}, entries)
}

func TestRank_Empty(t *testing.T) {
	svc := New(newFakeLedger(), &fakeStore{}, testRegistry(), 10)

	entries, err := svc.Rank(5)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(entries))
}

func TestDigest_NoSubscriptions(t *testing.T) {
	svc := New(newFakeLedger(), &fakeStore{}, testRegistry(), 10)

	digest, err := svc.Digest(1, time.Now())
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(digest.Tickers))
	assert.Equal(t, 0, len(digest.Items))
}

func TestDigest_OnlySubscribedTickers(t *testing.T) {
	today := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

	ledger := newFakeLedger()
	ledger.subs[1] = []string{"AAPL"}

	store := &fakeStore{articles: []model.Article{
		{Title: "AAPL earnings beat", Source: "Example", PublishedAt: today.Add(time.Hour), RelatedMarkets: []string{"AAPL"}},
		{Title: "TSLA recall", Source: "Example", PublishedAt: today.Add(2 * time.Hour), RelatedMarkets: []string{"TSLA"}},
	}}
	svc := New(ledger, store, testRegistry(), 10)

	digest, err := svc.Digest(1, today)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(digest.Items))
	assert.Equal(t, "AAPL earnings beat", digest.Items[0].Title)
	assert.Equal(t, "AAPL", digest.Items[0].Ticker)
}

func TestDigest_RespectsSince(t *testing.T) {
	since := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	ledger := newFakeLedger()
	ledger.subs[1] = []string{"AAPL"}

	store := &fakeStore{articles: []model.Article{
		{Title: "old news", PublishedAt: since.Add(-time.Hour), RelatedMarkets: []string{"AAPL"}},
		{Title: "fresh news", PublishedAt: since.Add(time.Hour), RelatedMarkets: []string{"AAPL"}},
	}}
	svc := New(ledger, store, testRegistry(), 10)

	digest, err := svc.Digest(1, since)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(digest.Items))
	assert.Equal(t, "fresh news", digest.Items[0].Title)
}

func TestDigest_TruncatesOldestFirst(t *testing.T) {
	since := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	ledger := newFakeLedger()
	ledger.subs[1] = []string{"AAPL"}

	store := &fakeStore{}
	for i := 1; i <= 5; i++ {
		store.articles = append(store.articles, model.Article{
			Title:          string(rune('a' + i - 1)),
			PublishedAt:    since.Add(time.Duration(i) * time.Hour),
			RelatedMarkets: []string{"AAPL"},
		})
	}
	svc := New(ledger, store, testRegistry(), 3)

	digest, err := svc.Digest(1, since)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(digest.Items))

	// most recent kept, oldest dropped
	assert.Equal(t, "e", digest.Items[0].Title)
	assert.Equal(t, "c", digest.Items[2].Title)
}

func TestDigest_NoStore(t *testing.T) {
	ledger := newFakeLedger()
	ledger.subs[1] = []string{"AAPL"}
	svc := New(ledger, nil, testRegistry(), 10)

	_, err := svc.Digest(1, time.Now())
	assert.Equal(t, true, errors.Is(err, ErrStoreUnavailable))

	// a user with no subscriptions still gets a normal empty digest
	digest, err := svc.Digest(2, time.Now())
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(digest.Tickers))
}

func TestDigest_StoreErrorPropagates(t *testing.T) {
	ledger := newFakeLedger()
	ledger.subs[1] = []string{"AAPL"}
	storeErr := errors.New("db down")
	svc := New(ledger, &fakeStore{err: storeErr}, testRegistry(), 10)

	_, err := svc.Digest(1, time.Now())
	assert.Equal(t, storeErr, err)
}
