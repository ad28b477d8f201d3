package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"newsbag/internal/match"
	"newsbag/internal/model"
	"newsbag/pkg/llm"
)

type memTagStore struct {
	raw      map[int64]*model.RawArticle
	articles map[string]*model.Article
	statuses map[int64]string
	saveErr  error
}

func newMemTagStore() *memTagStore {
	return &memTagStore{
		raw:      make(map[int64]*model.RawArticle),
		articles: make(map[string]*model.Article),
		statuses: make(map[int64]string),
	}
}

func (s *memTagStore) GetRawByID(id int64) (*model.RawArticle, error) {
	return s.raw[id], nil
}

func (s *memTagStore) UpdateRawStatus(id int64, status string) error {
	s.statuses[id] = status
	return nil
}

func (s *memTagStore) SaveArticle(article *model.Article) (bool, error) {
	if s.saveErr != nil {
		return false, s.saveErr
	}
	if _, ok := s.articles[article.DedupID]; ok {
		return false, nil
	}
	s.articles[article.DedupID] = article
	return true, nil
}

type stubAnalyzer struct {
	analysis *llm.Analysis
	err      error
}

func (a *stubAnalyzer) Analyze(input llm.Input) (*llm.Analysis, error) {
	return a.analysis, a.err
}

func rawArticle(id int64, title, body string) *model.RawArticle {
	return &model.RawArticle{
		ID:          id,
		DedupID:     DedupID(title, "Example", time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)),
		Title:       title,
		Body:        body,
		Source:      "Example",
		PublishedAt: time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC),
		Status:      model.StatusPending,
	}
}

func testMatcher() *match.Matcher {
	return match.New(map[string][]string{
		"AAPL": {"Apple"},
		"TSLA": {"Tesla"},
	})
}

func TestProcess_MatchOnly(t *testing.T) {
	store := newMemTagStore()
	raw := rawArticle(1, "AAPL earnings beat", "Strong quarter for Apple")
	store.raw[1] = raw

	tagger := NewTagger(store, testMatcher(), nil)
	err := tagger.Process(1)

	assert.Equal(t, nil, err)
	assert.Equal(t, model.StatusCompleted, store.statuses[1])

	saved := store.articles[raw.DedupID]
	assert.NotEqual(t, nil, saved)
	assert.Equal(t, []string{"AAPL"}, saved.RelatedMarkets)
	assert.Equal(t, "", saved.NewsType)
}

func TestProcess_NoMatchStillCompletes(t *testing.T) {
	store := newMemTagStore()
	raw := rawArticle(1, "Weather improves", "Sunny all week")
	store.raw[1] = raw

	tagger := NewTagger(store, testMatcher(), nil)
	err := tagger.Process(1)

	assert.Equal(t, nil, err)
	assert.Equal(t, model.StatusCompleted, store.statuses[1])
	assert.Equal(t, 0, len(store.articles[raw.DedupID].RelatedMarkets))
}

func TestProcess_AnalyzerEnriches(t *testing.T) {
	store := newMemTagStore()
	raw := rawArticle(1, "AAPL earnings beat", "")
	store.raw[1] = raw

	analyzer := &stubAnalyzer{analysis: &llm.Analysis{
		NewsType:          "corporate",
		Region:            "US",
		Topics:            []string{"earnings"},
		RelatedMarkets:    []string{"aapl", "QQQ"},
		MacroSensitive:    false,
		LikelyToInfluence: true,
		InfluenceReason:   "Beat consensus.",
	}}

	tagger := NewTagger(store, testMatcher(), analyzer)
	err := tagger.Process(1)

	assert.Equal(t, nil, err)

	saved := store.articles[raw.DedupID]
	assert.Equal(t, "corporate", saved.NewsType)
	assert.Equal(t, "US", saved.Region)

	// rule match and analyzer extras merged, uppercased, sorted
	assert.Equal(t, []string{"AAPL", "QQQ"}, saved.RelatedMarkets)
	assert.Equal(t, true, saved.LikelyToInfluence)
}

func TestProcess_AnalyzerErrorLeavesRawPending(t *testing.T) {
	store := newMemTagStore()
	store.raw[1] = rawArticle(1, "AAPL earnings beat", "")

	tagger := NewTagger(store, testMatcher(), &stubAnalyzer{err: errors.New("rate limited")})
	err := tagger.Process(1)

	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, len(store.articles))
	assert.Equal(t, "", store.statuses[1])
}

func TestProcess_MissingRaw(t *testing.T) {
	tagger := NewTagger(newMemTagStore(), testMatcher(), nil)
	err := tagger.Process(42)
	assert.NotEqual(t, nil, err)
}

func TestProcess_Reprocess(t *testing.T) {
	store := newMemTagStore()
	raw := rawArticle(1, "AAPL earnings beat", "")
	store.raw[1] = raw

	tagger := NewTagger(store, testMatcher(), nil)
	assert.Equal(t, nil, tagger.Process(1))
	assert.Equal(t, nil, tagger.Process(1))

	// second pass is a no-op put, still exactly one stored copy
	assert.Equal(t, 1, len(store.articles))
}
