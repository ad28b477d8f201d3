package ingest

import (
	"fmt"
	"sort"
	"strings"

	"newsbag/internal/match"
	"newsbag/internal/model"
	"newsbag/pkg/llm"
)

type TagStore interface {
	GetRawByID(id int64) (*model.RawArticle, error)
	UpdateRawStatus(id int64, status string) error
	SaveArticle(article *model.Article) (bool, error)
}

// Tagger turns one raw article into a tagged one: rule-based ticker match,
// optional LLM classification, then an idempotent store put. The analyzer
// may be nil; matching alone is enough to serve digests.
type Tagger struct {
	store    TagStore
	matcher  *match.Matcher
	analyzer llm.Analyzer
}

func NewTagger(store TagStore, matcher *match.Matcher, analyzer llm.Analyzer) *Tagger {
	return &Tagger{store: store, matcher: matcher, analyzer: analyzer}
}

func (t *Tagger) Process(rawID int64) error {
	raw, err := t.store.GetRawByID(rawID)
	if err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("raw article %d not found", rawID)
	}

	article := model.Article{
		DedupID:        raw.DedupID,
		Title:          raw.Title,
		Body:           raw.Body,
		Link:           raw.Link,
		Source:         raw.Source,
		PublishedAt:    raw.PublishedAt,
		RelatedMarkets: t.matcher.Match(raw.Title, raw.Body),
	}

	if t.analyzer != nil {
		analysis, err := t.analyzer.Analyze(llm.Input{Title: raw.Title, Body: raw.Body})
		if err != nil {
			return fmt.Errorf("analyze article %d: %w", rawID, err)
		}
		article.NewsType = analysis.NewsType
		article.Region = analysis.Region
		article.Topics = analysis.Topics
		article.MacroSensitive = analysis.MacroSensitive
		article.LikelyToInfluence = analysis.LikelyToInfluence
		article.InfluenceReason = analysis.InfluenceReason
		article.RelatedMarkets = mergeMarkets(article.RelatedMarkets, analysis.RelatedMarkets)
	}

	if _, err := t.store.SaveArticle(&article); err != nil {
		return err
	}

	return t.store.UpdateRawStatus(rawID, model.StatusCompleted)
}

func mergeMarkets(matched, extra []string) []string {
	seen := make(map[string]struct{}, len(matched)+len(extra))
	for _, t := range matched {
		seen[strings.ToUpper(t)] = struct{}{}
	}
	for _, t := range extra {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			seen[t] = struct{}{}
		}
	}

	merged := make([]string, 0, len(seen))
	for t := range seen {
		merged = append(merged, t)
	}
	sort.Strings(merged)
	return merged
}
