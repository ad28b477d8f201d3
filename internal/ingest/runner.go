package ingest

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"newsbag/internal/model"
	"newsbag/pkg/feed"
)

type RawStore interface {
	SaveRaw(article *model.RawArticle) (bool, error)
}

type Queue interface {
	Push(id string) error
}

type Stats struct {
	Saved      int
	Duplicated int
	Errors     int
}

// Runner is one ingestion pass over all configured sources: fetch, dedup,
// store raw, enqueue for matching. Scheduling is external; calling Run again
// on the next tick is safe because SaveRaw is keyed by dedup id.
type Runner struct {
	sources    []feed.Source
	store      RawStore
	queue      Queue
	fetchLimit int
}

func NewRunner(sources []feed.Source, store RawStore, queue Queue, fetchLimit int) *Runner {
	return &Runner{sources: sources, store: store, queue: queue, fetchLimit: fetchLimit}
}

// Run processes every source. A failing source is logged and skipped; it
// never aborts the rest of the run.
func (r *Runner) Run() Stats {
	var stats Stats

	for _, source := range r.sources {
		name := source.Name()

		items, err := source.Fetch(r.fetchLimit)
		if err != nil {
			slog.Error("error fetching articles", "source", name, "error", err)
			stats.Errors++
			continue
		}

		var saved, duplicated, errors int

		for _, item := range items {
			raw := model.RawArticle{
				DedupID:     DedupID(item.Title, item.Source, item.PublishedAt),
				Title:       item.Title,
				Body:        item.Body,
				Link:        item.Link,
				Source:      item.Source,
				PublishedAt: item.PublishedAt,
			}

			ok, err := r.store.SaveRaw(&raw)
			if err != nil {
				slog.Error("error saving article", "source", name, "error", err)
				errors++
				continue
			}

			if !ok {
				duplicated++
				continue
			}

			saved++

			if err := r.queue.Push(strconv.FormatInt(raw.ID, 10)); err != nil {
				slog.Error("error pushing to match queue", "source", name, "error", err, "article_id", raw.ID)
				errors++
			}
		}

		slog.Info("fetch complete", "source", name, "saved", saved, "duplicated", duplicated, "errors", errors)
		stats.Saved += saved
		stats.Duplicated += duplicated
		stats.Errors += errors
	}

	return stats
}

// DedupID derives the stable article identity from title, source and
// publication time, truncated sha256 hex.
func DedupID(title, source string, publishedAt time.Time) string {
	sum := sha256.Sum256([]byte(title + "|" + source + "|" + publishedAt.UTC().Format(time.RFC3339)))
	return fmt.Sprintf("%x", sum)[:16]
}
