package feed

import (
	"fmt"
	"time"
)

// Item is a normalized feed entry. Sources validate required fields (title,
// published time) and drop malformed entries before returning.
type Item struct {
	Title       string
	Body        string
	Link        string
	Source      string
	PublishedAt time.Time
}

// Source fetches recent items from one news endpoint. A failing source
// reports a *FetchError and must not affect other sources; retrying is the
// scheduler's call, not the source's.
type Source interface {
	Fetch(limit int) ([]Item, error)
	Name() string
}

// FetchError marks one source as unreachable or unparsable for this run.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
