package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
)

type RSSClient struct {
	name       string
	url        string
	httpClient *http.Client
}

func NewRSSClient(name, url string) *RSSClient {
	return &RSSClient{
		name:       name,
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *RSSClient) Name() string {
	return c.name
}

func (c *RSSClient) Fetch(limit int) ([]Item, error) {
	resp, err := c.httpClient.Get(c.url)
	if err != nil {
		return nil, &FetchError{Source: c.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: c.name, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: c.name, Err: err}
	}

	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, &FetchError{Source: c.name, Err: fmt.Errorf("parse rss: %w", err)}
	}

	items := make([]Item, 0, len(doc.Channel.Items))
	for _, it := range doc.Channel.Items {
		// reject malformed entries here, not downstream
		if it.Title == "" || it.PubDate == "" {
			continue
		}
		publishedAt, err := dateparse.ParseAny(it.PubDate)
		if err != nil {
			continue
		}

		items = append(items, Item{
			Title:       it.Title,
			Body:        it.Description,
			Link:        it.Link,
			Source:      c.name,
			PublishedAt: publishedAt,
		})
		if limit > 0 && len(items) >= limit {
			break
		}
	}

	return items, nil
}

type rssDocument struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}
