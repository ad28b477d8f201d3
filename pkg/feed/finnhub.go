package feed

import (
	"context"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

type FinnhubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnhubClient(apiKey string) *FinnhubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnhubClient{client: client}
}

func (c *FinnhubClient) Name() string {
	return "Finnhub"
}

func (c *FinnhubClient) Fetch(limit int) ([]Item, error) {
	res, _, err := c.client.MarketNews(context.Background()).Category("general").Execute()
	if err != nil {
		return nil, &FetchError{Source: c.Name(), Err: err}
	}

	items := make([]Item, 0, len(res))
	for _, news := range res {
		if news.Headline == nil || news.Datetime == nil {
			continue
		}

		item := Item{
			Title:       *news.Headline,
			Source:      c.Name(),
			PublishedAt: time.Unix(*news.Datetime, 0),
		}
		if news.Summary != nil {
			item.Body = *news.Summary
		}
		if news.Url != nil {
			item.Link = *news.Url
		}

		items = append(items, item)
		if limit > 0 && len(items) >= limit {
			break
		}
	}

	return items, nil
}
