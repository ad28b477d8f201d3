package handler

type SubscribeRequest struct {
	UserID int64  `json:"user_id"`
	Ticker string `json:"ticker"`
}

type SubscriptionResponse struct {
	UserID  int64    `json:"user_id"`
	Tickers []string `json:"tickers"`
}

type DigestItemResponse struct {
	Ticker      string `json:"ticker"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}

type DigestResponse struct {
	Tickers []string             `json:"tickers"`
	Items   []DigestItemResponse `json:"items"`
}

type RankEntryResponse struct {
	Ticker      string `json:"ticker"`
	Subscribers int    `json:"subscribers"`
}

type ArticleResponse struct {
	ID                int64    `json:"id"`
	Title             string   `json:"title"`
	Source            string   `json:"source"`
	URL               string   `json:"url"`
	PublishedAt       string   `json:"published_at"`
	NewsType          string   `json:"news_type"`
	Region            string   `json:"region"`
	Topics            []string `json:"topics"`
	RelatedMarkets    []string `json:"related_markets"`
	MacroSensitive    bool     `json:"macro_sensitive"`
	LikelyToInfluence bool     `json:"likely_to_influence"`
	InfluenceReason   string   `json:"influence_reason"`
}

type FeedResponse struct {
	Articles []ArticleResponse `json:"articles"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}
