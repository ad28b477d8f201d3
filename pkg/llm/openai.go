package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = `You are a financial markets analyst. Classify the given news item.

Rules:
1. news_type is exactly one of: "macroeconomic" (inflation, rates, GDP, geopolitics), "sector" (an industry as a whole), "corporate" (a specific company).
2. topics are short keyword phrases, e.g. "interest rates", "chip export ban", "earnings miss".
3. region is the country or region the event concerns, empty if not applicable.
4. related_markets are ticker-like symbols of stocks, commodities or indices the item could move (oil for energy names, bond yields for banks, FX for exporters).
5. macro_sensitive is true when the item moves with macro indicators.
6. likely_to_influence is your yes/no call on whether this item can move the price of the related markets; influence_reason is one sentence of why.
7. Do not rewrite, shorten or summarize the article text.

Output as JSON only, no other text:
{
  "news_type": "...",
  "topics": [...],
  "region": "...",
  "related_markets": [...],
  "macro_sensitive": true/false,
  "likely_to_influence": true/false,
  "influence_reason": "..."
}`

type OpenAIClient struct {
	client *openai.Client
	model  openai.ChatModel
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		client: &client,
		model:  openai.ChatModelGPT4oMini,
	}
}

func (c *OpenAIClient) Analyze(input Input) (*Analysis, error) {
	userPrompt := fmt.Sprintf("Title: %s\nText: %s", input.Title, input.Body)

	resp, err := c.client.Chat.Completions.New(context.Background(), openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})

	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)
	return parseAnalysis(content)
}

func parseAnalysis(content string) (*Analysis, error) {
	var parsed struct {
		NewsType          string   `json:"news_type"`
		Topics            []string `json:"topics"`
		Region            string   `json:"region"`
		RelatedMarkets    []string `json:"related_markets"`
		MacroSensitive    bool     `json:"macro_sensitive"`
		LikelyToInfluence bool     `json:"likely_to_influence"`
		InfluenceReason   string   `json:"influence_reason"`
	}

	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, content: %s", err, content)
	}

	return &Analysis{
		NewsType:          parsed.NewsType,
		Region:            parsed.Region,
		Topics:            parsed.Topics,
		RelatedMarkets:    parsed.RelatedMarkets,
		MacroSensitive:    parsed.MacroSensitive,
		LikelyToInfluence: parsed.LikelyToInfluence,
		InfluenceReason:   parsed.InfluenceReason,
	}, nil
}
