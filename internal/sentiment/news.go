package sentiment

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tmsentinel/market-sentinel/internal/config"
)

const newsDataBaseURL = "https://newsdata.io/api/1/latest"

// tickerQueries maps futures symbols to the search terms the news API
// understands.
var tickerQueries = map[string]string{
	"GC=F":     "Gold",
	"SI=F":     "Silver",
	"PL=F":     "Platinum",
	"PA=F":     "Palladium",
	"DX-Y.NYB": "Dollar Index",
}

// Headline is one fetched news item.
type Headline struct {
	Title       string
	Source      string
	PublishedAt string
}

type newsDataResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Results []struct {
		Title      string `json:"title"`
		SourceName string `json:"source_name"`
		PubDate    string `json:"pubDate"`
	} `json:"results"`
}

// NewsClient fetches business headlines from NewsData.io.
type NewsClient struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	size    int
}

// NewNewsClient builds a client from the news configuration.
func NewNewsClient(cfg config.NewsConfig) *NewsClient {
	return &NewsClient{
		client:  resty.New().SetTimeout(10 * time.Second),
		baseURL: newsDataBaseURL,
		apiKey:  cfg.APIKey,
		size:    cfg.MaxHeadlines,
	}
}

// Headlines fetches recent business headlines for a ticker. Duplicate
// titles are dropped.
func (c *NewsClient) Headlines(ctx context.Context, ticker string) ([]Headline, error) {
	query, ok := tickerQueries[ticker]
	if !ok {
		query = ticker
	}

	var body newsDataResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":   c.apiKey,
			"q":        query,
			"language": "en",
			"size":     strconv.Itoa(c.size),
			"category": "business",
		}).
		SetResult(&body).
		Get(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", ticker, err)
	}
	if resp.StatusCode() == 429 {
		return nil, fmt.Errorf("news API rate limit exceeded")
	}
	if resp.IsError() {
		return nil, fmt.Errorf("news API returned HTTP %d", resp.StatusCode())
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("news API error: %s", body.Message)
	}

	seen := make(map[string]bool, len(body.Results))
	headlines := make([]Headline, 0, len(body.Results))
	for _, r := range body.Results {
		if r.Title == "" || seen[r.Title] {
			continue
		}
		seen[r.Title] = true
		headlines = append(headlines, Headline{
			Title:       r.Title,
			Source:      r.SourceName,
			PublishedAt: r.PubDate,
		})
	}
	return headlines, nil
}

// News is a Provider that scores fetched headlines with the keyword model.
// Fetch failures degrade to neutral rather than failing the cycle.
type News struct {
	client *NewsClient
	scorer *KeywordScorer
}

// NewNews wires the news client to the keyword scorer.
func NewNews(client *NewsClient) *News {
	return &News{client: client, scorer: NewKeywordScorer()}
}

func (n *News) Score(ctx context.Context, ticker string) (float64, string, error) {
	headlines, err := n.client.Headlines(ctx, ticker)
	if err != nil {
		log.Printf("Warning: news fetch failed for %s, using neutral sentiment: %v", ticker, err)
		return 0.5, LabelNeutral, nil
	}
	score, label := n.scorer.Score(headlines)
	return score, label, nil
}
