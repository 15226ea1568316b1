package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// DefaultTavilyEndpoint is the public Tavily search API.
const DefaultTavilyEndpoint = "https://api.tavily.com/search"

// #region tavily

// Tavily queries the Tavily JSON search API. Without an API key every
// search returns nothing.
type Tavily struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title      string  `json:"title"`
		URL        string  `json:"url"`
		Content    string  `json:"content"`
		RawContent string  `json:"raw_content"`
		Score      float64 `json:"score"`
	} `json:"results"`
}

// NewTavily creates a Tavily client. An empty endpoint uses the public API.
func NewTavily(apiKey, endpoint string, client *http.Client, logger *zap.Logger) *Tavily {
	if endpoint == "" {
		endpoint = DefaultTavilyEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tavily{apiKey: apiKey, endpoint: endpoint, client: client, logger: logger.Named("tavily")}
}

func (t *Tavily) Search(ctx context.Context, query string, limit int) []state.Page {
	if t.apiKey == "" || limit <= 0 {
		return nil
	}
	body, err := json.Marshal(tavilyRequest{APIKey: t.apiKey, Query: query, MaxResults: limit})
	if err != nil {
		t.logger.Warn("encode request", zap.Error(err))
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		t.logger.Warn("build request", zap.Error(err))
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.logger.Warn("search failed", zap.String("query", query), zap.Int("status", resp.StatusCode))
		return nil
	}

	var data tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		t.logger.Warn("decode response", zap.String("query", query), zap.Error(err))
		return nil
	}

	pages := make([]state.Page, 0, len(data.Results))
	for _, r := range data.Results {
		if len(pages) == limit {
			break
		}
		pages = append(pages, state.Page{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Query:   query,
		})
	}
	return pages
}

// #endregion tavily
