package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/randalmurphal/ragloop/pkg/ragloop"
)

const tavilyBaseURL = "https://api.tavily.com"

// TavilyClient searches the web through the Tavily Search API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// TavilyOption configures a TavilyClient.
type TavilyOption func(*TavilyClient)

// WithTavilyBaseURL overrides the API base URL. Used in tests.
func WithTavilyBaseURL(u string) TavilyOption {
	return func(c *TavilyClient) { c.baseURL = u }
}

// WithTavilyHTTPClient overrides the HTTP client.
func WithTavilyHTTPClient(hc *http.Client) TavilyOption {
	return func(c *TavilyClient) { c.httpClient = hc }
}

// WithTavilyMaxResults caps the number of results per search.
func WithTavilyMaxResults(n int) TavilyOption {
	return func(c *TavilyClient) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// NewTavilyClient creates a Tavily search client. An empty apiKey yields a
// client whose Available reports false.
func NewTavilyClient(apiKey string, opts ...TavilyOption) *TavilyClient {
	c := &TavilyClient{
		apiKey:     apiKey,
		baseURL:    tavilyBaseURL,
		maxResults: 3,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether an API key is configured.
func (c *TavilyClient) Available() bool {
	return c.apiKey != ""
}

// tavilyRequest is the Tavily /search request body.
type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

// tavilyResponse is the subset of the Tavily /search response we consume.
type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// tavilyError is the Tavily error envelope.
type tavilyError struct {
	Detail struct {
		Error string `json:"error"`
	} `json:"detail"`
}

// Search performs a basic-depth Tavily search and converts the results to
// passages keyed by result URL.
func (c *TavilyClient) Search(ctx context.Context, query string) ([]ragloop.Passage, error) {
	if !c.Available() {
		return nil, fmt.Errorf("tavily api key is not configured")
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      c.apiKey,
		Query:       query,
		SearchDepth: "basic",
		MaxResults:  c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr tavilyError
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Detail.Error != "" {
			return nil, fmt.Errorf("tavily api error (status %d): %s", resp.StatusCode, apiErr.Detail.Error)
		}
		return nil, fmt.Errorf("tavily unexpected status %d", resp.StatusCode)
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	passages := make([]ragloop.Passage, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Content == "" {
			continue
		}
		passages = append(passages, ragloop.Passage{
			Text:     r.Content,
			SourceID: r.URL,
		})
	}
	return passages, nil
}
