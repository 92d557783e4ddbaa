package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/randalmurphal/ragloop/pkg/ragloop"
)

const duckDuckGoBaseURL = "https://api.duckduckgo.com"

// DuckDuckGoClient searches the web through the free DuckDuckGo Instant
// Answer API. It needs no API key, which makes it the default fallback, but
// it only covers instant-answer style queries.
type DuckDuckGoClient struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// DuckDuckGoOption configures a DuckDuckGoClient.
type DuckDuckGoOption func(*DuckDuckGoClient)

// WithDuckDuckGoBaseURL overrides the API base URL. Used in tests.
func WithDuckDuckGoBaseURL(u string) DuckDuckGoOption {
	return func(c *DuckDuckGoClient) { c.baseURL = u }
}

// WithDuckDuckGoHTTPClient overrides the HTTP client.
func WithDuckDuckGoHTTPClient(hc *http.Client) DuckDuckGoOption {
	return func(c *DuckDuckGoClient) { c.httpClient = hc }
}

// WithDuckDuckGoMaxResults caps the number of passages per search.
func WithDuckDuckGoMaxResults(n int) DuckDuckGoOption {
	return func(c *DuckDuckGoClient) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// NewDuckDuckGoClient creates a DuckDuckGo instant-answer client.
func NewDuckDuckGoClient(opts ...DuckDuckGoOption) *DuckDuckGoClient {
	c := &DuckDuckGoClient{
		baseURL:    duckDuckGoBaseURL,
		maxResults: 3,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available always reports true; the instant-answer API needs no key.
func (c *DuckDuckGoClient) Available() bool { return true }

// ddgResponse is the subset of the Instant Answer response we consume.
type ddgResponse struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Answer        string `json:"Answer"`
	Definition    string `json:"Definition"`
	DefinitionURL string `json:"DefinitionURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// Search queries the Instant Answer API and converts abstracts, answers,
// definitions, and related topics into passages keyed by source URL.
func (c *DuckDuckGoClient) Search(ctx context.Context, query string) ([]ragloop.Passage, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("no_html", "1")
	params.Add("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "ragloop-websearch/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("duckduckgo unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed ddgResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var passages []ragloop.Passage
	add := func(text, source string) {
		if text == "" || len(passages) >= c.maxResults {
			return
		}
		if source == "" {
			source = "duckduckgo:" + query
		}
		passages = append(passages, ragloop.Passage{Text: text, SourceID: source})
	}

	add(parsed.AbstractText, parsed.AbstractURL)
	add(parsed.Answer, "")
	add(parsed.Definition, parsed.DefinitionURL)
	for _, topic := range parsed.RelatedTopics {
		add(topic.Text, topic.FirstURL)
	}
	return passages, nil
}
