package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Source is one grounding article echoed back with an answer.
type Source struct {
	Document string `json:"document"`
	Metadata struct {
		ArticleNumber string `json:"article_number"`
		ArticleHeader string `json:"article_header"`
	} `json:"metadata"`
}

// AskResponse is the query service's answer payload.
type AskResponse struct {
	Answer           string   `json:"answer"`
	RetrievedSources []Source `json:"retrieved_sources"`
}

// Client talks to the query service over its HTTP contract.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a client for the service at baseURL. The timeout must
// cover a full generation round trip.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 150 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Ask sends one question and decodes the answer.
func (c *Client) Ask(query string) (*AskResponse, error) {
	body, err := json.Marshal(map[string]string{"query_text": query})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Detail != "" {
			return nil, fmt.Errorf("%s", errBody.Detail)
		}
		return nil, fmt.Errorf("query failed: %s", resp.Status)
	}

	var out AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
