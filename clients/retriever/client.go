package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"gridbot/models"
)

// RetrieverClient queries the knowledge-base retrieval service for
// snippets relevant to an incoming message.
type RetrieverClient struct {
	httpClient *http.Client
	baseURL    string
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type queryResponse struct {
	Results []struct {
		Text   string  `json:"text"`
		Score  float64 `json:"score"`
		Source string  `json:"source"`
	} `json:"results"`
}

func NewRetrieverClient(baseURL string) *RetrieverClient {
	return &RetrieverClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}

func (c *RetrieverClient) RelevantContext(ctx context.Context, query string, topK int) ([]models.RetrievedSnippet, error) {
	log.Printf("📋 Starting retrieval query (top_k: %d)", topK)

	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got: %d", topK)
	}

	body, err := json.Marshal(queryRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create retrieval request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query retrieval service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retrieval service returned status %d", resp.StatusCode)
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode retrieval response: %w", err)
	}

	snippets := make([]models.RetrievedSnippet, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		snippets = append(snippets, models.RetrievedSnippet{
			Text:   r.Text,
			Score:  r.Score,
			Source: r.Source,
		})
	}

	log.Printf("📋 Completed successfully - retrieved %d snippets", len(snippets))
	return snippets, nil
}
