package grid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"gridbot/clients"
)

const (
	textGenerationPath = "/api/v2/generate/text/async"
	textStatusPath     = "/api/v2/generate/text/status"
	clientAgent        = "GridRAGBot:1.0"

	defaultPollInterval = 3 * time.Second
	defaultMaxWait      = 120 * time.Second
)

// GridClient implements clients.CompletionClient against the AI Power Grid
// asynchronous text generation API: submit returns a generation ID, then the
// status endpoint is polled until done, faulted, or the wait budget runs out.
type GridClient struct {
	httpClient   *http.Client
	apiKey       string
	model        string
	baseURL      string
	pollInterval time.Duration
	maxWait      time.Duration
}

// submitRequest is the async generation request payload
type submitRequest struct {
	Prompt string           `json:"prompt"`
	Params generationParams `json:"params"`
	Models []string         `json:"models"`
}

type generationParams struct {
	MaxLength        int      `json:"max_length"`
	MaxContextLength int      `json:"max_context_length"`
	Temperature      float64  `json:"temperature"`
	RepPen           float64  `json:"rep_pen"`
	TopP             float64  `json:"top_p"`
	TopK             int      `json:"top_k"`
	StopSequence     []string `json:"stop_sequence"`
}

type submitResponse struct {
	ID string `json:"id"`
}

type generation struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

type statusResponse struct {
	Done           bool         `json:"done"`
	Faulted        bool         `json:"faulted"`
	FaultedMessage string       `json:"faulted_message"`
	Generations    []generation `json:"generations"`
	Waiting        int          `json:"waiting"`
	Processing     int          `json:"processing"`
	Finished       int          `json:"finished"`
}

// NewGridClient creates a new Grid completion client
func NewGridClient(httpClient *http.Client, apiKey, model, baseURL string) clients.CompletionClient {
	return &GridClient{
		httpClient:   httpClient,
		apiKey:       apiKey,
		model:        model,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		pollInterval: defaultPollInterval,
		maxWait:      defaultMaxWait,
	}
}

// Complete submits a generation request and polls until the text is ready
func (c *GridClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("grid API key not configured")
	}

	generationID, err := c.submitGeneration(ctx, prompt)
	if err != nil {
		return "", err
	}
	log.Printf("🧠 Grid generation request submitted with ID: %s", generationID)

	text, err := c.pollForResult(ctx, generationID)
	if err != nil {
		return "", err
	}

	return NormalizeText(text), nil
}

func (c *GridClient) submitGeneration(ctx context.Context, prompt string) (string, error) {
	reqBody := submitRequest{
		Prompt: prompt,
		Params: generationParams{
			MaxLength:        1024,
			MaxContextLength: 8192,
			Temperature:      0.7,
			RepPen:           1.1,
			TopP:             0.92,
			TopK:             100,
			StopSequence:     []string{"<|endoftext|>"},
		},
		Models: []string{c.model},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+textGenerationPath, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create generation request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit generation request: %w", err)
	}
	defer resp.Body.Close()

	// 202 is the expected success code for async submissions
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("grid API error (%d): %s", resp.StatusCode, string(body))
	}

	var submitResp submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	if submitResp.ID == "" {
		return "", fmt.Errorf("no generation ID received")
	}

	return submitResp.ID, nil
}

func (c *GridClient) pollForResult(ctx context.Context, generationID string) (string, error) {
	deadline := time.Now().Add(c.maxWait)
	attempts := 0
	maxAttempts := int(c.maxWait / c.pollInterval)

	for time.Now().Before(deadline) {
		attempts++

		if attempts > 1 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("grid polling cancelled: %w", ctx.Err())
			case <-time.After(c.pollInterval):
			}
		}

		status, err := c.fetchStatus(ctx, generationID)
		if err != nil {
			return "", err
		}

		switch {
		case status.Done:
			if len(status.Generations) == 0 {
				return "", fmt.Errorf("no generations found")
			}
			if status.Generations[0].Text == "" {
				return "", fmt.Errorf("generated text is empty")
			}
			log.Printf("🧠 Grid generation %s completed after %d polls", generationID, attempts)
			return status.Generations[0].Text, nil
		case status.Faulted:
			if status.FaultedMessage != "" {
				return "", fmt.Errorf("grid generation faulted: %s", status.FaultedMessage)
			}
			return "", fmt.Errorf("grid generation faulted")
		default:
			log.Printf("🧠 Grid generation %s in progress (%d/%d): %d waiting, %d processing, %d finished",
				generationID, attempts, maxAttempts, status.Waiting, status.Processing, status.Finished)
		}
	}

	return "", fmt.Errorf("grid polling timed out after %s", c.maxWait)
}

func (c *GridClient) fetchStatus(ctx context.Context, generationID string) (*statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+textStatusPath+"/"+generationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch generation status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("grid status error (%d): %s", resp.StatusCode, string(body))
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}

	return &status, nil
}

func (c *GridClient) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Client-Agent", clientAgent)
}

var midWordNewlineRegex = regexp.MustCompile(`(\S)\n(\S)`)

// NormalizeText cleans up Grid API output: newlines that break words
// mid-sentence become spaces, and CR/LF variants are normalized.
// Paragraph breaks are preserved.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	normalized := midWordNewlineRegex.ReplaceAllString(text, "$1 $2")
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	return strings.TrimSpace(normalized)
}
