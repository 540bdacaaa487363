package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable is returned when the client has no API key configured.
// Callers decide whether to degrade to a fallback or abort.
var ErrUnavailable = errors.New("llm: capability not configured")

// #region wire-types
// Message is one chat message in an OpenAI-compatible request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
// #endregion wire-types

// #region client-struct
// Client talks to an OpenAI-compatible completion/embedding endpoint
// (OpenRouter by default). Both calls are synchronous and fallible;
// cancellation belongs to the caller via ctx.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	chatModel  string
	embedModel string
}
// #endregion client-struct

// #region constructor
// NewClient creates a Client. An empty apiKey yields ErrUnavailable on use.
func NewClient(baseURL, apiKey, chatModel, embedModel string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		chatModel:  chatModel,
		embedModel: embedModel,
	}
}
// #endregion constructor

// #region complete
// Complete sends a single-prompt chat completion and returns the text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrUnavailable
	}

	var resp chatResponse
	req := chatRequest{
		Model:       c.chatModel,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: 0.3,
	}
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("completion: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
// #endregion complete

// #region embed
// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.apiKey == "" {
		return nil, ErrUnavailable
	}

	var resp embedResponse
	if err := c.post(ctx, "/embeddings", embedRequest{Model: c.embedModel, Input: text}, &resp); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("embed: %s", resp.Error.Message)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embed: empty data")
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, f := range resp.Data[0].Embedding {
		vec[i] = float32(f)
	}
	return vec, nil
}
// #endregion embed

// #region transport
func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
// #endregion transport
