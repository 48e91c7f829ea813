package grammar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tessera-games/lingoquest/types"
)

// Client calls the grammar-check backend over HTTP.
type Client struct {
	BaseURL      string
	Language     string // target language code, e.g. "es"
	MotherTongue string
	Level        string // optional CEFR hint
	HTTPClient   *http.Client
}

// NewClient builds a client with a sane default timeout.
func NewClient(baseURL, language, motherTongue string) *Client {
	return &Client{
		BaseURL:      baseURL,
		Language:     language,
		MotherTongue: motherTongue,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

type checkRequest struct {
	Text         string `json:"text"`
	Language     string `json:"language"`
	MotherTongue string `json:"mother_tongue,omitempty"`
	Level        string `json:"level,omitempty"`
}

// Check posts the utterance to the backend's /grammar-check endpoint.
func (c *Client) Check(ctx context.Context, text string) (types.GrammarCheckResult, error) {
	body, err := json.Marshal(checkRequest{
		Text:         text,
		Language:     c.Language,
		MotherTongue: c.MotherTongue,
		Level:        c.Level,
	})
	if err != nil {
		return types.GrammarCheckResult{}, fmt.Errorf("encode grammar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/grammar-check", bytes.NewReader(body))
	if err != nil {
		return types.GrammarCheckResult{}, fmt.Errorf("build grammar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return types.GrammarCheckResult{}, fmt.Errorf("grammar check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.GrammarCheckResult{}, fmt.Errorf("grammar check: unexpected status %d", resp.StatusCode)
	}

	var result types.GrammarCheckResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return types.GrammarCheckResult{}, fmt.Errorf("decode grammar response: %w", err)
	}
	return result, nil
}
