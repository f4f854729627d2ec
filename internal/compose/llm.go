package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cobaltline/outreach/internal/config"
)

// Generator is the swappable drafting backend. Absence (nil) or failure is
// never fatal; the composer degrades to the template draft.
type Generator interface {
	Draft(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// OpenAIGenerator drafts through any OpenAI-compatible chat completions API.
type OpenAIGenerator struct {
	BaseURL string
	APIKey  string
	model   string
	Client  *http.Client
}

// NewOpenAIGenerator returns a generator from config, or nil when no backend
// is configured (nil is a valid composer input).
func NewOpenAIGenerator(cfg config.LLMConfig) *OpenAIGenerator {
	if cfg.APIKey == "" || cfg.BaseURL == "" {
		return nil
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIGenerator{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		model:   model,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *OpenAIGenerator) Model() string { return g.model }

// Draft sends one stateless chat completion request and returns the text.
func (g *OpenAIGenerator) Draft(ctx context.Context, system, prompt string) (string, error) {
	reqBody := map[string]any{
		"model": g.model,
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	url := strings.TrimSuffix(g.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("drafting backend returned %d", resp.StatusCode)
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", err
	}
	if len(apiResp.Choices) == 0 {
		return "", errors.New("drafting backend returned no choices")
	}
	text := strings.TrimSpace(apiResp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("drafting backend returned empty text")
	}
	return text, nil
}
