package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const groqDefaultBaseURL = "https://api.groq.com/openai/v1/chat/completions"

// GroqClient calls the Groq Chat Completions API (OpenAI-compatible) and asks for JSON.
// See: https://console.groq.com/docs/api-reference
type GroqClient struct {
	http        *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float32
}

func NewGroqClient(opts Options) (*GroqClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("groq: api key is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = groqDefaultBaseURL
	}
	return &GroqClient{
		http:        hc,
		apiKey:      opts.APIKey,
		model:       opts.Model,
		baseURL:     base,
		temperature: opts.temperature(),
	}, nil
}

func (g *GroqClient) Name() string  { return "Groq:" + g.model }
func (g *GroqClient) Model() string { return g.model }
func (g *GroqClient) Close() error  { return nil }

type groqChatReq struct {
	Model          string            `json:"model"`
	Messages       []groqMessage     `json:"messages"`
	Temperature    float32           `json:"temperature,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}
type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type groqChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateText sends prompt as a single user message and requests a JSON object.
func (g *GroqClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	reqBody := groqChatReq{
		Model:          g.model,
		Messages:       []groqMessage{{Role: "user", Content: prompt}},
		Temperature:    g.temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("groq: unexpected status %s: %s", resp.Status, string(body))
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return "", NewPermanentError(errors.Join(ErrModelNotFound, err))
		case resp.StatusCode == http.StatusTooManyRequests:
			return "", errors.Join(ErrQuotaExceeded, err)
		case resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), `"code":"model_decommissioned"`):
			return "", NewPermanentError(errors.Join(ErrModelNotFound, err))
		}
		return "", err
	}
	var out groqChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
