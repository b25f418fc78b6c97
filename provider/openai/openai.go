package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/bullbear/internal/telemetry"
)

const defaultBaseURL = "https://api.openai.com/v1"

// client implements the provider interface using OpenAI's chat completions API
type client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// request represents a request to the OpenAI API
type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// response represents a response from the OpenAI API
type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates a new OpenAI client. An empty baseURL targets the public
// API; set it to point at a compatible gateway.
func NewClient(apiKey, baseURL, model string, temperature float64, maxTokens int, timeout time.Duration) *client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &client{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Complete sends one chat completion with an optional system prompt and
// returns the raw response text.
func (c *client) Complete(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	msgs := make([]Message, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, Message{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, Message{Role: "user", Content: prompt})

	body, err := json.Marshal(request{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	telemetry.OracleLatency.WithLabelValues("openai").Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.OracleCalls.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		telemetry.OracleCalls.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		telemetry.OracleCalls.WithLabelValues("openai", "error").Inc()
		if out.Error != nil {
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("API returned status: %d", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		telemetry.OracleCalls.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("API returned no choices")
	}

	telemetry.OracleCalls.WithLabelValues("openai", "ok").Inc()
	telemetry.OracleTokens.WithLabelValues("openai", "prompt").Add(float64(out.Usage.PromptTokens))
	telemetry.OracleTokens.WithLabelValues("openai", "completion").Add(float64(out.Usage.CompletionTokens))
	return out.Choices[0].Message.Content, nil
}
