package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chanuu123/Dial-100-Automation/internal/call"
)

// OllamaClient generates agent replies via a local Ollama daemon.
type OllamaClient struct {
	HTTPClient *http.Client
	BaseURL    string
	Model      string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

func NewOllamaClient(baseURL, model string) *OllamaClient {
	return &OllamaClient{
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
	}
}

// Generate sends the fixed system instruction plus the full history and
// returns the single next agent utterance.
func (c *OllamaClient) Generate(ctx context.Context, history []call.Turn) (string, error) {
	messages := make([]chatMessage, 0, len(history)+1)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, t := range history {
		role := "user"
		if t.Role == call.RoleAgent {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: t.Text})
	}
	return c.chat(ctx, messages)
}

// Complete runs a single-shot prompt with no history or system instruction.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, []chatMessage{{Role: "user", Content: prompt}})
}

func (c *OllamaClient) chat(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody, _ := json.Marshal(chatRequest{Model: c.Model, Messages: messages})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("%w: %v", call.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", call.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: ollama status=%d body=%s", call.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("%w: decode: %v", call.ErrUpstream, err)
	}
	answer := strings.TrimSpace(cr.Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: ollama returned empty reply", call.ErrUpstream)
	}
	return answer, nil
}
