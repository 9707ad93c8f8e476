// Package summarize provides the best-effort generated-language summary of a
// detected change. Summarization is a capability interface: callers treat an
// error identically to an empty summary, and a failure never blocks the
// underlying change record.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harukimoto/driftwatch/internal/model"
)

// Request carries the change being summarized.
type Request struct {
	Name    string
	URL     string
	Snippet string
	Impact  model.Impact
}

// Summarizer produces a short summary of a diff. Implementations must be
// safe to call once per target per run.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// Noop always returns an empty summary. Used when no API key is configured.
type Noop struct{}

func (Noop) Summarize(context.Context, Request) (string, error) { return "", nil }

// Client calls an OpenAI-compatible chat-completions endpoint. Every call is
// bounded by the configured timeout.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a summarization client.
func NewClient(endpoint, apiKey, modelName string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      modelName,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// The prompt mirrors the operating posture of the whole system: describe
// only what the diff shows, never assert beyond it.
const promptTemplate = `You are a change-monitoring assistant for product owners.
Summarize the following diff (+/- lines) in exactly 3 lines.

Constraints:
- Exactly 3 lines, each at most ~80 characters.
- No definitive claims: use "appears to" / "may".
- No speculation or outside knowledge; only what the diff shows.

Target:
- name: %s
- url: %s
- impact: %s

Diff:
%s
`

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize requests a 3-line summary. Any transport, status or decode
// problem is returned as an error; callers degrade to "".
func (c *Client) Summarize(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(promptTemplate, req.Name, req.URL, req.Impact, req.Snippet)
	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := string(body)
		if len(detail) > 512 {
			detail = detail[:512]
		}
		return "", fmt.Errorf("summarize: HTTP %d: %s", resp.StatusCode, detail)
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("summarize: decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("summarize: empty response")
	}
	return clampLines(cr.Choices[0].Message.Content, 3), nil
}

// clampLines keeps at most n non-empty lines.
func clampLines(s string, n int) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			lines = append(lines, t)
		}
		if len(lines) == n {
			break
		}
	}
	return strings.Join(lines, "\n")
}
