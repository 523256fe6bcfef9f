// Package replyclient talks to an optional companion reply service.
// The service holds its own conversation state keyed by session id; the
// client posts one user message at a time and receives the assistant
// reply plus the updated transcript.
package replyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Turn is one transcript entry as the reply service stores it.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the reply service's answer to a chat request.
type ChatResponse struct {
	SessionID    string `json:"session_id"`
	Reply        string `json:"reply"`
	Conversation []Turn `json:"conversation,omitempty"`
	AudioFile    string `json:"audio_file,omitempty"`
	AudioURL     string `json:"audio_url,omitempty"`
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client is an HTTP client for the reply service.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Chat posts a user message. An empty sessionID asks the service to
// open a new conversation; the returned response carries the id to use
// for followups.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (*ChatResponse, error) {
	body, err := json.Marshal(chatRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reply service unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("reply service: %s", errResp.Error)
		}
		return nil, fmt.Errorf("reply service returned status %d", resp.StatusCode)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return nil, fmt.Errorf("malformed reply service response: %w", err)
	}
	return &chatResp, nil
}

// Health reports whether the reply service is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reply service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reply service returned status %d", resp.StatusCode)
	}
	return nil
}
