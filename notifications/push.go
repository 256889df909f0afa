package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// PushService sends push notifications through an HTTP push-gateway API.
// Delivery is strictly best-effort: callers treat every failure as
// non-fatal, and this package never retries.
type PushService struct {
	URL    string
	APIKey string
	Client *http.Client
}

type pushPayload struct {
	UserID uint              `json:"user_id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// NewPushService returns a configured sender, or nil when the gateway is
// not configured. A nil *PushService is a valid no-op dispatcher.
func NewPushService(url, apiKey string) *PushService {
	if url == "" || apiKey == "" {
		log.Println("notifications: push gateway not configured, notifications disabled")
		return nil
	}
	return &PushService{
		URL:    url,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Push delivers one notification to one user.
func (s *PushService) Push(userID uint, title, body string, data map[string]string) error {
	if s == nil {
		return nil
	}

	payload, err := json.Marshal(pushPayload{UserID: userID, Title: title, Body: body, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.URL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach push gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
