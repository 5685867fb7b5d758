package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// pushBatchSize is the relay's per-request recipient limit.
const pushBatchSize = 100

// PushMessage is one push notification addressed to a device token.
type PushMessage struct {
	To    string            `json:"to"`
	Sound string            `json:"sound"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// PushSender delivers one batch of push messages. No delivery receipts are
// tracked.
type PushSender interface {
	Send(ctx context.Context, messages []PushMessage) error
}

// HTTPPushSender posts message batches to an Expo-compatible push relay.
type HTTPPushSender struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPPushSender creates a push sender for the given relay endpoint.
func NewHTTPPushSender(endpoint string) *HTTPPushSender {
	return &HTTPPushSender{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Send posts one batch as a JSON array.
func (s *HTTPPushSender) Send(ctx context.Context, messages []PushMessage) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("push relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push relay returned status %d", resp.StatusCode)
	}
	return nil
}
