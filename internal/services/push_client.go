// internal/services/push_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/tailor-backend/internal/config"
)

// Expo accepts at most 100 messages per request.
const pushChunkSize = 100

var expoTokenPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[.+\]$`)

// Pusher delivers mobile push notifications.
type Pusher interface {
	Push(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

type PushMessage struct {
	To    string            `json:"to"`
	Sound string            `json:"sound"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type ExpoPushClient struct {
	url    string
	client *http.Client
}

func NewExpoPushClient(cfg config.PushConfig) *ExpoPushClient {
	return &ExpoPushClient{
		url:    cfg.ExpoURL,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func IsExpoPushToken(token string) bool {
	return expoTokenPattern.MatchString(token)
}

// Push sends one message per valid token. Invalid tokens and failed chunks
// are logged and skipped; the last chunk error is returned.
func (c *ExpoPushClient) Push(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	messages := make([]PushMessage, 0, len(tokens))
	for _, token := range tokens {
		if !IsExpoPushToken(token) {
			logrus.WithField("token", token).Warn("Skipping invalid Expo push token")
			continue
		}
		messages = append(messages, PushMessage{To: token, Sound: "default", Title: title, Body: body, Data: data})
	}

	var lastErr error
	for _, chunk := range chunkMessages(messages, pushChunkSize) {
		if err := c.send(ctx, chunk); err != nil {
			logrus.WithError(err).WithField("messages", len(chunk)).Error("Failed to send push notification chunk")
			lastErr = err
			continue
		}
		logrus.WithField("messages", len(chunk)).Debug("Push notification chunk sent")
	}
	return lastErr
}

func (c *ExpoPushClient) send(ctx context.Context, chunk []PushMessage) error {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("expo push returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}

func chunkMessages(messages []PushMessage, size int) [][]PushMessage {
	var chunks [][]PushMessage
	for len(messages) > 0 {
		n := size
		if len(messages) < n {
			n = len(messages)
		}
		chunks = append(chunks, messages[:n])
		messages = messages[n:]
	}
	return chunks
}

// pushAsync delivers in the background; the caller never waits on it.
func pushAsync(pusher Pusher, timeout time.Duration, tokens []string, title, body string, data map[string]string) {
	if pusher == nil || len(tokens) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := pusher.Push(ctx, tokens, title, body, data); err != nil {
			logrus.WithError(err).WithField("recipients", len(tokens)).Warn("Push delivery failed")
		}
	}()
}
