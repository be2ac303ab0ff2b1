package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/authdash-backend/internal/relay"
)

type broadcaster interface {
	Publish(ctx context.Context, payload any) relay.PublishResult
}

// RelaySink hands events to an in-process broadcaster.
type RelaySink struct {
	relay broadcaster
}

func NewRelaySink(b broadcaster) *RelaySink {
	return &RelaySink{relay: b}
}

func (s *RelaySink) Name() string { return "relay" }

func (s *RelaySink) Send(ctx context.Context, payload []byte) error {
	s.relay.Publish(ctx, json.RawMessage(payload))
	return nil
}

const responseBodyReadLimit int64 = 1024

// HTTPSink posts events to a standalone relay's /webhook endpoint.
type HTTPSink struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPSink targets baseURL. A zero timeout means no client timeout.
func NewHTTPSink(baseURL string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		endpoint:   strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/webhook",
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSink) Name() string { return "relay_http" }

func (s *HTTPSink) Send(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return fmt.Errorf("relay returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) *gcppubsub.PublishResult
}

// PubSubSink publishes events to a Google Cloud Pub/Sub topic.
type PubSubSink struct {
	publisher topicPublisher
}

func NewPubSubSink(p topicPublisher) *PubSubSink {
	return &PubSubSink{publisher: p}
}

func (s *PubSubSink) Name() string { return "pubsub" }

func (s *PubSubSink) Send(ctx context.Context, payload []byte) error {
	var head struct {
		Event string `json:"event"`
	}
	_ = json.Unmarshal(payload, &head)

	result := s.publisher.Publish(ctx, &gcppubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event": head.Event},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
