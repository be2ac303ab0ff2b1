// Package relay fans inbound events out to every live SSE subscriber.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/angelmondragon/authdash-backend/pkg/logger"
	"github.com/angelmondragon/authdash-backend/pkg/metrics"
	"github.com/google/uuid"
)

var errSubscriberClosed = errors.New("subscriber closed")

// PublishResult summarizes one fan-out pass.
type PublishResult struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Subscriber is one open event stream.
type Subscriber struct {
	id string

	mu     sync.Mutex
	w      http.ResponseWriter
	rc     *http.ResponseController
	closed bool
}

func (s *Subscriber) ID() string { return s.id }

func (s *Subscriber) write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSubscriberClosed
	}
	if _, err := s.w.Write(frame); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (s *Subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Broadcaster owns the ordered subscriber set. The zero value is not usable;
// construct with New.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers []*Subscriber

	logg    *logger.Logger
	metrics *metrics.RelayMetrics
}

func New(logg *logger.Logger, m *metrics.RelayMetrics) *Broadcaster {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Broadcaster{logg: logg, metrics: m}
}

// Subscribe writes the stream headers, flushes them and registers w.
func (b *Broadcaster) Subscribe(w http.ResponseWriter) (*Subscriber, error) {
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("stream flush unsupported: %w", err)
	}

	sub := &Subscriber{id: uuid.NewString(), w: w, rc: rc}

	b.mu.Lock()
	b.subscribers = append(b.subscribers, sub)
	b.metrics.SetSubscribers(len(b.subscribers))
	b.mu.Unlock()

	return sub, nil
}

// Unsubscribe drops sub from the set. Once it returns no further frame is
// written to sub. Calling it twice is harmless.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	sub.close()

	b.mu.Lock()
	for i, s := range b.subscribers {
		if s == sub {
			b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
			break
		}
	}
	b.metrics.SetSubscribers(len(b.subscribers))
	b.mu.Unlock()
}

// Len reports the number of registered subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Publish serializes payload once and writes it to every subscriber in
// registration order. Per-subscriber failures are logged and counted.
func (b *Broadcaster) Publish(ctx context.Context, payload any) PublishResult {
	body, err := json.Marshal(payload)
	if err != nil {
		b.logg.Error(ctx, "relay payload not serializable", err)
		return PublishResult{}
	}
	frame := make([]byte, 0, len(body)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, body...)
	frame = append(frame, "\n\n"...)

	b.mu.Lock()
	targets := make([]*Subscriber, len(b.subscribers))
	copy(targets, b.subscribers)
	b.mu.Unlock()

	result := PublishResult{Attempted: len(targets)}
	for _, sub := range targets {
		if err := sub.write(frame); err != nil {
			if errors.Is(err, errSubscriberClosed) {
				result.Attempted--
				continue
			}
			result.Failed++
			b.logg.Warn(b.logg.WithSubscriberID(ctx, sub.id), "relay delivery failed: "+err.Error())
			continue
		}
		result.Delivered++
	}

	b.metrics.ObservePublish(result.Delivered, result.Failed)
	b.logg.Debug(b.logg.WithFields(ctx, map[string]any{
		"attempted": result.Attempted,
		"delivered": result.Delivered,
		"failed":    result.Failed,
	}), "relay event published")
	return result
}
