package zephyr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shaharia-lab/zephyr/internal/build"
)

// webhookBody is the JSON wire format for webhook deliveries.
type webhookBody struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// webhookSender delivers events to remote HTTP endpoints. A 2xx response is
// success; anything else is retried with exponential backoff up to the
// listener's MaxRetries, each attempt bounded by its own timeout.
type webhookSender struct {
	client *http.Client
	logger *slog.Logger
}

func (s *webhookSender) deliver(ctx context.Context, d Descriptor, evt Event) Outcome {
	cfg := d.Webhook
	start := time.Now()

	body, err := json.Marshal(webhookBody{Type: evt.Type, Payload: evt.Payload})
	if err != nil {
		return Outcome{
			ListenerID: d.ID,
			Kind:       KindWebhook,
			Status:     StatusFailed,
			Err: &DeliveryFailure{
				ListenerID: d.ID,
				Kind:       KindWebhook,
				Err:        fmt.Errorf("encoding payload: %w", err),
			},
			Duration: time.Since(start),
		}
	}

	attempts := cfg.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(cfg.BackoffBase, cfg.MaxBackoff, attempt-1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return Outcome{
					ListenerID: d.ID,
					Kind:       KindWebhook,
					Status:     StatusFailed,
					Attempts:   attempt,
					Err: &DeliveryFailure{
						ListenerID: d.ID,
						Kind:       KindWebhook,
						Attempts:   attempt,
						Err:        ctx.Err(),
					},
					Duration: time.Since(start),
				}
			}
		}

		if err := s.attempt(ctx, cfg, body, evt.ID); err != nil {
			lastErr = err
			s.logger.Warn("webhook attempt failed",
				"listener_id", d.ID, "url", cfg.URL, "attempt", attempt+1, "error", err)
			continue
		}
		return Outcome{
			ListenerID: d.ID,
			Kind:       KindWebhook,
			Status:     StatusSuccess,
			Attempts:   attempt + 1,
			Duration:   time.Since(start),
		}
	}

	return Outcome{
		ListenerID: d.ID,
		Kind:       KindWebhook,
		Status:     StatusFailed,
		Attempts:   attempts,
		Err: &DeliveryFailure{
			ListenerID: d.ID,
			Kind:       KindWebhook,
			Attempts:   attempts,
			Err:        lastErr,
		},
		Duration: time.Since(start),
	}
}

// attempt performs a single webhook exchange. A nil return means a 2xx
// response; every failure mode comes back as a *TransportError.
func (s *webhookSender) attempt(ctx context.Context, cfg WebhookConfig, body []byte, eventID string) error {
	reqCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, cfg.Method, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return &TransportError{URL: cfg.URL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", build.UserAgent())
	req.Header.Set("X-Zephyr-Event-Id", eventID)
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &TransportError{URL: cfg.URL, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{URL: cfg.URL, Status: resp.StatusCode}
	}
	return nil
}

// backoffDelay returns base doubled once per failed attempt, capped at
// maxBackoff. The shift is overflow-guarded.
func backoffDelay(base, maxBackoff time.Duration, failedAttempt int) time.Duration {
	if failedAttempt > 62 {
		return maxBackoff
	}
	d := base << uint(failedAttempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
