package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"fitness-arena-system/services"
)

// NotifierClient forwards domain events (verdicts, tier changes, challenge
// completions) to the notification service so athletes get pushed updates.
type NotifierClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewNotifierClient() *NotifierClient {
	baseURL := os.Getenv("NOTIFY_SERVICE_URL")
	if baseURL == "" {
		log.Println("⚠️ NOTIFY_SERVICE_URL not set — notifications disabled")
		return nil
	}
	token := os.Getenv("FITNESS_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("FITNESS_SERVICE_TOKEN environment variable is required for notifier")
	}

	return &NotifierClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *NotifierClient) send(ctx context.Context, ev services.DomainEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/api/v1/internal/notifications", c.BaseURL),
		bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call notify service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notify service returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Run drains the event bus until the context is cancelled or the bus closes.
// Delivery is best-effort: a failed POST is logged and the event dropped, the
// notification service is not a source of truth.
func Run(ctx context.Context, client *NotifierClient, events <-chan services.DomainEvent) {
	if client == nil {
		log.Println("➡️ Notifier disabled, draining events.")
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
			}
		}
	}

	log.Println("Starting notifier worker...")
	for {
		select {
		case <-ctx.Done():
			log.Println("Notifier worker stopped.")
			return
		case ev, ok := <-events:
			if !ok {
				log.Println("Event bus closed, notifier exiting.")
				return
			}
			if err := client.send(ctx, ev); err != nil {
				log.Printf("❌ Failed to deliver %s event for athlete %s: %v", ev.Type, ev.AthleteID, err)
				continue
			}
			log.Printf("📤 Delivered %s event for athlete %s", ev.Type, ev.AthleteID)
		}
	}
}
