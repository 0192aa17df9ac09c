// Package notify delivers restart-compensation notices to players.
//
// The ranked service only knows the ranked.Notifier interface; this package
// provides a webhook implementation (the chat front end posts the message to
// the player's channel) and a fan-out that also keeps the log record.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordl-ranked/internal/ranked"
)

// Message is the JSON body posted to the webhook.
type Message struct {
	Kind      string `json:"kind"`
	PlayerID  string `json:"playerId"`
	ChannelID string `json:"channelId"`
	Text      string `json:"text"`
	Delta     int    `json:"delta"`
	Elo       int    `json:"elo"`
}

// Text renders the player-facing notice for c.
func Text(c ranked.Compensation) string {
	return fmt.Sprintf(
		"Your ranked game was interrupted by a restart after %d guesses. You have been compensated +%d elo (now %d).",
		c.Guesses, c.Delta, c.Elo)
}

// Webhook POSTs compensation notices to a URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook returns a Webhook posting to url. A nil client gets a 5s timeout.
func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Webhook{url: url, client: client}
}

// NotifyCompensation implements ranked.Notifier.
func (w *Webhook) NotifyCompensation(ctx context.Context, c ranked.Compensation) error {
	body, err := json.Marshal(Message{
		Kind:      "ranked_compensation",
		PlayerID:  c.PlayerID,
		ChannelID: c.ChannelID,
		Text:      Text(c),
		Delta:     c.Delta,
		Elo:       c.Elo,
	})
	if err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify webhook returned %s", resp.Status)
	}
	log.Debug().Str("player", c.PlayerID).Str("channel", c.ChannelID).Msg("compensation notice delivered")
	return nil
}

// Fanout sends to every notifier and joins their errors.
type Fanout []ranked.Notifier

// NotifyCompensation implements ranked.Notifier.
func (f Fanout) NotifyCompensation(ctx context.Context, c ranked.Compensation) error {
	var errs []error
	for _, n := range f {
		if err := n.NotifyCompensation(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromURL returns the log notifier, plus a webhook when url is set.
func FromURL(url string) ranked.Notifier {
	if url == "" {
		return ranked.LogNotifier{}
	}
	return Fanout{ranked.LogNotifier{}, NewWebhook(url, nil)}
}
