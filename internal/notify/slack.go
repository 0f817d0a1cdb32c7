package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrDisabled = errors.New("slack disabled")

// Slack posts to an incoming webhook.
type Slack struct {
	Webhook string
	Client  *http.Client
}

// NewSlack returns nil for an empty webhook so callers can skip wiring it.
func NewSlack(webhook string) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{Webhook: webhook, Client: &http.Client{Timeout: 10 * time.Second}}
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type string    `json:"type"`
	Text slackText `json:"text"`
}

// slackMessage carries a plain fallback for notifications plus header and
// body blocks for the channel view.
type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

func newSlackMessage(m Message) slackMessage {
	out := slackMessage{
		Text:   "*" + m.Title + "*\n" + m.Text(),
		Blocks: []slackBlock{{Type: "header", Text: slackText{Type: "plain_text", Text: m.Title}}},
	}
	if len(m.Lines) > 0 {
		out.Blocks = append(out.Blocks, slackBlock{
			Type: "section",
			Text: slackText{Type: "mrkdwn", Text: "```" + m.Text() + "```"},
		})
	}
	return out
}

func (s *Slack) Notify(ctx context.Context, m Message) error {
	if s == nil || s.Webhook == "" {
		return ErrDisabled
	}
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(newSlackMessage(m)); err != nil {
		return fmt.Errorf("slack: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, &body)
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
