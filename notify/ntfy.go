// Package notify pushes batch summaries to an ntfy topic
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mindscape/config"
	"mindscape/optimizer"
)

// Message is one ntfy notification. The body is sent as is, the rest as
// headers.
type Message struct {
	Title    string
	Body     string
	Tags     []string
	Priority int
}

// Sender posts messages to {server}/{topic}
type Sender struct {
	cfg    config.NotifyConfig
	client *http.Client
}

// NewSender creates a sender. It is a no-op when notifications are disabled.
func NewSender(cfg config.NotifyConfig) *Sender {
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether messages will be sent
func (s *Sender) Enabled() bool {
	return s.cfg.Enabled && s.cfg.Topic != ""
}

// SummaryMessage builds the notification for a finished batch. Failures
// raise the priority and switch the tag.
func SummaryMessage(summary optimizer.Summary) Message {
	failed := summary.Failed + summary.SVGFailed + summary.FaviconFailed

	var b strings.Builder
	fmt.Fprintf(&b, "Images: %d ok, %d failed\n", summary.Succeeded, summary.Failed)
	fmt.Fprintf(&b, "SVG: %d copied, %d failed\n", summary.SVGCopied, summary.SVGFailed)
	fmt.Fprintf(&b, "Favicons: %d written, %d failed", summary.FaviconsDone, summary.FaviconFailed)
	for _, r := range summary.Failures {
		fmt.Fprintf(&b, "\n✗ %s", r.Path)
	}

	if failed > 0 {
		return Message{
			Title:    fmt.Sprintf("Image optimization finished with %d failures", failed),
			Body:     b.String(),
			Tags:     []string{"warning"},
			Priority: 4,
		}
	}
	return Message{
		Title:    "Image optimization finished",
		Body:     b.String(),
		Tags:     []string{"white_check_mark"},
		Priority: 3,
	}
}

// SendSummary pushes the batch summary
func (s *Sender) SendSummary(ctx context.Context, summary optimizer.Summary) error {
	if !s.Enabled() {
		slog.Debug("ntfy notifications disabled")
		return nil
	}
	return s.Send(ctx, SummaryMessage(summary))
}

// Send posts msg to the configured topic
func (s *Sender) Send(ctx context.Context, msg Message) error {
	url := fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.Server, "/"), s.cfg.Topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(msg.Body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Title", msg.Title)
	if msg.Priority > 0 {
		req.Header.Set("Priority", fmt.Sprintf("%d", msg.Priority))
	}
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}

	slog.Debug("sending ntfy notification", "title", msg.Title, "topic", s.cfg.Topic)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}

	slog.Info("ntfy notification sent", "title", msg.Title)
	return nil
}
