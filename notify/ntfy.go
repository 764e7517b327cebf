package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"photofolio/config"
)

// NtfySender sends run notifications via ntfy.sh
type NtfySender struct {
	cfg    *config.NtfyConfig
	client *http.Client
}

// Message is a single ntfy notification
type Message struct {
	Title    string
	Body     string
	Tags     []string
	Priority int
	Actions  []Action
}

// Action is a clickable button on the notification
type Action struct {
	Action string `json:"action"` // "view" or "http"
	Label  string `json:"label"`
	URL    string `json:"url"`
}

// NewNtfySender creates a new ntfy sender
func NewNtfySender(cfg *config.Config) *NtfySender {
	return &NtfySender{
		cfg:    &cfg.Ntfy,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a topic is configured and notifications are on.
func (n *NtfySender) Enabled() bool {
	return n.cfg.Enabled && n.cfg.Topic != ""
}

// Succeeded reports a finished job. link, when set, becomes a "view" button.
func (n *NtfySender) Succeeded(ctx context.Context, job, summary, link string) error {
	msg := Message{
		Title:    fmt.Sprintf("📸 %s finished", job),
		Body:     summary,
		Tags:     []string{"white_check_mark"},
		Priority: 3,
	}
	if link != "" {
		msg.Actions = []Action{{Action: "view", Label: "Open", URL: link}}
	}
	return n.Send(ctx, msg)
}

// Failed reports a job that stopped with an error.
func (n *NtfySender) Failed(ctx context.Context, job string, runErr error) error {
	return n.Send(ctx, Message{
		Title:    fmt.Sprintf("❌ %s failed", job),
		Body:     runErr.Error(),
		Tags:     []string{"warning"},
		Priority: 4,
	})
}

// Send posts msg to the configured topic: body as message, metadata as headers.
func (n *NtfySender) Send(ctx context.Context, msg Message) error {
	if !n.Enabled() {
		return nil
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(n.cfg.Server, "/"), n.cfg.Topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(msg.Body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Title", msg.Title)
	if msg.Priority > 0 {
		req.Header.Set("Priority", strconv.Itoa(msg.Priority))
	}
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}
	if len(msg.Actions) > 0 {
		actionsJSON, err := json.Marshal(msg.Actions)
		if err != nil {
			return fmt.Errorf("failed to encode actions: %w", err)
		}
		req.Header.Set("Actions", string(actionsJSON))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}

	log.Printf("📱 ntfy notification sent: %s", msg.Title)
	return nil
}

// Report sends the outcome of a job and only logs delivery problems, so a
// broken notification channel never changes the job's result.
func (n *NtfySender) Report(ctx context.Context, job, summary, link string, runErr error) {
	var err error
	if runErr != nil {
		err = n.Failed(ctx, job, runErr)
	} else {
		err = n.Succeeded(ctx, job, summary, link)
	}
	if err != nil {
		log.Printf("⚠️  Notification failed: %v", err)
	}
}
