package alerts

import (
	"context"
	"net/http"
)

// SlackNotifier posts messages to a Slack incoming webhook. Slack answers 200
// on success; anything else is a rejection.
type SlackNotifier struct {
	webhookURL string
	channel    string
	client     *http.Client
}

// NewSlackNotifier creates a Slack webhook notifier. channel may be empty to
// use the webhook's default channel.
func NewSlackNotifier(webhookURL, channel string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		client:     newHTTPClient(),
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Send(ctx context.Context, msg Message) error {
	payload := slackPayload{Channel: s.channel, Text: msg.Text}
	return postJSON(ctx, s.client, s.Name(), s.webhookURL, payload, nil, func(code int) bool {
		return code == http.StatusOK
	})
}

type slackPayload struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}
