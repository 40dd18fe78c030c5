package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
)

// Delivery records the result of sending one message through one notifier.
type Delivery struct {
	Notifier string `json:"notifier"`
	Kind     Kind   `json:"kind"`
	Status   int    `json:"status,omitempty"`
	OK       bool   `json:"ok"`
}

// Publisher posts a report, and on the callout weekday the callout message,
// to every configured notifier.
type Publisher struct {
	notifiers  []Notifier
	calloutDay time.Weekday
	now        func() time.Time
	logger     *slog.Logger
}

// NewPublisher creates a publisher that sends callouts on calloutDay.
func NewPublisher(notifiers []Notifier, calloutDay time.Weekday, logger *slog.Logger) *Publisher {
	return &Publisher{
		notifiers:  notifiers,
		calloutDay: calloutDay,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock replaces the publisher's time source.
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	p.now = now
	return p
}

// Enabled reports whether any notifier is configured.
func (p *Publisher) Enabled() bool {
	return len(p.notifiers) > 0
}

// Publish sends the report. Rejected messages are logged and skipped;
// transport failures are returned.
func (p *Publisher) Publish(ctx context.Context, rep *model.Report) ([]Delivery, error) {
	if !p.Enabled() {
		p.logger.Info("no notifier configured, report not sent")
		return nil, nil
	}

	messages := []Message{{Kind: KindReport, Text: ReportText(rep), Report: rep}}
	if len(rep.Callouts) > 0 && p.now().Weekday() == p.calloutDay {
		messages = append(messages, Message{Kind: KindCallout, Text: CalloutText(rep.Callouts), Report: rep})
	}

	var deliveries []Delivery
	for _, msg := range messages {
		for _, n := range p.notifiers {
			d, err := p.send(ctx, n, msg)
			if err != nil {
				return deliveries, err
			}
			deliveries = append(deliveries, d)
		}
	}
	return deliveries, nil
}

func (p *Publisher) send(ctx context.Context, n Notifier, msg Message) (Delivery, error) {
	d := Delivery{Notifier: n.Name(), Kind: msg.Kind}

	err := n.Send(ctx, msg)
	var statusErr *StatusError
	switch {
	case err == nil:
		d.OK = true
		p.logger.Info("message sent", "notifier", d.Notifier, "kind", msg.Kind)
		return d, nil
	case errors.As(err, &statusErr):
		d.Status = statusErr.Code
		p.logger.Warn(fmt.Sprintf("HTTP %d: %s", statusErr.Code, statusErr.Body),
			"notifier", d.Notifier,
			"kind", msg.Kind,
			"status", statusErr.Code,
		)
		return d, nil
	default:
		return d, fmt.Errorf("%s %s message: %w", d.Notifier, msg.Kind, err)
	}
}

// ReportText renders report sections as a single code block.
func ReportText(rep *model.Report) string {
	parts := make([]string, 0, len(rep.Sections)+1)
	for _, s := range rep.Sections {
		if s.Title == "" {
			parts = append(parts, s.Body)
			continue
		}
		parts = append(parts, s.Title+"\n\n"+s.Body)
	}
	if rep.Trend != "" {
		parts = append(parts, rep.Trend)
	}
	return "```\n" + strings.Join(parts, "\n\n") + "\n```"
}

// CalloutText renders the callout list as Slack user mentions.
func CalloutText(callouts []model.Callout) string {
	mentions := make([]string, 0, len(callouts))
	for _, c := range callouts {
		mentions = append(mentions, "<@"+c.Mention+">")
	}
	return "Expensive People: " + strings.Join(mentions, " ")
}
