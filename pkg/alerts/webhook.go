package alerts

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
)

// Headers set on every envelope delivery.
const (
	HeaderEvent     = "X-Spend-Event"
	HeaderDelivery  = "X-Spend-Delivery"
	HeaderSignature = "X-Signature-256"
)

// WebhookNotifier forwards reports to a generic HTTP endpoint as a JSON
// envelope carrying the rendered text and the report's accounts, sections
// and callout mentions. Any 2xx answer is success.
type WebhookNotifier struct {
	url    string
	secret []byte
	client *http.Client
	now    func() time.Time
}

// NewWebhookNotifier creates an envelope notifier. When secret is non-empty
// the body is signed with HMAC-SHA256 in the X-Signature-256 header.
func NewWebhookNotifier(url, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: []byte(secret),
		client: newHTTPClient(),
		now:    time.Now,
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

func (w *WebhookNotifier) Send(ctx context.Context, msg Message) error {
	env := NewEnvelope(msg, w.now())
	return postJSON(ctx, w.client, w.Name(), w.url, env, func(h http.Header, body []byte) {
		h.Set("User-Agent", "AWS-Spend-Reporter/1.0")
		h.Set(HeaderEvent, env.Event)
		h.Set(HeaderDelivery, env.ID)
		if len(w.secret) > 0 {
			h.Set(HeaderSignature, Sign(w.secret, body))
		}
	}, func(code int) bool {
		return code >= 200 && code < 300
	})
}

// Envelope is the body posted by WebhookNotifier.
type Envelope struct {
	ID     string          `json:"id"`
	Event  string          `json:"event"`
	SentAt time.Time       `json:"sent_at"`
	Text   string          `json:"text"`
	Report *EnvelopeReport `json:"report,omitempty"`
}

// EnvelopeReport is the structured part of an envelope.
type EnvelopeReport struct {
	Layout           model.Layout    `json:"layout"`
	Metric           string          `json:"metric"`
	GeneratedAt      time.Time       `json:"generated_at"`
	Estimated        bool            `json:"estimated"`
	TotalMonthToDate float64         `json:"total_month_to_date"`
	Sections         []model.Section `json:"sections,omitempty"`
	Accounts         []model.Row     `json:"accounts,omitempty"`
	Mentions         []string        `json:"mentions,omitempty"`
}

// NewEnvelope wraps msg for delivery. Report envelopes carry sections and
// accounts; callout envelopes carry only the mentions.
func NewEnvelope(msg Message, sentAt time.Time) Envelope {
	env := Envelope{
		ID:     uuid.New().String(),
		Event:  "cost_" + string(msg.Kind),
		SentAt: sentAt.UTC(),
		Text:   msg.Text,
	}

	rep := msg.Report
	if rep == nil {
		return env
	}

	er := &EnvelopeReport{
		Layout:      rep.Layout,
		Metric:      rep.Metric,
		GeneratedAt: rep.GeneratedAt,
		Estimated:   rep.Estimated,
	}
	for _, r := range rep.Rows {
		er.TotalMonthToDate += r.MonthToDate
	}

	switch msg.Kind {
	case KindCallout:
		for _, c := range rep.Callouts {
			er.Mentions = append(er.Mentions, c.Mention)
		}
	default:
		er.Sections = rep.Sections
		er.Accounts = rep.Rows
	}
	env.Report = er
	return env
}

// Sign returns the X-Signature-256 value for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
