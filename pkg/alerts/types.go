package alerts

import (
	"context"
	"fmt"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
)

// Kind distinguishes the messages a run can post.
type Kind string

const (
	KindReport  Kind = "report"  // The cost tables
	KindCallout Kind = "callout" // Mentions of expensive personal accounts
)

// Message is a chat message produced by a reporting run. Report is the run's
// report, for notifiers that forward structured content; chat notifiers only
// use Text.
type Message struct {
	Kind   Kind          `json:"kind"`
	Text   string        `json:"text"`
	Report *model.Report `json:"-"`
}

// Notifier posts messages to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers a message. A response the endpoint rejects is reported
	// as a *StatusError.
	Send(ctx context.Context, msg Message) error
}

// StatusError reports an endpoint that answered with an unexpected status.
type StatusError struct {
	Notifier string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Notifier, e.Code, e.Body)
}
