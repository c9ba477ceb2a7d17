package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codr1/WarungWareg/internal/money"
	"github.com/codr1/WarungWareg/internal/reporting"
)

const digestEmailTimeout = 10 * time.Second

type Message struct {
	Subject string
	Body    string
}

// BuildDigest summarises a one-day report as a plain-text email.
func BuildDigest(appName string, report reporting.Report, labelLayout string) Message {
	if labelLayout == "" {
		labelLayout = reporting.DefaultLabelLayout
	}
	date := report.Window.Start.Format(labelLayout)
	counts := report.StatusCounts()

	var body strings.Builder
	fmt.Fprintf(&body, "Revenue for %s: %s, %d orders\n", date, money.Format(report.Summary.TotalRevenue), report.Summary.TotalOrders)
	if !report.Empty() {
		fmt.Fprintf(&body, "\nNew: %d\nCompleted: %d\nOther: %d\n", counts.New, counts.Completed, counts.Other)
	}

	return Message{
		Subject: fmt.Sprintf("%s daily revenue %s", appName, date),
		Body:    body.String(),
	}
}

// SendDigest delivers msg synchronously; the scheduler job already runs off
// the request path.
func SendDigest(ctx context.Context, sender Sender, recipient string, msg Message) error {
	if sender == nil {
		return fmt.Errorf("email sender is not configured")
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	sendCtx, cancel := newEmailContext(ctx, digestEmailTimeout)
	defer cancel()
	return sender.Send(sendCtx, recipient, msg.Subject, msg.Body)
}
