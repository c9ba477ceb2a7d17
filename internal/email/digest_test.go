package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codr1/WarungWareg/internal/config"
	"github.com/codr1/WarungWareg/internal/models"
	"github.com/codr1/WarungWareg/internal/reporting"
)

type fakeSender struct {
	recipient string
	subject   string
	body      string
	ctxErr    error
	err       error
}

func (f *fakeSender) Send(ctx context.Context, recipient, subject, body string) error {
	f.recipient, f.subject, f.body = recipient, subject, body
	f.ctxErr = ctx.Err()
	return f.err
}

func singleDay(t *testing.T, day time.Time) reporting.Window {
	t.Helper()
	w, err := reporting.SingleDay(day, time.UTC)
	if err != nil {
		t.Fatalf("single day: %v", err)
	}
	return w
}

func TestBuildDigest(t *testing.T) {
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: 1, TotalPrice: decimal.RequireFromString("15000"), Status: models.OrderStatusCompleted, CreatedAt: day.Add(9 * time.Hour)},
		{ID: 2, TotalPrice: decimal.RequireFromString("2500.5"), Status: models.OrderStatusNew, CreatedAt: day.Add(20 * time.Hour)},
		{ID: 3, TotalPrice: decimal.RequireFromString("99999"), Status: models.OrderStatusNew, CreatedAt: day.Add(30 * time.Hour)},
	}
	report := reporting.Build(orders, singleDay(t, day), "")

	msg := BuildDigest("Warung Wareg", report, "")

	if msg.Subject != "Warung Wareg daily revenue 3/9/2024" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.HasPrefix(msg.Body, "Revenue for 3/9/2024: Rp17.500,50, 2 orders\n") {
		t.Fatalf("unexpected body %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "New: 1\nCompleted: 1\n") {
		t.Fatalf("expected status breakdown, got %q", msg.Body)
	}
}

func TestBuildDigestEmptyDay(t *testing.T) {
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	report := reporting.Build(nil, singleDay(t, day), "")

	msg := BuildDigest("Warung Wareg", report, "")
	if msg.Body != "Revenue for 3/9/2024: Rp0,00, 0 orders\n" {
		t.Fatalf("unexpected body %q", msg.Body)
	}
}

func TestSendDigestDetachesCancellation(t *testing.T) {
	sender := &fakeSender{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := SendDigest(ctx, sender, " owner@warung.id ", Message{Subject: "s", Body: "b"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if sender.ctxErr != nil {
		t.Fatalf("expected live send context, got %v", sender.ctxErr)
	}
	if sender.recipient != "owner@warung.id" {
		t.Fatalf("unexpected recipient %q", sender.recipient)
	}
}

func TestSendDigestErrors(t *testing.T) {
	if err := SendDigest(context.Background(), nil, "a@b.id", Message{}); err == nil {
		t.Fatalf("expected error without sender")
	}
	if err := SendDigest(context.Background(), &fakeSender{}, "  ", Message{}); err == nil {
		t.Fatalf("expected error without recipient")
	}
	boom := errors.New("boom")
	if err := SendDigest(context.Background(), &fakeSender{err: boom}, "a@b.id", Message{}); !errors.Is(err, boom) {
		t.Fatalf("expected sender error, got %v", err)
	}
}

func TestSendInput(t *testing.T) {
	input := sendInput("noreply@warung.id", "owner@warung.id", "subject", "body")
	if *input.FromEmailAddress != "noreply@warung.id" || input.Destination.ToAddresses[0] != "owner@warung.id" {
		t.Fatalf("unexpected addressing")
	}
	if *input.Content.Simple.Body.Text.Data != "body" {
		t.Fatalf("unexpected body")
	}
}

func TestNewSESClientValidates(t *testing.T) {
	if _, err := NewSESClient(context.Background(), configWith("", "noreply@warung.id")); err == nil {
		t.Fatalf("expected region error")
	}
	if _, err := NewSESClient(context.Background(), configWith("ap-southeast-1", "")); err == nil {
		t.Fatalf("expected sender error")
	}
}

func configWith(region, sender string) config.EmailConfig {
	return config.EmailConfig{Region: region, Sender: sender}
}
