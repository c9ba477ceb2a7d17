package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/WarungWareg/internal/email"
	"github.com/codr1/WarungWareg/internal/models"
	"github.com/codr1/WarungWareg/internal/reporting"
)

const (
	sessionPurgeJobName = "session_purge"
	digestJobName       = "daily_revenue_digest"
	sessionPurgeTimeout = 30 * time.Second
	digestTimeout       = 2 * time.Minute
)

// SessionPurger deletes expired sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// OrderSource loads every order visible to a bearer token.
type OrderSource interface {
	Orders(ctx context.Context, token string) ([]models.Order, error)
}

// RegisterSessionPurgeJob removes expired session rows on cronExpr.
func RegisterSessionPurgeJob(svc *Service, store SessionPurger, cronExpr string) error {
	if store == nil {
		return fmt.Errorf("session purge job requires a session store")
	}
	_, err := svc.AddJob(sessionPurgeJobName, cronExpr, sessionPurgeTimeout, func(ctx context.Context) error {
		purged, err := store.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		if purged > 0 {
			log.Ctx(ctx).Info().Int64("purged", purged).Msg("Expired sessions purged")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("add session purge job: %w", err)
	}
	return nil
}

// Digest holds what the daily revenue email needs.
type Digest struct {
	AppName     string
	Recipient   string
	Token       string
	Location    *time.Location
	LabelLayout string
	Orders      OrderSource
	Sender      email.Sender
	// Now is swapped in tests.
	Now func() time.Time
}

// RegisterDigestJob emails yesterday's revenue on cronExpr.
func RegisterDigestJob(svc *Service, digest Digest, cronExpr string) error {
	if digest.Orders == nil || digest.Sender == nil {
		return fmt.Errorf("digest job requires an order source and email sender")
	}
	if strings.TrimSpace(digest.Recipient) == "" {
		return fmt.Errorf("digest job requires a recipient")
	}
	_, err := svc.AddJob(digestJobName, cronExpr, digestTimeout, digest.Run)
	if err != nil {
		return fmt.Errorf("add digest job: %w", err)
	}
	return nil
}

// Run builds the report for the previous calendar day and sends it.
func (d Digest) Run(ctx context.Context) error {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}

	today := reporting.StartOfDay(now(), loc)
	yesterday := time.Date(today.Year(), today.Month(), today.Day()-1, 0, 0, 0, 0, loc)

	window, err := reporting.SingleDay(yesterday, loc)
	if err != nil {
		return fmt.Errorf("digest window: %w", err)
	}
	orders, err := d.Orders.Orders(ctx, d.Token)
	if err != nil {
		return fmt.Errorf("load orders for digest: %w", err)
	}
	report := reporting.Build(orders, window, d.LabelLayout)
	msg := email.BuildDigest(d.AppName, report, d.LabelLayout)
	if err := email.SendDigest(ctx, d.Sender, d.Recipient, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("day", reporting.DayKey(yesterday, loc)).
		Int64("orders", report.Summary.TotalOrders).
		Str("revenue", report.Summary.TotalRevenue.String()).
		Msg("Revenue digest sent")
	return nil
}
