package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codr1/WarungWareg/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(time.UTC)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Stop() })
	return svc
}

func noop(context.Context) error { return nil }

func TestAddJobValidation(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.AddJob("", "* * * * *", time.Second, noop); !errors.Is(err, ErrEmptyJobName) {
		t.Fatalf("expected ErrEmptyJobName, got %v", err)
	}
	if _, err := svc.AddJob("job", " ", time.Second, noop); !errors.Is(err, ErrEmptyCronExpr) {
		t.Fatalf("expected ErrEmptyCronExpr, got %v", err)
	}
	if _, err := svc.AddJob("job", "* * * * *", time.Second, nil); !errors.Is(err, ErrNilTask) {
		t.Fatalf("expected ErrNilTask, got %v", err)
	}
	if _, err := svc.AddJob("job", "not a cron", time.Second, noop); err == nil {
		t.Fatalf("expected invalid cron error")
	}

	var nilService *Service
	if _, err := nilService.AddJob("job", "* * * * *", time.Second, noop); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestAddJobRegistersName(t *testing.T) {
	svc := newTestService(t)

	job, err := svc.AddJob("hourly", "0 * * * *", time.Second, noop)
	if err != nil {
		t.Fatalf("add job: %v", err)
	}
	if job.Name() != "hourly" {
		t.Fatalf("expected job name, got %q", job.Name())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	svc, err := NewService(nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.Start()
	if err := svc.Stop(); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

type fakePurger struct {
	calls int
}

func (f *fakePurger) PurgeExpired(context.Context) (int64, error) {
	f.calls++
	return 3, nil
}

func TestRegisterSessionPurgeJob(t *testing.T) {
	svc := newTestService(t)

	if err := RegisterSessionPurgeJob(svc, nil, "*/30 * * * *"); err == nil {
		t.Fatalf("expected error without store")
	}
	if err := RegisterSessionPurgeJob(svc, &fakePurger{}, "*/30 * * * *"); err != nil {
		t.Fatalf("register: %v", err)
	}
	jobs := svc.scheduler.Jobs()
	if len(jobs) != 1 || jobs[0].Name() != sessionPurgeJobName {
		t.Fatalf("expected session purge job, got %d jobs", len(jobs))
	}
}

type fakeOrders struct {
	token  string
	orders []models.Order
	err    error
}

func (f *fakeOrders) Orders(_ context.Context, token string) ([]models.Order, error) {
	f.token = token
	return f.orders, f.err
}

type fakeSender struct {
	recipient string
	subject   string
	body      string
	calls     int
}

func (f *fakeSender) Send(_ context.Context, recipient, subject, body string) error {
	f.calls++
	f.recipient, f.subject, f.body = recipient, subject, body
	return nil
}

func TestDigestRunReportsYesterday(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	orders := &fakeOrders{orders: []models.Order{
		// 8 March 23:30 WIB: yesterday relative to the run.
		{ID: 1, TotalPrice: decimal.RequireFromString("12000"), Status: models.OrderStatusCompleted, CreatedAt: time.Date(2024, 3, 8, 16, 30, 0, 0, time.UTC)},
		// 9 March 01:00 WIB: today, excluded.
		{ID: 2, TotalPrice: decimal.RequireFromString("5000"), Status: models.OrderStatusNew, CreatedAt: time.Date(2024, 3, 8, 18, 0, 0, 0, time.UTC)},
	}}
	sender := &fakeSender{}
	digest := Digest{
		AppName:   "Warung Wareg",
		Recipient: "owner@warung.id",
		Token:     "service-token",
		Location:  jakarta,
		Orders:    orders,
		Sender:    sender,
		Now:       func() time.Time { return time.Date(2024, 3, 9, 7, 0, 0, 0, jakarta) },
	}

	if err := digest.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if orders.token != "service-token" {
		t.Fatalf("expected service token, got %q", orders.token)
	}
	if sender.calls != 1 || sender.recipient != "owner@warung.id" {
		t.Fatalf("expected one email to owner, got %d", sender.calls)
	}
	if !strings.HasPrefix(sender.body, "Revenue for 3/8/2024: Rp12.000,00, 1 orders") {
		t.Fatalf("unexpected body %q", sender.body)
	}
}

func TestDigestRunOrderFailure(t *testing.T) {
	sender := &fakeSender{}
	digest := Digest{
		Recipient: "owner@warung.id",
		Orders:    &fakeOrders{err: errors.New("backend down")},
		Sender:    sender,
	}
	if err := digest.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if sender.calls != 0 {
		t.Fatalf("no email expected when orders fail")
	}
}

func TestRegisterDigestJobValidation(t *testing.T) {
	svc := newTestService(t)

	if err := RegisterDigestJob(svc, Digest{}, "0 7 * * *"); err == nil {
		t.Fatalf("expected error without dependencies")
	}
	digest := Digest{Orders: &fakeOrders{}, Sender: &fakeSender{}}
	if err := RegisterDigestJob(svc, digest, "0 7 * * *"); err == nil {
		t.Fatalf("expected error without recipient")
	}
	digest.Recipient = "owner@warung.id"
	if err := RegisterDigestJob(svc, digest, "0 7 * * *"); err != nil {
		t.Fatalf("register: %v", err)
	}
}
