// Package ratelimit throttles the login and registration forms so the
// backend API cannot be used as a password oracle or a signup spammer.
//
// Callers open an attempt with BeginLogin or BeginRegister, call the
// backend, then close the attempt with the Outcome they observed. Only
// outcomes the backend actually decided are charged, so an API outage
// never locks anyone out.
package ratelimit

import (
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Outcome classifies how the backend answered an attempt.
type Outcome int

const (
	// Succeeded means the backend accepted the request.
	Succeeded Outcome = iota
	// Rejected means the backend answered and refused it, e.g. a wrong password.
	Rejected
	// Unavailable means the backend never gave a verdict: transport failure,
	// timeout, 5xx or a malformed response.
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Rejected:
		return "rejected"
	case Unavailable:
		return "unavailable"
	}
	return "unknown"
}

// Decision is the verdict on opening an attempt.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string
}

// RetryAfterSeconds is the Retry-After header value, rounded up.
func (d Decision) RetryAfterSeconds() int {
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

// RetryAfterMinutes is the wait shown to the user, never less than a minute.
func (d Decision) RetryAfterMinutes() int {
	if m := int(math.Ceil(d.RetryAfter.Minutes())); m > 1 {
		return m
	}
	return 1
}

// Config holds the limiter policy. Zero fields take the defaults.
type Config struct {
	// MaxFailures is the number of rejected logins for one account before it locks.
	MaxFailures int
	// Lockout is the first lock duration; each further lock doubles it.
	Lockout time.Duration
	// MaxLockout caps the doubling.
	MaxLockout time.Duration
	// ForgetAfter clears an account's failure history after this long without a rejection.
	ForgetAfter time.Duration
	// LoginIPPerHour is the hourly budget of rejected logins per client IP.
	LoginIPPerHour int
	// RegisterIPPerHour is the hourly budget of registrations the backend decided per client IP.
	RegisterIPPerHour int
	// Now is the clock; nil uses time.Now.
	Now func() time.Time
}

const (
	defaultMaxFailures       = 5
	defaultLockout           = 5 * time.Minute
	defaultMaxLockout        = time.Hour
	defaultForgetAfter       = 24 * time.Hour
	defaultLoginIPPerHour    = 30
	defaultRegisterIPPerHour = 10

	sweepInterval = 5 * time.Minute
)

func (c Config) withDefaults() Config {
	if c.MaxFailures <= 0 {
		c.MaxFailures = defaultMaxFailures
	}
	if c.Lockout <= 0 {
		c.Lockout = defaultLockout
	}
	if c.MaxLockout < c.Lockout {
		c.MaxLockout = max(defaultMaxLockout, c.Lockout)
	}
	if c.ForgetAfter <= 0 {
		c.ForgetAfter = defaultForgetAfter
	}
	if c.LoginIPPerHour <= 0 {
		c.LoginIPPerHour = defaultLoginIPPerHour
	}
	if c.RegisterIPPerHour <= 0 {
		c.RegisterIPPerHour = defaultRegisterIPPerHour
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Limiter holds per-account and per-IP state in memory. A nil *Limiter
// allows everything.
type Limiter struct {
	cfg Config

	mu          sync.Mutex
	accounts    map[string]*account
	loginIPs    map[string]*ipBudget
	registerIPs map[string]*ipBudget
	lastSweep   time.Time
}

// New builds a limiter. It starts no goroutines; stale entries are swept
// lazily as attempts arrive.
func New(cfg Config) *Limiter {
	cfg = cfg.withDefaults()
	return &Limiter{
		cfg:         cfg,
		accounts:    make(map[string]*account),
		loginIPs:    make(map[string]*ipBudget),
		registerIPs: make(map[string]*ipBudget),
		lastSweep:   cfg.Now(),
	}
}

// ipBudget is a token bucket refilled at perHour tokens an hour.
type ipBudget struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

func newIPBudget(perHour int, now time.Time) *ipBudget {
	return &ipBudget{
		bucket:   rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), perHour),
		lastSeen: now,
	}
}

// wait reports how long until the budget for key holds a whole token.
// Must be called with l.mu held.
func wait(budgets map[string]*ipBudget, key string, now time.Time) time.Duration {
	b := budgets[key]
	if b == nil {
		return 0
	}
	tokens := b.bucket.TokensAt(now)
	if tokens >= 1 {
		return 0
	}
	return time.Duration((1 - tokens) / float64(b.bucket.Limit()) * float64(time.Second))
}

// spend takes one token from the budget for key, creating it on first use.
// Must be called with l.mu held.
func spend(budgets map[string]*ipBudget, key string, perHour int, now time.Time) {
	b := budgets[key]
	if b == nil {
		b = newIPBudget(perHour, now)
		budgets[key] = b
	}
	b.bucket.AllowN(now, 1)
	b.lastSeen = now
}

// sweep drops accounts with nothing left to remember and budgets that have
// refilled completely. Must be called with l.mu held.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now

	for key, a := range l.accounts {
		if now.After(a.lockedUntil) && now.Sub(a.lastFailure) >= l.cfg.ForgetAfter {
			delete(l.accounts, key)
		}
	}
	for _, budgets := range []map[string]*ipBudget{l.loginIPs, l.registerIPs} {
		for key, b := range budgets {
			if now.Sub(b.lastSeen) >= time.Hour {
				delete(budgets, key)
			}
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
