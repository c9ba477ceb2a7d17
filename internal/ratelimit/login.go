package ratelimit

import "time"

// account is the failure history of one email address.
type account struct {
	failures    int
	lockouts    int
	lockedUntil time.Time
	lastFailure time.Time
}

// LoginAttempt is an open login. Finish it exactly once.
type LoginAttempt struct {
	l     *Limiter
	email string
	ip    string
}

// BeginLogin decides whether a login for email from ip may reach the
// backend. A locked account or an exhausted IP budget denies it and the
// returned attempt is nil.
func (l *Limiter) BeginLogin(email, ip string) (*LoginAttempt, Decision) {
	if l == nil {
		return nil, Decision{Allowed: true}
	}
	key := normalizeEmail(email)
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	if a := l.accounts[key]; a != nil && now.Before(a.lockedUntil) {
		return nil, Decision{RetryAfter: a.lockedUntil.Sub(now), Reason: "account_locked"}
	}
	if d := wait(l.loginIPs, ip, now); d > 0 {
		return nil, Decision{RetryAfter: d, Reason: "ip_budget"}
	}
	return &LoginAttempt{l: l, email: key, ip: ip}, Decision{Allowed: true}
}

// Finish records what the backend said. Success wipes the account's
// history. A rejection counts against both the account and the IP and may
// lock the account, in which case Finish returns true. Unavailable leaves
// everything untouched.
func (a *LoginAttempt) Finish(outcome Outcome) (locked bool) {
	if a == nil {
		return false
	}
	l := a.l
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	switch outcome {
	case Succeeded:
		delete(l.accounts, a.email)
		return false
	case Rejected:
		spend(l.loginIPs, a.ip, l.cfg.LoginIPPerHour, now)
		return l.recordFailure(a.email, now)
	default:
		return false
	}
}

// recordFailure must be called with l.mu held.
func (l *Limiter) recordFailure(email string, now time.Time) bool {
	acct := l.accounts[email]
	if acct == nil || now.Sub(acct.lastFailure) >= l.cfg.ForgetAfter {
		acct = &account{}
		l.accounts[email] = acct
	}
	acct.failures++
	acct.lastFailure = now
	if acct.failures < l.cfg.MaxFailures {
		return false
	}

	acct.lockedUntil = now.Add(l.lockoutFor(acct.lockouts))
	acct.lockouts++
	acct.failures = 0
	return true
}

// lockoutFor doubles the base lockout once per earlier lock, up to MaxLockout.
func (l *Limiter) lockoutFor(previous int) time.Duration {
	d := l.cfg.Lockout
	for i := 0; i < previous && d < l.cfg.MaxLockout; i++ {
		d *= 2
	}
	return min(d, l.cfg.MaxLockout)
}
