package ratelimit

// RegisterAttempt is an open registration. Finish it exactly once.
type RegisterAttempt struct {
	l  *Limiter
	ip string
}

// BeginRegister decides whether a registration from ip may reach the
// backend. Unlike logins, there is no per-account state: the email is not
// known to the backend yet.
func (l *Limiter) BeginRegister(ip string) (*RegisterAttempt, Decision) {
	if l == nil {
		return nil, Decision{Allowed: true}
	}
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	if d := wait(l.registerIPs, ip, now); d > 0 {
		return nil, Decision{RetryAfter: d, Reason: "ip_budget"}
	}
	return &RegisterAttempt{l: l, ip: ip}, Decision{Allowed: true}
}

// Finish charges the IP for any registration the backend decided, whether
// it created the account or refused it. An unavailable backend costs nothing.
func (a *RegisterAttempt) Finish(outcome Outcome) {
	if a == nil || outcome == Unavailable {
		return
	}
	l := a.l
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	spend(l.registerIPs, a.ip, l.cfg.RegisterIPPerHour, now)
}
