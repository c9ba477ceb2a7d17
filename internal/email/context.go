package email

import (
	"context"
	"time"
)

// newEmailContext bounds a send. Cancellation of parent is detached so a
// finished job or request does not abort delivery halfway.
func newEmailContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	parent = context.WithoutCancel(parent)
	return context.WithTimeout(parent, timeout)
}
