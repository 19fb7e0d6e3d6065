package coordinator

import (
	"context"
	"time"
)

type Opt func(*Coordinator)

func WithInitialDelay(d time.Duration) Opt {
	return func(c *Coordinator) {
		c.initialDelay = d
	}
}

func WithMaxRetries(n int) Opt {
	return func(c *Coordinator) {
		c.maxRetries = n
	}
}

func WithSaveThrottle(d time.Duration) Opt {
	return func(c *Coordinator) {
		c.throttle = d
	}
}

// WithAuthRecovery installs the token-refresh hook tried when a save or load
// cycle fails with an authentication error. A true return retries the cycle
// once.
func WithAuthRecovery(hook func(context.Context) bool) Opt {
	return func(c *Coordinator) {
		c.recoverAuth = hook
	}
}
