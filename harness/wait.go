package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/utils"
)

// ErrWaitTimeout means a condition never became true within its timeout.
var ErrWaitTimeout = errors.New("condition not met")

// WaitUntil polls cond every interval until it returns true, returns an error,
// or timeout elapses.
// A parent context that ends first is returned as its own error.
func WaitUntil(parent context.Context, timeout, interval time.Duration, cond func() (bool, error)) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	// equal init and max intervals make the sleeper tick at a constant rate
	err := utils.Retry(ctx, utils.BackoffSleeper(interval, interval, nil), func() (bool, error) {
		ok, err := cond()
		if err != nil {
			return true, err
		}
		return ok, nil
	})
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Errorf("%w after %v", ErrWaitTimeout, timeout)
	}
	return err
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
