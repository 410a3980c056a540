package helpers

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrTimeout = errors.New("timeout")

// WaitContext calls fn every interval until it reports success, returns an
// error, the timeout elapses, or ctx is done. ErrTimeout means the timeout
// elapsed; a done ctx returns ctx.Err() even when it ran out first. A zero
// timeout waits on ctx alone.
func WaitContext(ctx context.Context, interval, timeout time.Duration, fn func() (bool, error)) error {
	parent := ctx

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		ok, err := fn()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			if err := parent.Err(); err != nil {
				return err
			}
			return ErrTimeout
		case <-tick.C:
		}
	}
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
