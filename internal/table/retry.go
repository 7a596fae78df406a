package table

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/hay-kot/tabula/internal/core/item"
)

// retry runs fn, retrying up to retries times with a constant delay while it
// fails with item.ErrTransient. Other errors are returned immediately.
func retry[T any](ctx context.Context, log zerolog.Logger, op string, retries int, delay time.Duration, fn func() (T, error)) (T, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(max(retries, 0))),
		ctx,
	)

	attempts := 0
	v, err := backoff.RetryNotifyWithData(func() (T, error) {
		attempts++
		v, err := fn()
		if err != nil && !errors.Is(err, item.ErrTransient) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, policy, func(err error, next time.Duration) {
		log.Debug().Err(err).Str("op", op).Int("attempt", attempts).Dur("backoff", next).Msg("retrying")
	})

	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, item.ErrTransient):
		var zero T
		return zero, fmt.Errorf("%s failed after %d attempts: %w", op, attempts, err)
	default:
		var zero T
		return zero, err
	}
}
