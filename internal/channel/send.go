package channel

import (
	"context"
	"errors"
	"time"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// Permanent wraps an error that must not be retried: bad credentials,
// invalid recipients, provider-side opt-in or session-window rejections.
type Permanent struct {
	Err error
}

func (p Permanent) Error() string { return p.Err.Error() }
func (p Permanent) Unwrap() error { return p.Err }

// IsPermanent reports whether err carries a Permanent marker anywhere in
// its chain.
func IsPermanent(err error) bool {
	var p Permanent
	return errors.As(err, &p)
}

// SendWithRetry runs fn up to strategy.Attempts times with exponential
// backoff, aborting immediately on permanent errors or when ctx expires
// during the backoff wait. retry.Do cannot cut a retry sequence short,
// which is why the loop is explicit; the Strategy shape stays the same
// so configs carry over.
func SendWithRetry(ctx context.Context, kind Kind, strategy retry.Strategy, fn func() error) error {
	attempts := strategy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := strategy.Delay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			zlog.Logger.Warn().Err(err).Str("channel", string(kind)).Msg("permanent delivery error, not retrying")
			return err
		}
		if attempt == attempts {
			break
		}

		zlog.Logger.Warn().Err(err).Str("channel", string(kind)).Int("attempt", attempt).Msg("transient delivery error, retrying")
		select {
		case <-ctx.Done():
			zlog.Logger.Warn().Err(err).Str("channel", string(kind)).Msg("send deadline reached during backoff, giving up")
			return err
		case <-time.After(delay):
		}
		if strategy.Backoff > 1 {
			delay = time.Duration(float64(delay) * strategy.Backoff)
		}
	}

	return err
}
