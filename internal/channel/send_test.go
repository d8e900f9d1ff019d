package channel

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/retry"
)

func TestSendWithRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := SendWithRetry(context.Background(), KindEmail, retry.Strategy{Attempts: 3}, func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSendWithRetry_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := SendWithRetry(context.Background(), KindEmail, retry.Strategy{Attempts: 3}, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestSendWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := SendWithRetry(context.Background(), KindEmail, retry.Strategy{Attempts: 3}, func() error {
		calls++
		return errors.New("still down")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestSendWithRetry_AbortsOnPermanentError(t *testing.T) {
	calls := 0
	err := SendWithRetry(context.Background(), KindEmail, retry.Strategy{Attempts: 5}, func() error {
		calls++
		return Permanent{Err: errors.New("535 bad credentials")}
	})

	assert.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, calls)
}

func TestSendWithRetry_CancelledContextCutsBackoffShort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	start := time.Now()
	err := SendWithRetry(ctx, KindEmail, retry.Strategy{Attempts: 3, Delay: time.Hour}, func() error {
		calls++
		cancel()
		return errors.New("smtp down")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second, "cancellation must interrupt the backoff wait")
}

func TestSendWithRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = SendWithRetry(context.Background(), KindEmail, retry.Strategy{}, func() error {
		calls++
		return errors.New("boom")
	})

	assert.Equal(t, 1, calls)
}

func TestIsPermanent_SeesThroughWrapping(t *testing.T) {
	inner := Permanent{Err: errors.New("bad recipient")}
	wrapped := fmt.Errorf("email send: %w", inner)

	assert.True(t, IsPermanent(wrapped))
	assert.False(t, IsPermanent(errors.New("transient")))
}
