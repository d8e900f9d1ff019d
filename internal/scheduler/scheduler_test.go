package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartStop_Idempotent(t *testing.T) {
	s := New(Config{}, SweeperFunc(func(context.Context) error { return nil }))

	require.NoError(t, s.Start())
	assert.True(t, s.Running())

	// second start is a no-op, not an error
	require.NoError(t, s.Start())
	assert.True(t, s.Running())

	s.Stop()
	assert.False(t, s.Running())

	// stopping again is a no-op
	s.Stop()
	assert.False(t, s.Running())
}

func TestNew_SpecSelection(t *testing.T) {
	s := New(Config{}, nil)
	assert.Equal(t, DefaultSpec, s.Spec())

	s = New(Config{Spec: "0 */2 * * *"}, nil)
	assert.Equal(t, "0 */2 * * *", s.Spec())

	// test mode wins over an explicit spec
	s = New(Config{Spec: "0 */2 * * *", TestMode: true}, nil)
	assert.Equal(t, TestSpec, s.Spec())
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New(Config{Spec: "not a cron spec"}, SweeperFunc(func(context.Context) error { return nil }))
	assert.Error(t, s.Start())
	assert.False(t, s.Running())
}

func TestNew_InvalidTimezoneFallsBack(t *testing.T) {
	s := New(Config{Timezone: "Not/AZone"}, SweeperFunc(func(context.Context) error { return nil }))
	require.NoError(t, s.Start())
	defer s.Stop()
	assert.True(t, s.Running())
}

func TestRunSweep_ErrorDoesNotUnschedule(t *testing.T) {
	var calls atomic.Int32
	s := New(Config{Spec: "@every 10ms"}, SweeperFunc(func(context.Context) error {
		calls.Add(1)
		return errors.New("sweep failed")
	}))

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, 5*time.Second, 10*time.Millisecond, "schedule must survive failing runs")
}

func TestRunSweep_PanicRecovered(t *testing.T) {
	var calls atomic.Int32
	s := New(Config{Spec: "@every 10ms"}, SweeperFunc(func(context.Context) error {
		calls.Add(1)
		panic("sweep panicked")
	}))

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, 5*time.Second, 10*time.Millisecond, "schedule must survive panicking runs")
}
