// Package scheduler drives recurring notification sweeps. It is an
// explicit two-state machine (stopped/running) owned by the process
// entry point; no package-level singletons.
package scheduler

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wb-go/wbf/zlog"
)

// DefaultSpec fires a few fixed times a day; TestSpec is the fast
// interval used when test mode is on.
const (
	DefaultSpec = "0 8,13,18 * * *"
	TestSpec    = "@every 1m"
)

// Sweeper is the dispatcher's check-all entry point.
type Sweeper interface {
	CheckAndNotifyAll(ctx context.Context) error
}

// SweeperFunc adapts a plain function to the Sweeper interface.
type SweeperFunc func(ctx context.Context) error

func (f SweeperFunc) CheckAndNotifyAll(ctx context.Context) error { return f(ctx) }

type Config struct {
	Spec       string
	Timezone   string
	TestMode   bool
	AutoStart  bool
	RunTimeout time.Duration
}

type Scheduler struct {
	mu      sync.Mutex
	cfg     Config
	sweeper Sweeper
	loc     *time.Location
	c       *cron.Cron
	running bool
}

func New(cfg Config, sweeper Sweeper) *Scheduler {
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}
	if cfg.TestMode {
		cfg.Spec = TestSpec
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}

	loc := time.Local
	if cfg.Timezone != "" {
		parsed, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			zlog.Logger.Warn().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone, using local")
		} else {
			loc = parsed
		}
	}

	return &Scheduler{cfg: cfg, sweeper: sweeper, loc: loc}
}

// Running reports the current state.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Spec returns the effective cron expression.
func (s *Scheduler) Spec() string { return s.cfg.Spec }

// Start registers the recurring trigger. Starting a running scheduler is
// a logged no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		zlog.Logger.Info().Msg("scheduler already running")
		return nil
	}

	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc(s.cfg.Spec, s.runSweep); err != nil {
		return err
	}

	c.Start()
	s.c = c
	s.running = true
	zlog.Logger.Info().Str("spec", s.cfg.Spec).Str("timezone", s.loc.String()).Msg("scheduler started")
	return nil
}

// Stop cancels future firings. An in-flight sweep runs to completion.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.c.Stop()
	s.c = nil
	s.running = false
	zlog.Logger.Info().Msg("scheduler stopped")
}

// runSweep executes one scheduled firing. Errors and panics are logged
// and swallowed so one bad run never unschedules the next.
func (s *Scheduler) runSweep() {
	defer func() {
		if r := recover(); r != nil {
			zlog.Logger.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("panic during scheduled sweep")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	if err := s.sweeper.CheckAndNotifyAll(ctx); err != nil {
		zlog.Logger.Error().Err(err).Msg("scheduled sweep failed")
	}
}
