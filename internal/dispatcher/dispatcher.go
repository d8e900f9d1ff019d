// Package dispatcher orchestrates one notification cycle: policy checks,
// channel fan-out and the single store write that advances the throttle
// window.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/channel"
	"github.com/Madhu097/foodremainder-sub000/internal/model"
	"github.com/Madhu097/foodremainder-sub000/internal/policy"
	"github.com/Madhu097/foodremainder-sub000/internal/store"
)

// ErrSweepRunning is returned when a sweep is requested while another is
// still in flight.
var ErrSweepRunning = errors.New("notification sweep already running")

// Summary aggregates one sweep across all users.
type Summary struct {
	Checked  int                        `json:"checked"`
	Notified int                        `json:"notified"`
	Skipped  int                        `json:"skipped"`
	Failed   int                        `json:"failed"`
	Results  []model.NotificationResult `json:"results"`
	Duration time.Duration              `json:"-"`
}

// TestOutcome is the human-readable result of a forced test send.
type TestOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Dispatcher struct {
	store       store.Store
	adapters    []channel.Adapter
	lock        Lock
	sendTimeout time.Duration

	now func() time.Time
}

// New builds a dispatcher over the given adapters. Nil adapters (a
// channel with no configured provider) are dropped here so the fan-out
// loop never sees them.
func New(st store.Store, adapters []channel.Adapter, lock Lock, sendTimeout time.Duration) *Dispatcher {
	if lock == nil {
		lock = NewLocalLock()
	}
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	kept := make([]channel.Adapter, 0, len(adapters))
	for _, a := range adapters {
		if a != nil {
			kept = append(kept, a)
		}
	}

	return &Dispatcher{
		store:       st,
		adapters:    kept,
		lock:        lock,
		sendTimeout: sendTimeout,
		now:         time.Now,
	}
}

// CheckAndNotifyUser runs one cycle for a single user. It returns nil
// (no error) when policy skips the user: throttle window not elapsed,
// quiet hours, no enabled channels, or nothing expiring. force bypasses
// the throttle and quiet-hours checks; itemsOverride substitutes the
// expiring-item lookup.
func (d *Dispatcher) CheckAndNotifyUser(ctx context.Context, user model.User, itemsOverride []model.FoodItem, force bool) (*model.NotificationResult, error) {
	now := d.now()

	if !force {
		if !policy.ShouldNotify(user, now) {
			zlog.Logger.Debug().Str("user", user.Username).Msg("skipping: throttle window not elapsed")
			return nil, nil
		}
		if policy.InQuietHours(user, now) {
			zlog.Logger.Debug().Str("user", user.Username).Msg("skipping: quiet hours")
			return nil, nil
		}
	}

	enabled := d.enabledAdapters(user)
	if len(enabled) == 0 {
		zlog.Logger.Debug().Str("user", user.Username).Msg("skipping: no channels enabled")
		return nil, nil
	}

	items := itemsOverride
	if items == nil {
		all, err := d.store.GetFoodItemsByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("get food items: %w", err)
		}
		items = policy.ExpiringItems(all, user.NotificationDays, now)
	}
	if len(items) == 0 {
		return nil, nil
	}

	result := &model.NotificationResult{
		UserID:    user.ID,
		Username:  user.Username,
		ItemCount: len(items),
		SentAt:    now,
	}

	attempted := 0
	for _, a := range enabled {
		sent, tried := d.sendOne(ctx, a, user, items)
		if tried {
			attempted++
		}
		switch a.Kind() {
		case channel.KindEmail:
			result.EmailSent = sent
		case channel.KindSMS:
			result.SMSSent = sent
		case channel.KindWhatsApp:
			result.WhatsAppSent = sent
		case channel.KindTelegram:
			result.TelegramSent = sent
		case channel.KindPush:
			result.PushSent = sent
		}
	}

	if attempted == 0 {
		// Every enabled channel lacked a recipient identity (no chat id,
		// no subscriptions). That is onboarding state, not a failure.
		zlog.Logger.Debug().Str("user", user.Username).Msg("skipping: no channel has a recipient identity")
		return nil, nil
	}

	if !result.Delivered() {
		// No channel succeeded: leave the throttle timestamp alone so
		// the next cycle retries.
		zlog.Logger.Warn().Str("user", user.Username).Int("items", len(items)).Msg("all channels failed, will retry next cycle")
		return result, nil
	}

	if err := d.store.UpdateLastNotificationTime(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("record notification time: %w", err)
	}

	zlog.Logger.Info().Str("user", user.Username).Int("items", len(items)).Msg("notification delivered")
	return result, nil
}

// CheckAndNotifyAll sweeps every user. Users are processed independently:
// a panic or error in one user's cycle is logged and counted, never
// propagated. Only one sweep runs at a time.
func (d *Dispatcher) CheckAndNotifyAll(ctx context.Context) (Summary, error) {
	acquired, err := d.lock.TryLock(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !acquired {
		return Summary{}, ErrSweepRunning
	}
	defer d.lock.Unlock(ctx)

	started := d.now()

	users, err := d.store.GetAllUsers(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("get users: %w", err)
	}

	var summary Summary
	summary.Checked = len(users)

	for _, user := range users {
		result, err := d.checkUserSafely(ctx, user)
		switch {
		case err != nil:
			summary.Failed++
			zlog.Logger.Error().Err(err).Str("user", user.Username).Msg("failed to process user")
		case result == nil:
			summary.Skipped++
		case !result.Delivered():
			summary.Failed++
		default:
			summary.Notified++
			summary.Results = append(summary.Results, *result)
		}
	}

	summary.Duration = d.now().Sub(started)
	zlog.Logger.Info().
		Int("checked", summary.Checked).
		Int("notified", summary.Notified).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("notification sweep finished")

	return summary, nil
}

// TestNotification force-sends for one user, synthesizing a test item if
// nothing real is expiring, and reports the outcome in plain words.
func (d *Dispatcher) TestNotification(ctx context.Context, userID uuid.UUID) (TestOutcome, error) {
	user, err := d.store.GetUser(ctx, userID)
	if err != nil {
		return TestOutcome{}, fmt.Errorf("get user: %w", err)
	}

	if len(d.enabledAdapters(user)) == 0 {
		return TestOutcome{Success: false, Message: "no notification channels are enabled for this user"}, nil
	}

	now := d.now()
	all, err := d.store.GetFoodItemsByUserID(ctx, user.ID)
	if err != nil {
		return TestOutcome{}, fmt.Errorf("get food items: %w", err)
	}

	items := policy.ExpiringItems(all, user.NotificationDays, now)
	if len(items) == 0 {
		items = []model.FoodItem{{
			ID:         uuid.New(),
			UserID:     user.ID,
			Name:       "Test Item",
			Category:   "Test",
			ExpiryDate: now.AddDate(0, 0, 1),
		}}
	}

	result, err := d.CheckAndNotifyUser(ctx, user, items, true)
	if err != nil {
		return TestOutcome{}, err
	}
	if result == nil {
		return TestOutcome{Success: false, Message: "enabled channels have no recipient identity for this user"}, nil
	}
	if !result.Delivered() {
		return TestOutcome{Success: false, Message: "all enabled channels failed to deliver"}, nil
	}

	return TestOutcome{
		Success: true,
		Message: fmt.Sprintf("test notification sent via %s", deliveredChannels(*result)),
	}, nil
}

func (d *Dispatcher) enabledAdapters(user model.User) []channel.Adapter {
	var enabled []channel.Adapter
	for _, a := range d.adapters {
		if a.Configured() && channel.Enabled(user, a.Kind()) {
			enabled = append(enabled, a)
		}
	}
	return enabled
}

// sendOne isolates a single channel attempt: bounded by the send
// timeout, panics recovered. attempted is false only for the
// no-recipient-identity skip class, which must not count as a failure.
func (d *Dispatcher) sendOne(ctx context.Context, a channel.Adapter, user model.User, items []model.FoodItem) (sent, attempted bool) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Logger.Error().
				Interface("panic", r).
				Str("channel", string(a.Kind())).
				Str("user", user.Username).
				Bytes("stack", debug.Stack()).
				Msg("channel adapter panicked")
			sent = false
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	attempted = true
	err := a.Send(sendCtx, user, items)
	switch {
	case err == nil:
		return true, true
	case errors.Is(err, channel.ErrNoRecipient), errors.Is(err, channel.ErrNotConfigured):
		zlog.Logger.Debug().Str("channel", string(a.Kind())).Str("user", user.Username).Msg("channel skipped: no recipient identity")
		return false, false
	default:
		zlog.Logger.Warn().Err(err).Str("channel", string(a.Kind())).Str("user", user.Username).Msg("channel delivery failed")
		return false, true
	}
}

func (d *Dispatcher) checkUserSafely(ctx context.Context, user model.User) (result *model.NotificationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Logger.Error().
				Interface("panic", r).
				Str("user", user.Username).
				Bytes("stack", debug.Stack()).
				Msg("panic while processing user")
			result = nil
			err = fmt.Errorf("panic while processing user: %v", r)
		}
	}()

	return d.CheckAndNotifyUser(ctx, user, nil, false)
}

func deliveredChannels(r model.NotificationResult) string {
	var names []string
	if r.EmailSent {
		names = append(names, "email")
	}
	if r.SMSSent {
		names = append(names, "sms")
	}
	if r.WhatsAppSent {
		names = append(names, "whatsapp")
	}
	if r.TelegramSent {
		names = append(names, "telegram")
	}
	if r.PushSent {
		names = append(names, "push")
	}

	return strings.Join(names, ", ")
}
