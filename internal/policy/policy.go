// Package policy holds the pure decision logic of the notification core:
// throttling, quiet hours and expiry filtering. No I/O, no clocks of its
// own; callers pass "now" in.
package policy

import (
	"fmt"
	"time"

	"github.com/Madhu097/foodremainder-sub000/internal/model"
)

// DefaultNotificationDays is used when a user has no lookahead configured.
const DefaultNotificationDays = 3

// Interval returns the minimum time between successful notifications for
// the user, derived from 24h / NotificationsPerDay. The per-day count is
// clamped to 1..24.
func Interval(u model.User) time.Duration {
	perDay := u.NotificationsPerDay
	if perDay < 1 {
		perDay = 1
	}
	if perDay > 24 {
		perDay = 24
	}
	return 24 * time.Hour / time.Duration(perDay)
}

// ShouldNotify reports whether the user's throttle window has elapsed.
// A user who was never notified is always due.
func ShouldNotify(u model.User, now time.Time) bool {
	last := u.LastNotificationSentAt
	if last == nil || last.IsZero() {
		return true
	}
	return now.Sub(*last) >= Interval(u)
}

// InQuietHours reports whether now falls inside the user's quiet-hours
// window. Returns false when either bound is missing or unparseable.
// The start bound is inclusive, the end bound exclusive; a window whose
// start is at or after its end wraps past midnight.
func InQuietHours(u model.User, now time.Time) bool {
	start, err := minuteOfDay(u.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := minuteOfDay(u.QuietHoursEnd)
	if err != nil {
		return false
	}

	cur := now.Hour()*60 + now.Minute()
	if start < end {
		return cur >= start && cur < end
	}
	// overnight window, e.g. 22:00-06:00
	return cur >= start || cur < end
}

// DaysLeft returns the number of whole days between now's midnight and
// the expiry date's midnight. Zero means the item expires today;
// negative means it is already expired.
func DaysLeft(expiry, now time.Time) int {
	expiryMid := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, now.Location())
	nowMid := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(expiryMid.Sub(nowMid) / (24 * time.Hour))
}

// ExpiringItems filters items down to those expiring within thresholdDays
// of now. Already-expired items are excluded; input order is preserved.
func ExpiringItems(items []model.FoodItem, thresholdDays int, now time.Time) []model.FoodItem {
	if thresholdDays <= 0 {
		thresholdDays = DefaultNotificationDays
	}

	var expiring []model.FoodItem
	for _, item := range items {
		d := DaysLeft(item.ExpiryDate, now)
		if d >= 0 && d <= thresholdDays {
			expiring = append(expiring, item)
		}
	}
	return expiring
}

// Urgency renders a days-left value as a human-readable phrase.
func Urgency(daysLeft int) string {
	switch {
	case daysLeft <= 0:
		return "expires today"
	case daysLeft == 1:
		return "expires tomorrow"
	default:
		return fmt.Sprintf("expires in %d days", daysLeft)
	}
}

// minuteOfDay parses an "HH:MM" string into minutes since midnight.
func minuteOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse quiet hours bound %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
