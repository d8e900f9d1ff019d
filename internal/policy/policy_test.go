package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Madhu097/foodremainder-sub000/internal/model"
)

func TestShouldNotify_NeverNotified(t *testing.T) {
	u := model.User{NotificationsPerDay: 1}
	assert.True(t, ShouldNotify(u, time.Now()))
}

func TestShouldNotify_ThrottleWindow(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		perDay   int
		lastSent time.Time
		want     bool
	}{
		{"once a day, sent an hour ago", 1, now.Add(-time.Hour), false},
		{"once a day, sent 23h ago", 1, now.Add(-23 * time.Hour), false},
		{"once a day, sent 24h ago", 1, now.Add(-24 * time.Hour), true},
		{"twice a day, sent 11h ago", 2, now.Add(-11 * time.Hour), false},
		{"twice a day, sent 12h ago", 2, now.Add(-12 * time.Hour), true},
		{"hourly, sent 61m ago", 24, now.Add(-61 * time.Minute), true},
		{"hourly, sent 59m ago", 24, now.Add(-59 * time.Minute), false},
		{"zero per day clamps to one", 0, now.Add(-12 * time.Hour), false},
		{"absurd per day clamps to hourly", 100, now.Add(-2 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := tt.lastSent
			u := model.User{NotificationsPerDay: tt.perDay, LastNotificationSentAt: &last}
			assert.Equal(t, tt.want, ShouldNotify(u, now))
		})
	}
}

func TestShouldNotify_ZeroTimestampFailsOpen(t *testing.T) {
	var zero time.Time
	u := model.User{NotificationsPerDay: 1, LastNotificationSentAt: &zero}
	assert.True(t, ShouldNotify(u, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)))
}

func TestInQuietHours_SameDayWindow(t *testing.T) {
	u := model.User{QuietHoursStart: "09:00", QuietHoursEnd: "17:00"}

	tests := []struct {
		clock string
		want  bool
	}{
		{"09:00", true},
		{"16:59", true},
		{"17:00", false},
		{"08:59", false},
		{"12:30", true},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			now, err := time.Parse("15:04", tt.clock)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, InQuietHours(u, now))
		})
	}
}

func TestInQuietHours_OvernightWindow(t *testing.T) {
	u := model.User{QuietHoursStart: "22:00", QuietHoursEnd: "06:00"}

	tests := []struct {
		clock string
		want  bool
	}{
		{"23:00", true},
		{"05:59", true},
		{"06:00", false},
		{"12:00", false},
		{"22:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			now, err := time.Parse("15:04", tt.clock)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, InQuietHours(u, now))
		})
	}
}

func TestInQuietHours_UnsetOrMalformedBounds(t *testing.T) {
	now, _ := time.Parse("15:04", "12:00")

	assert.False(t, InQuietHours(model.User{}, now))
	assert.False(t, InQuietHours(model.User{QuietHoursStart: "22:00"}, now))
	assert.False(t, InQuietHours(model.User{QuietHoursEnd: "06:00"}, now))
	assert.False(t, InQuietHours(model.User{QuietHoursStart: "not a time", QuietHoursEnd: "06:00"}, now))
}

func TestDaysLeft(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 45, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysLeft(time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 1, DaysLeft(time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 3, DaysLeft(time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, -1, DaysLeft(time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC), now))
}

func TestExpiringItems(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	day := func(offset int) time.Time {
		return now.AddDate(0, 0, offset)
	}

	items := []model.FoodItem{
		{Name: "yesterday", ExpiryDate: day(-1)},
		{Name: "today", ExpiryDate: day(0)},
		{Name: "tomorrow", ExpiryDate: day(1)},
		{Name: "in three days", ExpiryDate: day(3)},
		{Name: "in four days", ExpiryDate: day(4)},
	}

	got := ExpiringItems(items, 3, now)

	names := make([]string, 0, len(got))
	for _, item := range got {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"today", "tomorrow", "in three days"}, names)
}

func TestExpiringItems_DefaultThreshold(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	items := []model.FoodItem{
		{Name: "in three days", ExpiryDate: now.AddDate(0, 0, 3)},
		{Name: "in five days", ExpiryDate: now.AddDate(0, 0, 5)},
	}

	got := ExpiringItems(items, 0, now)
	assert.Len(t, got, 1)
	assert.Equal(t, "in three days", got[0].Name)
}

func TestUrgency(t *testing.T) {
	assert.Equal(t, "expires today", Urgency(0))
	assert.Equal(t, "expires tomorrow", Urgency(1))
	assert.Equal(t, "expires in 2 days", Urgency(2))
	assert.Equal(t, "expires in 7 days", Urgency(7))
}
