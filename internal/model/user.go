package model

import (
	"time"

	"github.com/google/uuid"
)

// User holds the subset of an account the notification core works with:
// contact identities, per-channel opt-in flags and throttle settings.
// The CRUD layer owns everything else.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Mobile         string    `json:"mobile"`
	TelegramChatID string    `json:"telegram_chat_id"`

	EmailNotifications    bool `json:"email_notifications"`
	SMSNotifications      bool `json:"sms_notifications"`
	WhatsAppNotifications bool `json:"whatsapp_notifications"`
	TelegramNotifications bool `json:"telegram_notifications"`
	PushNotifications     bool `json:"push_notifications"`

	// NotificationDays is the expiry lookahead window: items expiring
	// within this many days are considered notifiable. Defaults to 3.
	NotificationDays int `json:"notification_days"`

	// NotificationsPerDay (1..24) derives the throttle interval
	// 24h / NotificationsPerDay.
	NotificationsPerDay int `json:"notifications_per_day"`

	// Quiet hours are "HH:MM" bounds; the window may wrap past midnight.
	// Empty means no quiet hours.
	QuietHoursStart string `json:"quiet_hours_start"`
	QuietHoursEnd   string `json:"quiet_hours_end"`

	// LastNotificationSentAt is set only after at least one channel
	// delivered. Nil means the user was never notified.
	LastNotificationSentAt *time.Time `json:"last_notification_sent_at"`

	PushSubscriptions []PushSubscription `json:"push_subscriptions"`
}

// PushSubscription is one registered browser endpoint. A user may have
// several, one per browser.
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}
