// Package store defines the persistence port of the notification core.
// The core reads users and food items through it and writes back only the
// last-notified timestamp and channel-identity details.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Madhu097/foodremainder-sub000/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrItemNotFound = errors.New("food item not found")
)

// Preferences is a partial update of a user's notification settings.
// Nil fields are left untouched.
type Preferences struct {
	EmailNotifications    *bool   `json:"email_notifications"`
	SMSNotifications      *bool   `json:"sms_notifications"`
	WhatsAppNotifications *bool   `json:"whatsapp_notifications"`
	TelegramNotifications *bool   `json:"telegram_notifications"`
	PushNotifications     *bool   `json:"push_notifications"`
	NotificationDays      *int    `json:"notification_days" validate:"omitempty,min=1,max=30"`
	NotificationsPerDay   *int    `json:"notifications_per_day" validate:"omitempty,min=1,max=24"`
	QuietHoursStart       *string `json:"quiet_hours_start" validate:"omitempty,datetime=15:04"`
	QuietHoursEnd         *string `json:"quiet_hours_end" validate:"omitempty,datetime=15:04"`
}

// Store is the user/item collaborator consumed by the dispatcher and the
// channel onboarding flows.
type Store interface {
	GetAllUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	GetFoodItemsByUserID(ctx context.Context, userID uuid.UUID) ([]model.FoodItem, error)

	// UpdateLastNotificationTime stamps the user's last successful
	// notification. It is a single atomic update per user record and
	// serves as the serialization point between overlapping sweeps.
	UpdateLastNotificationTime(ctx context.Context, userID uuid.UUID) error

	UpdateNotificationPreferences(ctx context.Context, userID uuid.UUID, prefs Preferences) error

	// SetTelegramChatID records the chat id obtained from the /start
	// deep-link handshake.
	SetTelegramChatID(ctx context.Context, userID uuid.UUID, chatID string) error

	AddPushSubscription(ctx context.Context, userID uuid.UUID, sub model.PushSubscription) error
	RemovePushSubscription(ctx context.Context, userID uuid.UUID, endpoint string) error
}
