// Package channel defines the delivery-channel contract shared by all
// adapters and the message formatting they have in common.
//
// Adapters are constructed once at startup from environment-backed
// configuration. A channel with missing credentials is simply not
// configured; it never aborts the process. Send errors stay inside the
// adapter boundary as values; nothing panics across it.
package channel

import (
	"context"
	"errors"

	"github.com/Madhu097/foodremainder-sub000/internal/model"
)

// Kind identifies one delivery mechanism.
type Kind string

const (
	KindEmail    Kind = "email"
	KindSMS      Kind = "sms"
	KindWhatsApp Kind = "whatsapp"
	KindTelegram Kind = "telegram"
	KindPush     Kind = "push"
)

var (
	// ErrNotConfigured is returned by Send when the adapter's provider
	// credentials are absent.
	ErrNotConfigured = errors.New("channel not configured")

	// ErrNoRecipient marks a user who has not completed the channel's
	// onboarding (no chat id, no subscriptions, no address). It is a
	// skip, not a delivery failure.
	ErrNoRecipient = errors.New("no recipient identity for channel")
)

// Adapter is one delivery channel. Send formats and delivers an expiry
// notification for the given items; it must respect ctx deadlines and
// return (never throw) all provider failures.
type Adapter interface {
	Kind() Kind
	Configured() bool
	Send(ctx context.Context, user model.User, items []model.FoodItem) error
}

// Enabled reports whether the user opted into the adapter's channel.
func Enabled(u model.User, k Kind) bool {
	switch k {
	case KindEmail:
		return u.EmailNotifications
	case KindSMS:
		return u.SMSNotifications
	case KindWhatsApp:
		return u.WhatsAppNotifications
	case KindTelegram:
		return u.TelegramNotifications
	case KindPush:
		return u.PushNotifications
	}
	return false
}
