package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationResult is the per-user outcome of one dispatch cycle.
type NotificationResult struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	ItemCount    int       `json:"item_count"`
	EmailSent    bool      `json:"email_sent"`
	SMSSent      bool      `json:"sms_sent"`
	WhatsAppSent bool      `json:"whatsapp_sent"`
	TelegramSent bool      `json:"telegram_sent"`
	PushSent     bool      `json:"push_sent"`
	SentAt       time.Time `json:"sent_at"`
}

// Delivered reports whether at least one channel succeeded.
func (r NotificationResult) Delivered() bool {
	return r.EmailSent || r.SMSSent || r.WhatsAppSent || r.TelegramSent || r.PushSent
}
