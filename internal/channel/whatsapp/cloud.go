package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/channel"
	"github.com/Madhu097/foodremainder-sub000/internal/channel/sms"
	"github.com/Madhu097/foodremainder-sub000/internal/model"
	wa "github.com/Madhu097/foodremainder-sub000/pkg/whatsapp"
)

// CloudConfig holds Meta Cloud API credentials.
type CloudConfig struct {
	AccessToken   string
	PhoneNumberID string
}

type textSender interface {
	SendText(ctx context.Context, to, body string) error
}

// CloudAdapter sends through the direct Business API. Business-initiated
// text outside the 24-hour session window is rejected by the provider;
// that class is surfaced distinctly so operators don't chase it as a bug.
type CloudAdapter struct {
	client     textSender
	configured bool
}

func NewCloud(cfg CloudConfig) *CloudAdapter {
	configured := cfg.AccessToken != "" && cfg.PhoneNumberID != ""
	if !configured {
		return &CloudAdapter{}
	}
	return &CloudAdapter{
		client:     wa.NewClient(cfg.AccessToken, cfg.PhoneNumberID),
		configured: true,
	}
}

// NewCloudWithSender wires a custom transport. Used in tests.
func NewCloudWithSender(s textSender) *CloudAdapter {
	return &CloudAdapter{client: s, configured: s != nil}
}

func (a *CloudAdapter) Kind() channel.Kind { return channel.KindWhatsApp }

func (a *CloudAdapter) Configured() bool { return a.configured }

func (a *CloudAdapter) Send(ctx context.Context, user model.User, items []model.FoodItem) error {
	if !a.configured {
		return channel.ErrNotConfigured
	}
	if user.Mobile == "" {
		return channel.ErrNoRecipient
	}

	msg := channel.BuildMessage(user, items, time.Now())
	// Cloud API wants digits without the leading plus.
	to := strings.TrimPrefix(sms.CheckNumber(user.Mobile), "+")

	if err := a.client.SendText(ctx, to, msg.Subject+"\n"+msg.Body()); err != nil {
		var apiErr *wa.APIError
		if errors.As(err, &apiErr) && apiErr.SessionWindowClosed() {
			zlog.Logger.Warn().
				Str("user", user.Username).
				Msg("whatsapp 24h session window closed: user must message the business number first")
			return channel.Permanent{Err: fmt.Errorf("session window closed: %w", err)}
		}
		return fmt.Errorf("whatsapp cloud send: %w", err)
	}
	return nil
}
