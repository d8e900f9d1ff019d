package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/channel"
	"github.com/Madhu097/foodremainder-sub000/internal/channel/sms"
	"github.com/Madhu097/foodremainder-sub000/internal/model"
)

// TwilioConfig holds the telephony-provider credentials for the
// WhatsApp fallback. From is the sandbox or sender number, without the
// "whatsapp:" prefix.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioAdapter sends WhatsApp messages through Twilio. The sandbox
// requires recipients to pre-register by messaging the join code; a
// rejection for an unregistered recipient is a normal onboarding gap,
// not a code bug.
type TwilioAdapter struct {
	cfg        TwilioConfig
	api        messageCreator
	configured bool
}

func NewTwilio(cfg TwilioConfig) *TwilioAdapter {
	configured := cfg.AccountSID != "" && cfg.AuthToken != "" && cfg.From != ""
	if !configured {
		return &TwilioAdapter{cfg: cfg}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioAdapter{cfg: cfg, api: client.Api, configured: true}
}

func (a *TwilioAdapter) Kind() channel.Kind { return channel.KindWhatsApp }

func (a *TwilioAdapter) Configured() bool { return a.configured }

func (a *TwilioAdapter) Send(ctx context.Context, user model.User, items []model.FoodItem) error {
	if !a.configured {
		return channel.ErrNotConfigured
	}
	if user.Mobile == "" {
		return channel.ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return channel.Permanent{Err: err}
	}

	msg := channel.BuildMessage(user, items, time.Now())
	to := sms.CheckNumber(user.Mobile)

	params := &openapi.CreateMessageParams{}
	params.SetTo("whatsapp:" + to)
	params.SetFrom("whatsapp:" + a.cfg.From)
	params.SetBody(msg.Subject + "\n" + msg.Body())

	if _, err := a.api.CreateMessage(params); err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			switch restErr.Code {
			case 63015, 63016:
				// outside session window / freeform not allowed
				zlog.Logger.Warn().
					Str("user", user.Username).
					Int("code", restErr.Code).
					Msg("whatsapp session window closed on twilio gateway")
				return channel.Permanent{Err: fmt.Errorf("session window closed: %w", err)}
			case 63007, 21608:
				// sandbox opt-in missing: recipient never joined
				zlog.Logger.Warn().
					Str("user", user.Username).
					Int("code", restErr.Code).
					Msg("whatsapp recipient not registered with sandbox, needs opt-in")
				return channel.Permanent{Err: fmt.Errorf("recipient opt-in missing: %w", err)}
			}
		}
		return sms.Classify(fmt.Errorf("twilio whatsapp send: %w", err))
	}
	return nil
}
