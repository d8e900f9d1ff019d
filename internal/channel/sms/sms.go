// Package sms delivers expiry notifications as text messages via Twilio.
package sms

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/channel"
	"github.com/Madhu097/foodremainder-sub000/internal/model"
)

// e164 is deliberately loose: we warn on questionable numbers and still
// attempt the send rather than dropping the notification.
var e164 = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

type Config struct {
	AccountSID string
	AuthToken  string
	From       string
}

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type Adapter struct {
	cfg        Config
	api        messageCreator
	configured bool
}

func New(cfg Config) *Adapter {
	configured := cfg.AccountSID != "" && cfg.AuthToken != "" && cfg.From != ""
	if !configured {
		zlog.Logger.Info().Msg("sms channel disabled: Twilio credentials not set")
		return &Adapter{cfg: cfg}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &Adapter{cfg: cfg, api: client.Api, configured: true}
}

func (a *Adapter) Kind() channel.Kind { return channel.KindSMS }

func (a *Adapter) Configured() bool { return a.configured }

func (a *Adapter) Send(ctx context.Context, user model.User, items []model.FoodItem) error {
	if !a.configured {
		return channel.ErrNotConfigured
	}
	if user.Mobile == "" {
		return channel.ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return channel.Permanent{Err: err}
	}

	to := CheckNumber(user.Mobile)
	msg := channel.BuildMessage(user, items, time.Now())

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(a.cfg.From)
	params.SetBody(msg.Subject + "\n" + msg.Body())

	if _, err := a.api.CreateMessage(params); err != nil {
		return Classify(fmt.Errorf("twilio sms send: %w", err))
	}
	return nil
}

// CheckNumber normalizes a phone number best-effort. A missing country
// code is logged as a warning, not treated as a failure.
func CheckNumber(mobile string) string {
	n := strings.TrimSpace(mobile)
	if !strings.HasPrefix(n, "+") {
		zlog.Logger.Warn().Str("mobile", n).Msg("mobile number has no country code prefix, sending as-is")
		return n
	}
	if !e164.MatchString(n) {
		zlog.Logger.Warn().Str("mobile", n).Msg("mobile number is not E.164, attempting anyway")
	}
	return n
}

// Classify marks Twilio rejections that retrying cannot fix as
// permanent: 20003 auth, 21211 invalid 'To', 21610 recipient opted out,
// 21608 unverified number (trial/sandbox opt-in missing).
func Classify(err error) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		switch restErr.Code {
		case 20003, 21211, 21610, 21608:
			return channel.Permanent{Err: err}
		}
	}
	return err
}
