// Package email delivers expiry notifications over SMTP.
package email

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/channel"
	"github.com/Madhu097/foodremainder-sub000/internal/model"
)

// Config holds SMTP credentials. The adapter counts as configured only
// when host, username and password are all present.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type Adapter struct {
	cfg        Config
	strategy   retry.Strategy
	configured bool
}

func New(cfg Config, strategy retry.Strategy) *Adapter {
	configured := cfg.Host != "" && cfg.Username != "" && cfg.Password != ""
	if !configured {
		zlog.Logger.Info().Msg("email channel disabled: SMTP credentials not set")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Adapter{cfg: cfg, strategy: strategy, configured: configured}
}

func (a *Adapter) Kind() channel.Kind { return channel.KindEmail }

func (a *Adapter) Configured() bool { return a.configured }

// Send validates the recipient address, then attempts delivery with
// bounded exponential backoff. Authentication and invalid-recipient
// failures abort the retry sequence.
func (a *Adapter) Send(ctx context.Context, user model.User, items []model.FoodItem) error {
	if !a.configured {
		return channel.ErrNotConfigured
	}
	if user.Email == "" {
		return channel.ErrNoRecipient
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return channel.Permanent{Err: fmt.Errorf("invalid recipient address %q: %w", user.Email, err)}
	}

	msg := channel.BuildMessage(user, items, time.Now())

	m := gomail.NewMessage()
	m.SetHeader("From", a.cfg.From)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body())

	dialer := gomail.NewDialer(a.cfg.Host, a.cfg.Port, a.cfg.Username, a.cfg.Password)
	dialer.Timeout = a.cfg.Timeout

	return channel.SendWithRetry(ctx, channel.KindEmail, a.strategy, func() error {
		if err := ctx.Err(); err != nil {
			return channel.Permanent{Err: err}
		}
		if err := dialer.DialAndSend(m); err != nil {
			return classify(err)
		}
		return nil
	})
}

// classify maps SMTP failures onto the retry taxonomy. 535 is a bad
// login, 550/553 are rejected recipients; everything else is treated as
// transient.
func classify(err error) error {
	msg := err.Error()
	for _, code := range []string{"535", "550", "553", "authentication failed", "invalid recipient"} {
		if strings.Contains(strings.ToLower(msg), code) {
			return channel.Permanent{Err: err}
		}
	}
	return err
}
