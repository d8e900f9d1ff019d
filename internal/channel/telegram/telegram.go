// Package telegram delivers expiry notifications through a Telegram bot
// and hosts the /start deep-link flow that links a chat to a user.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/channel"
	"github.com/Madhu097/foodremainder-sub000/internal/model"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Adapter struct {
	bot        sender
	configured bool
}

// New connects the bot API. A missing or rejected token disables the
// channel without failing startup.
func New(token string) *Adapter {
	if token == "" {
		zlog.Logger.Info().Msg("telegram channel disabled: bot token not set")
		return &Adapter{}
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("telegram channel disabled: bot auth failed")
		return &Adapter{}
	}

	zlog.Logger.Info().Str("bot", bot.Self.UserName).Msg("telegram channel ready")
	return &Adapter{bot: bot, configured: true}
}

// NewWithSender wires a custom bot transport. Used in tests.
func NewWithSender(s sender) *Adapter {
	return &Adapter{bot: s, configured: s != nil}
}

func (a *Adapter) Kind() channel.Kind { return channel.KindTelegram }

func (a *Adapter) Configured() bool { return a.configured }

// Send delivers the notification to the user's linked chat. A user who
// never completed the /start handshake has no chat id; that is a silent
// skip, not an error.
func (a *Adapter) Send(ctx context.Context, user model.User, items []model.FoodItem) error {
	if !a.configured {
		return channel.ErrNotConfigured
	}
	if user.TelegramChatID == "" {
		return channel.ErrNoRecipient
	}

	chatID, err := strconv.ParseInt(user.TelegramChatID, 10, 64)
	if err != nil {
		return channel.Permanent{Err: fmt.Errorf("invalid telegram chat id %q: %w", user.TelegramChatID, err)}
	}
	if err := ctx.Err(); err != nil {
		return channel.Permanent{Err: err}
	}

	msg := channel.BuildMessage(user, items, time.Now())
	if _, err := a.bot.Send(tgbotapi.NewMessage(chatID, msg.Subject+"\n"+msg.Body())); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
