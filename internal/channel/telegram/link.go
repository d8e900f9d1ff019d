package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/store"
)

// LinkListener long-polls bot updates and completes the onboarding
// handshake: the web app hands the user a t.me deep link carrying their
// user id, and "/start <userId>" here records the chat id against that
// user. This is a channel-specific flow outside the notify path; it only
// shares the user store.
type LinkListener struct {
	bot   *tgbotapi.BotAPI
	store store.Store
}

func NewLinkListener(token string, st store.Store) (*LinkListener, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token not set")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot auth: %w", err)
	}
	return &LinkListener{bot: bot, store: st}, nil
}

// Run blocks until ctx is cancelled, handling /start commands.
func (l *LinkListener) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := l.bot.GetUpdatesChan(u)

	zlog.Logger.Info().Msg("telegram link listener started")

	for {
		select {
		case <-ctx.Done():
			l.bot.StopReceivingUpdates()
			zlog.Logger.Info().Msg("telegram link listener stopped")
			return
		case update := <-updates:
			l.handle(ctx, update)
		}
	}
}

func (l *LinkListener) handle(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() || update.Message.Command() != "start" {
		return
	}

	chatID := update.Message.Chat.ID
	arg := update.Message.CommandArguments()

	userID, err := uuid.Parse(arg)
	if err != nil {
		l.reply(chatID, "Hi! Open the FoodReminder app and use its Telegram link to connect your account.")
		return
	}

	if err := l.store.SetTelegramChatID(ctx, userID, strconv.FormatInt(chatID, 10)); err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to link telegram chat")
		l.reply(chatID, "Could not link your account. Please try the link from the app again.")
		return
	}

	zlog.Logger.Info().Str("user_id", userID.String()).Int64("chat_id", chatID).Msg("telegram chat linked")
	l.reply(chatID, "You're all set! Expiry reminders will arrive in this chat.")
}

func (l *LinkListener) reply(chatID int64, text string) {
	if _, err := l.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		zlog.Logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send telegram reply")
	}
}
