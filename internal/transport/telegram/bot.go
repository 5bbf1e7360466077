package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pookan/stockbot/internal/format"
	"github.com/pookan/stockbot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const Source = "telegram"

// sender is the part of *tgbotapi.BotAPI used to reply.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot relays Telegram updates to a command handler.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler models.CommandHandler
	prefix  string
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// New authorizes against the Bot API.
func New(token, prefix string, handler models.CommandHandler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}

	logger := log.With().Str("transport", Source).Logger()
	logger.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	return &Bot{api: api, handler: handler, prefix: prefix, logger: logger}, nil
}

// Run long-polls for updates until ctx is cancelled, then waits for
// in-flight commands.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Shutting down Telegram bot")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleMessage(ctx, b.api, msg)
			}(update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, s sender, message *tgbotapi.Message) {
	if message.From != nil && message.From.IsBot {
		return
	}

	chatID := message.Chat.ID
	cmd := models.Command{
		Text:      message.Text,
		ChannelID: strconv.FormatInt(chatID, 10),
		Source:    Source,
	}
	if message.From != nil {
		cmd.UserID = strconv.FormatInt(message.From.ID, 10)
	}

	if b.looksLikeCommand(message.Text) {
		if _, err := s.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
			b.logger.Debug().Err(err).Msg("Chat action failed")
		}
	}

	reply, handled := b.handler.Handle(ctx, cmd)
	if !handled {
		return
	}

	for chunk := range format.Split(reply, format.TelegramLimit) {
		// plain text, no ParseMode: generated text is not valid Markdown
		msg := tgbotapi.NewMessage(chatID, chunk)
		if _, err := s.Send(msg); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
			return
		}
	}
}

func (b *Bot) looksLikeCommand(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, "/") || (b.prefix != "" && strings.HasPrefix(text, b.prefix))
}
