package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/pookan/stockbot/internal/format"
	"github.com/pookan/stockbot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const Source = "discord"

// sender is the part of *discordgo.Session used to reply.
type sender interface {
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type registrar interface {
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// slashCommands mirror the text verbs the handler understands.
var slashCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "analyze",
		Description: "Analyze a stock with market data and an LLM",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "ticker",
				Description: "Ticker symbol, for example AAPL or BRK.B",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "What you want to know about it",
			},
		},
	},
	{Name: "status", Description: "Show bot and LLM provider status"},
	{Name: "help", Description: "Show available commands"},
}

// Bot relays Discord messages and slash commands to a command handler.
type Bot struct {
	session *discordgo.Session
	handler models.CommandHandler
	prefix  string
	logger  zerolog.Logger

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// New creates a Discord bot. The connection is opened by Run. prefix only
// decides when to show the typing indicator; parsing is up to handler.
func New(token, prefix string, handler models.CommandHandler) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return &Bot{
		session: session,
		handler: handler,
		prefix:  prefix,
		logger:  log.With().Str("transport", Source).Logger(),
	}, nil
}

// Run connects to the gateway, registers the slash commands and serves
// messages and interactions until ctx is cancelled. In-flight commands are
// allowed to finish before the session closes.
func (b *Bot) Run(ctx context.Context) error {
	removeMessages := b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.track(func() { b.handleMessage(ctx, s, m) })
	})
	removeInteractions := b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		b.track(func() { b.handleInteraction(ctx, s, i) })
	})
	defer removeMessages()
	defer removeInteractions()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord connection: %w", err)
	}
	if b.session.State != nil && b.session.State.User != nil {
		b.logger.Info().Str("username", b.session.State.User.Username).Msg("Connected to Discord")
		b.registerCommands(b.session, b.session.State.User.ID)
	} else {
		b.logger.Warn().Msg("No application id after connect, slash commands not registered")
	}

	<-ctx.Done()
	b.logger.Info().Msg("Shutting down Discord bot")
	b.drain()
	return b.session.Close()
}

// track runs fn in its own goroutine unless the bot is shutting down.
func (b *Bot) track(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closing {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn()
	}()
}

// drain stops accepting work and waits for tracked commands.
func (b *Bot) drain() {
	b.mu.Lock()
	b.closing = true
	b.mu.Unlock()
	b.wg.Wait()
}

// registerCommands replaces the global slash commands. A failure leaves the
// prefix commands working.
func (b *Bot) registerCommands(r registrar, appID string) {
	created, err := r.ApplicationCommandBulkOverwrite(appID, "", slashCommands)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to register slash commands")
		return
	}
	b.logger.Info().Int("commands", len(created)).Msg("Registered slash commands")
}

func (b *Bot) handleMessage(ctx context.Context, s sender, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	cmd := models.Command{
		Text:      m.Content,
		UserID:    m.Author.ID,
		ChannelID: m.ChannelID,
		Source:    Source,
	}

	if b.looksLikeCommand(m.Content) {
		if err := s.ChannelTyping(m.ChannelID); err != nil {
			b.logger.Debug().Err(err).Msg("Typing indicator failed")
		}
	}

	reply, handled := b.handler.Handle(ctx, cmd)
	if !handled {
		return
	}

	for chunk := range format.Split(reply, format.DiscordLimit) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			b.logger.Error().Err(err).Str("channel_id", m.ChannelID).Msg("Failed to send reply")
			return
		}
	}
}

func (b *Bot) looksLikeCommand(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, "/") || (b.prefix != "" && strings.HasPrefix(text, b.prefix))
}

func (b *Bot) handleInteraction(ctx context.Context, s sender, i *discordgo.InteractionCreate) {
	if i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cmd := models.Command{
		Text:      interactionText(i.ApplicationCommandData()),
		UserID:    interactionUser(i.Interaction),
		ChannelID: i.ChannelID,
		Source:    Source,
	}
	logger := b.logger.With().Str("interaction_id", i.ID).Logger()

	// Analysis outlives the 3 second interaction deadline.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to defer interaction")
		return
	}

	reply, handled := b.handler.Handle(ctx, cmd)
	if !handled || reply == "" {
		reply = "Unknown command."
	}

	first := true
	for chunk := range format.Split(reply, format.DiscordLimit) {
		if first {
			first = false
			_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &chunk})
		} else {
			_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: chunk})
		}
		if err != nil {
			logger.Error().Err(err).Msg("Failed to send interaction reply")
			return
		}
	}
}

// interactionText renders a slash command as the equivalent text command,
// for example "/analyze AAPL is it overbought".
func interactionText(data discordgo.ApplicationCommandInteractionData) string {
	parts := []string{"/" + data.Name}
	for _, name := range []string{"ticker", "query"} {
		for _, opt := range data.Options {
			if opt.Name != name || opt.Type != discordgo.ApplicationCommandOptionString {
				continue
			}
			if v := strings.TrimSpace(opt.StringValue()); v != "" {
				parts = append(parts, v)
			}
		}
	}
	return strings.Join(parts, " ")
}

func interactionUser(i *discordgo.Interaction) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	}
	return ""
}
