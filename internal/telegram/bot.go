package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/mintwatch/mint-alert-bot/internal/filter"
	"github.com/mintwatch/mint-alert-bot/internal/pipeline"
	"github.com/mintwatch/mint-alert-bot/internal/session"
)

const editCallbackPrefix = "edit:"

// Bot is the Telegram transport: it sends alerts, renders the filter edit
// menu and routes operator updates into the per-chat edit sessions.
type Bot struct {
	api      *tgbotapi.BotAPI
	sessions *session.Manager
	filters  *filter.Store
	pipe     *pipeline.Pipeline
	toggles  pipeline.Toggles
	logger   *logrus.Logger
}

// BotConfig holds construction parameters for the Bot.
type BotConfig struct {
	Token    string
	Sessions *session.Manager
	Filters  *filter.Store
	Pipeline *pipeline.Pipeline
	Toggles  pipeline.Toggles
	Logger   *logrus.Logger
}

func NewBot(cfg BotConfig) (*Bot, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}

	return &Bot{
		api:      api,
		sessions: cfg.Sessions,
		filters:  cfg.Filters,
		pipe:     cfg.Pipeline,
		toggles:  cfg.Toggles,
		logger:   cfg.Logger,
	}, nil
}

// AttachPipeline wires the pipeline in after construction. The pipeline
// needs the bot as its sender, so one of the two is always built first.
func (b *Bot) AttachPipeline(p *pipeline.Pipeline) {
	b.pipe = p
}

// SendMessage implements alert.Sender.
func (b *Bot) SendMessage(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Run long-polls Telegram for updates until the context is cancelled. Used
// when no public webhook URL is available for the update passthrough.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.WithField("bot", b.api.Self.UserName).Info("telegram bot polling for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(&update)
		}
	}
}

// HandleRawUpdate feeds one raw update delivered over the HTTP passthrough
// endpoint into the dispatcher.
func (b *Bot) HandleRawUpdate(payload []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(payload, &update); err != nil {
		return fmt.Errorf("invalid update payload: %w", err)
	}
	b.HandleUpdate(&update)
	return nil
}

// HandleUpdate routes a single update: callbacks open an edit, commands are
// dispatched by name, anything else is offered to the edit session.
func (b *Bot) HandleUpdate(update *tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil:
		b.handleMessage(update.Message)
	}
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	// Always answer so the client stops the spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.WithError(err).Debug("callback ack failed")
	}

	if cq.Message == nil || !strings.HasPrefix(cq.Data, editCallbackPrefix) {
		return
	}
	chatID := cq.Message.Chat.ID
	field := filter.Field(strings.TrimPrefix(cq.Data, editCallbackPrefix))

	prompt, err := b.sessions.StartEdit(chatID, field)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Unknown filter field %q.", field))
		return
	}
	b.reply(chatID, prompt)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "filters":
		b.sendFilterMenu(chatID)
	case "status":
		b.sendStatus(chatID)
	case "cancel":
		b.sessions.Cancel(chatID)
		b.reply(chatID, "Edit cancelled.")
	case "start", "help":
		b.reply(chatID, "Commands:\n/filters — view and edit alert filters\n/status — pipeline status\n/cancel — abort a pending edit")
	default:
		b.reply(chatID, fmt.Sprintf("Unknown command /%s.", msg.Command()))
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	reply, handled := b.sessions.HandleMessage(msg.Chat.ID, msg.Text)
	if !handled {
		return
	}
	b.reply(msg.Chat.ID, reply)
}

func (b *Bot) reply(chatID int64, text string) {
	if err := b.SendMessage(context.Background(), chatID, text); err != nil {
		b.logger.WithError(err).WithField("chat", chatID).Warn("reply failed")
	}
}
