package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mintwatch/mint-alert-bot/internal/filter"
)

// sendFilterMenu shows the active filter set with one edit button per field.
func (b *Bot) sendFilterMenu(chatID int64) {
	cfg := b.filters.Snapshot()

	var text strings.Builder
	text.WriteString("Active filters:\n")
	fmt.Fprintf(&text, "• liquidity: %g - %g\n", cfg.Liquidity.Min, cfg.Liquidity.Max)
	fmt.Fprintf(&text, "• poolSupply: %g - %g\n", cfg.PoolSupply.Min, cfg.PoolSupply.Max)
	fmt.Fprintf(&text, "• devHolding: %g - %g\n", cfg.DevHolding.Min, cfg.DevHolding.Max)
	fmt.Fprintf(&text, "• launchPrice: %g - %g\n", cfg.LaunchPrice.Min, cfg.LaunchPrice.Max)
	fmt.Fprintf(&text, "• mintAuthRevoked required: %v\n", cfg.MintAuthRevoked)
	fmt.Fprintf(&text, "• freezeAuthRevoked required: %v\n", cfg.FreezeAuthRevoked)
	text.WriteString("\nPick a field to edit:")

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, f := range filter.RangeFields {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(string(f), editCallbackPrefix+string(f)),
		))
	}
	for _, f := range filter.BoolFields {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(string(f), editCallbackPrefix+string(f)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.WithError(err).WithField("chat", chatID).Warn("failed to send filter menu")
	}
}

// sendStatus reports the operator toggles and rate-window usage.
func (b *Bot) sendStatus(chatID int64) {
	ctx := context.Background()

	var text strings.Builder
	text.WriteString("Pipeline status:\n")
	fmt.Fprintf(&text, "• bypass filters: %v\n", b.toggles.BypassFilters(ctx))
	fmt.Fprintf(&text, "• auto execute: %v\n", b.toggles.AutoExecute(ctx))
	if b.pipe != nil {
		used, limit := b.pipe.Rate().Usage()
		fmt.Fprintf(&text, "• batches this minute: %d/%d\n", used, limit)
	}
	b.reply(chatID, text.String())
}
